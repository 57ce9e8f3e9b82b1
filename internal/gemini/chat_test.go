package gemini_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grumini-backend/internal/gemini"
)

func TestAnalyzeChat_ReplaysHistoryAndAttachesImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)

		var req generateRequest
		require.NoError(t, decodeJSONBody(r, &req))

		require.NotNil(t, req.SystemInstruction)
		assert.Contains(t, req.SystemInstruction.Parts[0].Text, "Design Consultant")

		require.Len(t, req.Contents, 3)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, "first question", req.Contents[0].Parts[0].Text)
		assert.Equal(t, "model", req.Contents[1].Role)

		last := req.Contents[2]
		assert.Equal(t, "user", last.Role)
		require.Len(t, last.Parts, 2)
		require.NotNil(t, last.Parts[0].InlineData)
		assert.Equal(t, "image/jpeg", last.Parts[0].InlineData.MimeType)
		assert.Equal(t, "what about the colors?", last.Parts[1].Text)

		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"The palette "},{"text":"works well."}]}}]}`)
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "test-key")
	analysis, err := client.AnalyzeChat(context.Background(),
		gemini.Image{Data: []byte("jpeg bytes"), MimeType: "image/jpeg"},
		[]gemini.Turn{
			{Role: "user", Text: "first question"},
			{Role: "model", Text: "first answer"},
		},
		"what about the colors?",
	)
	require.NoError(t, err)
	assert.Equal(t, "The palette works well.", analysis)
}

func TestAnalyzeChat_DefaultsForEmptyFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, decodeJSONBody(r, &req))

		require.Len(t, req.Contents, 1)
		parts := req.Contents[0].Parts
		assert.Equal(t, "image/png", parts[0].InlineData.MimeType)
		assert.Equal(t, "Analyze this logo.", parts[1].Text)

		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"Looks good."}]}}]}`)
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "test-key")
	analysis, err := client.AnalyzeChat(context.Background(), gemini.Image{Data: []byte("png bytes")}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Looks good.", analysis)
}

func TestAnalyzeChat_RequiresImage(t *testing.T) {
	client := gemini.NewClient("http://unused", "test-key")
	_, err := client.AnalyzeChat(context.Background(), gemini.Image{}, nil, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image data")
}
