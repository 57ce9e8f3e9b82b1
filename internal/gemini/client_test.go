package gemini_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grumini-backend/internal/gemini"
)

// generateRequest mirrors the wire shape for server-side assertions.
type generateRequest struct {
	SystemInstruction *struct {
		Parts []wirePart `json:"parts"`
	} `json:"systemInstruction"`
	Contents []struct {
		Role  string     `json:"role"`
		Parts []wirePart `json:"parts"`
	} `json:"contents"`
}

type wirePart struct {
	Text       string `json:"text"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData"`
}

func decodeJSONBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func imageResponse(mimeType string, data []byte) string {
	return fmt.Sprintf(
		`{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":%q,"data":%q}}]}}]}`,
		mimeType, base64.StdEncoding.EncodeToString(data),
	)
}

func TestGenerateImage_Success(t *testing.T) {
	pixels := []byte{0x89, 0x50, 0x4e, 0x47}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash-image:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, "a red fox logo", req.Contents[0].Parts[0].Text)

		fmt.Fprint(w, imageResponse("image/png", pixels))
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "test-key")
	img, err := client.GenerateImage(context.Background(), "a red fox logo")
	require.NoError(t, err)
	assert.Equal(t, pixels, img.Data)
	assert.Equal(t, "image/png", img.MimeType)
}

func TestGenerateImage_QuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "test-key")
	_, err := client.GenerateImage(context.Background(), "anything")
	assert.ErrorIs(t, err, gemini.ErrQuotaExceeded)
}

func TestGenerateImage_NoImageInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"sorry, text only"}]}}]}`)
	}))
	defer server.Close()

	client := gemini.NewClient(server.URL, "test-key")
	_, err := client.GenerateImage(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image data")
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	client := gemini.NewClient("http://unused", "test-key")

	attempts := 0
	err := client.RetryWithBackoff(func() error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithBackoff_QuotaNotRetried(t *testing.T) {
	client := gemini.NewClient("http://unused", "test-key")

	attempts := 0
	err := client.RetryWithBackoff(func() error {
		attempts++
		return gemini.ErrQuotaExceeded
	}, 3)
	assert.ErrorIs(t, err, gemini.ErrQuotaExceeded)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_CancellationNotRetried(t *testing.T) {
	client := gemini.NewClient("http://unused", "test-key")

	attempts := 0
	err := client.RetryWithBackoff(func() error {
		attempts++
		return fmt.Errorf("request aborted: %w", context.Canceled)
	}, 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestMimeTypeForFile(t *testing.T) {
	assert.Equal(t, "image/png", gemini.MimeTypeForFile("logo.png"))
	assert.Equal(t, "image/png", gemini.MimeTypeForFile("LOGO.PNG"))
	assert.Equal(t, "image/webp", gemini.MimeTypeForFile("photo.webp"))
	assert.Equal(t, "image/heic", gemini.MimeTypeForFile("shot.heic"))
	assert.Equal(t, "image/jpeg", gemini.MimeTypeForFile("scan.jpg"))
	assert.Equal(t, "image/jpeg", gemini.MimeTypeForFile("noextension"))
}
