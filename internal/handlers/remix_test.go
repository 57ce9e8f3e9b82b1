package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grumini-backend/internal/gemini"
	"grumini-backend/internal/ledger"
	"grumini-backend/internal/models"
)

type remixFixture struct {
	projects     *ledger.ProjectStore
	generatedDir string
	router       http.Handler
}

func newRemixFixture(t *testing.T, geminiURL string) *remixFixture {
	t.Helper()
	f := &remixFixture{
		projects:     ledger.NewProjectStore(t.TempDir()),
		generatedDir: t.TempDir(),
	}
	handler := NewRemixHandler(gemini.NewClient(geminiURL, "test-key"), f.projects, f.generatedDir)
	router := newTestRouter()
	router.POST("/api/remix", handler.Remix)
	f.router = router
	return f
}

func (f *remixFixture) remix(t *testing.T, fields map[string]string, files []filePart) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, "/api/remix", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRemixHandler_CreatesProjectPerOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseStream(
			geminiImageJSON("image/png", []byte("first")),
			geminiImageJSON("image/png", []byte("second")),
		))
	}))
	defer server.Close()

	f := newRemixFixture(t, server.URL)
	w := f.remix(t,
		map[string]string{"prompt": "make it vintage"},
		[]filePart{{field: "images", filename: "in.png", data: []byte("input")}},
	)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.RemixResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Images, 2)
	require.Len(t, resp.ProjectIDs, 2)

	projects, err := f.projects.ListByUser(testUserID, false)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "make it vintage", projects[0].Title)
	assert.Equal(t, models.ProjectTypeGenerated, projects[0].Type)

	// Staged uploads are inputs only; after the request the directory holds
	// just the two outputs.
	entries, err := os.ReadDir(f.generatedDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.True(t, strings.HasPrefix(e.Name(), "remixed_image_"))
	}
}

func TestRemixHandler_DefaultPrompts(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Contents[0].Parts[0].Text

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseStream(geminiImageJSON("image/png", []byte("out"))))
	}))
	defer server.Close()

	f := newRemixFixture(t, server.URL)

	w := f.remix(t, nil, []filePart{{field: "images", filename: "a.png", data: []byte("a")}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, promptSingleImage, gotPrompt)

	w = f.remix(t, nil, []filePart{
		{field: "images", filename: "a.png", data: []byte("a")},
		{field: "images", filename: "b.png", data: []byte("b")},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, promptMultiImage, gotPrompt)

	w = f.remix(t, map[string]string{"prompt": ""}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, promptNoImage, gotPrompt)
}

func TestRemixHandler_TooManyImages(t *testing.T) {
	f := newRemixFixture(t, "http://unused")

	files := make([]filePart, maxRemixImages+1)
	for i := range files {
		files[i] = filePart{field: "images", filename: fmt.Sprintf("in%d.png", i), data: []byte("x")}
	}
	w := f.remix(t, nil, files)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemixHandler_RegenerateReplacesProjectImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseStream(geminiImageJSON("image/png", []byte("fresh"))))
	}))
	defer server.Close()

	f := newRemixFixture(t, server.URL)
	project, err := f.projects.Insert(models.Project{
		UserID:   testUserID,
		Title:    "old title",
		ImageURL: "http://example.com/generated/old.png",
	})
	require.NoError(t, err)

	w := f.remix(t,
		map[string]string{"prompt": "same but brighter", "projectId": project.ID},
		[]filePart{{field: "images", filename: "in.png", data: []byte("input")}},
	)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.RemixResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.ProjectIDs, 1)
	assert.Equal(t, project.ID, resp.ProjectIDs[0])

	stored, err := f.projects.Get(project.ID)
	require.NoError(t, err)
	assert.Equal(t, "same but brighter", stored.Title)
	assert.NotEqual(t, "http://example.com/generated/old.png", stored.ImageURL)
	assert.Contains(t, stored.ImageURL, "/generated/remixed_image_")

	// No extra project records were created.
	projects, err := f.projects.ListByUser(testUserID, false)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestRemixHandler_QuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := newRemixFixture(t, server.URL)
	w := f.remix(t, map[string]string{"prompt": "anything"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
