package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"grumini-backend/internal/ledger"
	"grumini-backend/internal/middleware"
)

const testUserID int64 = 7

// stubAuth replaces the session middleware so handler tests run without a
// cookie store.
func stubAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, testUserID)
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(stubAuth())
	return router
}

type filePart struct {
	field    string
	filename string
	data     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files []filePart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

// geminiRequest mirrors the adapter's wire shape for fake-server assertions.
type geminiRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MimeType string `json:"mimeType"`
				Data     string `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
}

func geminiImageJSON(mimeType string, data []byte) string {
	return fmt.Sprintf(
		`{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":%q,"data":%q}}]}}]}`,
		mimeType, base64.StdEncoding.EncodeToString(data),
	)
}

func geminiTextJSON(text string) string {
	payload, _ := json.Marshal(text)
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%s}]}}]}`, payload)
}

func sseStream(chunks ...string) string {
	var b bytes.Buffer
	for _, chunk := range chunks {
		b.WriteString("data: " + chunk + "\n\n")
	}
	b.WriteString("data: [DONE]\n\n")
	return b.String()
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", HealthHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAssetFilename(t *testing.T) {
	assert.Equal(t, "logo.png", assetFilename("http://localhost:3000/generated/logo.png"))
	assert.Equal(t, "logo.png", assetFilename("/generated/logo.png"))
	assert.Equal(t, "passwd", assetFilename("http://evil/generated/../../etc/passwd"))
}

func TestLedgerStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ledgerStatus(ledger.ErrNotFound))
	assert.Equal(t, http.StatusForbidden, ledgerStatus(ledger.ErrForbidden))
	assert.Equal(t, http.StatusInternalServerError, ledgerStatus(assert.AnError))
}
