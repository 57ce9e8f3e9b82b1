package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"grumini-backend/internal/ledger"
)

// requestBaseURL rebuilds the externally visible origin so generated-asset
// URLs stay valid behind a proxy.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// generatedURL returns the public URL for a file in the generated-assets
// directory.
func generatedURL(c *gin.Context, filename string) string {
	return requestBaseURL(c) + "/generated/" + filename
}

// assetFilename extracts the backing filename from a stored asset URL.
// Base() guards against traversal through a crafted URL.
func assetFilename(assetURL string) string {
	parsed, err := url.Parse(assetURL)
	if err != nil {
		return filepath.Base(assetURL)
	}
	return path.Base(parsed.Path)
}

// ledgerStatus maps ledger errors onto the API's status taxonomy.
func ledgerStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
