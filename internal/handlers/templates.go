package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"grumini-backend/internal/gemini"
	"grumini-backend/internal/ledger"
	"grumini-backend/internal/middleware"
	"grumini-backend/internal/models"
)

type TemplatesHandler struct {
	geminiClient *gemini.Client
	projects     *ledger.ProjectStore
	exports      *ledger.ExportStore
	history      *ledger.HistoryStore
	generatedDir string
}

func NewTemplatesHandler(geminiClient *gemini.Client, projects *ledger.ProjectStore, exports *ledger.ExportStore, history *ledger.HistoryStore, generatedDir string) *TemplatesHandler {
	return &TemplatesHandler{
		geminiClient: geminiClient,
		projects:     projects,
		exports:      exports,
		history:      history,
		generatedDir: generatedDir,
	}
}

// templateInstruction builds the aspect-ratio prompt for a channel
// template, keyed by substring match on the template name.
func templateInstruction(templateName string) string {
	name := strings.ToLower(templateName)
	switch {
	case strings.Contains(name, "story") || strings.Contains(name, "tiktok") || strings.Contains(name, "reels"):
		return fmt.Sprintf("Adapt this image into a 9:16 vertical format for %s. Extend the background naturally and keep the main subject centered in the safe zone.", templateName)
	case strings.Contains(name, "linkedin") || strings.Contains(name, "twitter"):
		return fmt.Sprintf("Adapt this image into a wide horizontal banner for %s. Extend the background to the sides and keep all text and logos legible.", templateName)
	case strings.Contains(name, "youtube"):
		return fmt.Sprintf("Adapt this image into a 16:9 format for %s. Recompose so the focal point stays prominent at thumbnail size.", templateName)
	default:
		return fmt.Sprintf("Adapt this image for the %s channel format, preserving the branding and recomposing the layout as needed.", templateName)
	}
}

// Generate adapts a project's asset to a marketing-channel template and
// records an Export plus a History entry. A client disconnect aborts the
// in-flight generation; nothing is recorded and no response is written on
// that path.
func (h *TemplatesHandler) Generate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	var req models.TemplateGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "projectId and templateName are required", Message: err.Error()})
		return
	}

	project, err := h.projects.GetOwned(req.ProjectID, userID)
	if err != nil {
		c.JSON(ledgerStatus(err), models.ErrorResponse{Error: err.Error()})
		return
	}

	sourcePath := filepath.Join(h.generatedDir, assetFilename(project.ImageURL))
	if _, err := os.Stat(sourcePath); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project image file not found", Message: err.Error()})
		return
	}

	instruction := templateInstruction(req.TemplateName)
	savedFiles, err := h.geminiClient.Remix(c.Request.Context(), []string{sourcePath}, instruction, h.generatedDir)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Connection already gone; the adapter removed partial files.
			return
		}
		if errors.Is(err, gemini.ErrQuotaExceeded) {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "API quota exceeded", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "template generation failed", Message: err.Error()})
		return
	}
	if len(savedFiles) == 0 {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "no image produced for template"})
		return
	}

	filename := savedFiles[0]
	format := strings.ToUpper(strings.TrimPrefix(filepath.Ext(filename), "."))
	if format == "" {
		format = "PNG"
	}
	exportType := req.TemplateType
	if exportType == "" {
		exportType = "image"
	}

	export, err := h.exports.Insert(models.Export{
		UserID:  userID,
		Name:    fmt.Sprintf("%s_%s", sanitizeName(project.Title), strings.ReplaceAll(req.TemplateName, " ", "_")),
		Type:    exportType,
		Format:  format,
		Project: project.Title,
		URL:     generatedURL(c, filename),
		Status:  "Ready",
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to record export", Message: err.Error()})
		return
	}

	if _, err := h.history.Append(models.HistoryEntry{
		UserID:      userID,
		Action:      "Template Adaptation",
		Status:      "Completed",
		Description: fmt.Sprintf("Adapted %q for %s", project.Title, req.TemplateName),
	}); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to record history", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.TemplateGenerateResponse{Success: true, Export: export})
}

// sanitizeName trims a project title down to a filesystem-friendly label.
func sanitizeName(title string) string {
	fields := strings.Fields(title)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	name := strings.Join(fields, "_")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return -1
		}
	}, name)
	if name == "" {
		return "export"
	}
	return name
}
