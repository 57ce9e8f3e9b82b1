package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"grumini-backend/internal/gemini"
	"grumini-backend/internal/ledger"
	"grumini-backend/internal/middleware"
	"grumini-backend/internal/models"
)

type GenerateHandler struct {
	geminiClient *gemini.Client
	projects     *ledger.ProjectStore
	history      *ledger.HistoryStore
	generatedDir string
}

func NewGenerateHandler(geminiClient *gemini.Client, projects *ledger.ProjectStore, history *ledger.HistoryStore, generatedDir string) *GenerateHandler {
	return &GenerateHandler{
		geminiClient: geminiClient,
		projects:     projects,
		history:      history,
		generatedDir: generatedDir,
	}
}

// GenerateImage turns a text prompt into an image, persists it as a
// project, and returns both the asset URL and the raw base64 data.
func (h *GenerateHandler) GenerateImage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	var req models.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "prompt is required"})
		return
	}

	image, err := h.geminiClient.GenerateImage(c.Request.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		if errors.Is(err, gemini.ErrQuotaExceeded) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":      false,
				"error":        "API quota exceeded. The image model has reached its free tier limit. Please try again later.",
				"isQuotaError": true,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "image generation failed", Message: err.Error()})
		return
	}

	ext := "png"
	if parts := strings.SplitN(image.MimeType, "/", 2); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}
	filename := "generated_image_" + uuid.New().String() + "." + ext
	if err := os.WriteFile(filepath.Join(h.generatedDir, filename), image.Data, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to store generated image", Message: err.Error()})
		return
	}

	project, err := h.projects.Insert(models.Project{
		UserID:    userID,
		Title:     req.Prompt,
		ImageURL:  generatedURL(c, filename),
		Type:      models.ProjectTypeGenerated,
		Reasoning: "Generated by Gemini from a text prompt.",
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to save project", Message: err.Error()})
		return
	}

	h.history.Append(models.HistoryEntry{
		UserID:      userID,
		Action:      "Generate",
		Status:      "Completed",
		Description: "Image generated from prompt",
	})

	c.JSON(http.StatusOK, models.GenerateImageResponse{
		Success:   true,
		ImageData: base64.StdEncoding.EncodeToString(image.Data),
		MimeType:  image.MimeType,
		ImageURL:  project.ImageURL,
		Project:   &project,
	})
}
