package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"grumini-backend/internal/gemini"
	"grumini-backend/internal/ledger"
	"grumini-backend/internal/middleware"
	"grumini-backend/internal/models"
)

type ChatHandler struct {
	geminiClient *gemini.Client
	projects     *ledger.ProjectStore
	generatedDir string
}

func NewChatHandler(geminiClient *gemini.Client, projects *ledger.ProjectStore, generatedDir string) *ChatHandler {
	return &ChatHandler{
		geminiClient: geminiClient,
		projects:     projects,
		generatedDir: generatedDir,
	}
}

// Analyze critiques a logo in a running conversation. The image comes from
// a fresh upload or an existing project; a fresh upload is promoted to an
// analysis project on success, an existing project gets the two new turns
// appended to its stored history.
func (h *ChatHandler) Analyze(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	message := c.PostForm("message")
	projectID := c.PostForm("projectId")

	var history []models.ChatTurn
	if raw := c.PostForm("history"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid history", Message: err.Error()})
			return
		}
	}

	var (
		image          gemini.Image
		uploadData     []byte
		uploadFilename string
	)
	if fileHeader, err := c.FormFile("image"); err == nil {
		src, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to open uploaded image", Message: err.Error()})
			return
		}
		uploadData, err = io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to read uploaded image", Message: err.Error()})
			return
		}
		uploadFilename = fileHeader.Filename
		image = gemini.Image{Data: uploadData, MimeType: gemini.MimeTypeForFile(fileHeader.Filename)}
	} else if projectID != "" {
		project, err := h.projects.GetOwned(projectID, userID)
		if err != nil {
			c.JSON(ledgerStatus(err), models.ErrorResponse{Error: err.Error()})
			return
		}
		filename := assetFilename(project.ImageURL)
		data, err := os.ReadFile(filepath.Join(h.generatedDir, filename))
		if err != nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project image file not found", Message: err.Error()})
			return
		}
		image = gemini.Image{Data: data, MimeType: gemini.MimeTypeForFile(filename)}
	} else {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "an image file or projectId is required"})
		return
	}

	// The provider requires a user-first history; drop the SPA's canned
	// welcome turn.
	if len(history) > 0 && history[0].Role == "model" {
		history = history[1:]
	}
	turns := make([]gemini.Turn, len(history))
	for i, t := range history {
		turns[i] = gemini.Turn{Role: t.Role, Text: t.Text}
	}

	analysis, err := h.geminiClient.AnalyzeChat(c.Request.Context(), image, turns, message)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		if errors.Is(err, gemini.ErrQuotaExceeded) {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "API quota exceeded", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "analysis failed", Message: err.Error()})
		return
	}

	if message == "" {
		message = "Analyze this logo."
	}
	newTurns := []models.ChatTurn{
		{Role: "user", Text: message},
		{Role: "model", Text: analysis},
	}

	response := models.ChatAnalyzeResponse{Analysis: analysis}

	if uploadData != nil {
		// Promote the fresh upload to an analysis project so the
		// conversation can continue against it.
		filename := "uploaded_logo_" + uuid.New().String() + extOrPNG(uploadFilename)
		if err := os.WriteFile(filepath.Join(h.generatedDir, filename), uploadData, 0o644); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to store uploaded image", Message: err.Error()})
			return
		}

		project, err := h.projects.Insert(models.Project{
			UserID:      userID,
			Title:       message,
			ImageURL:    generatedURL(c, filename),
			Type:        models.ProjectTypeAnalysis,
			Reasoning:   models.ReasoningUploadedForAnalysis,
			ChatHistory: newTurns,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to save project", Message: err.Error()})
			return
		}
		response.Project = &project
	} else {
		project, err := h.projects.AppendChat(projectID, userID, newTurns...)
		if err != nil {
			c.JSON(ledgerStatus(err), models.ErrorResponse{Error: err.Error()})
			return
		}
		response.Project = project
	}

	c.JSON(http.StatusOK, response)
}

func extOrPNG(filename string) string {
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	return ".png"
}
