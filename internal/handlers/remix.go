package handlers

import (
	"context"
	"errors"
	"fmt"
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

const maxRemixImages = 5

// Default prompts when the caller supplies none, keyed by input count.
const (
	promptSingleImage = "Turn this image into a professional quality studio shoot with better lighting and depth of field."
	promptMultiImage  = "Combine the subjects of these images in a natural way, producing a new image."
	promptNoImage     = "Generate an amazing image."
)

const (
	reasoningGenerated = "Generated by Gemini based on the input images."
	reasoningUpdated   = "Updated by Gemini remix."
)

type RemixHandler struct {
	geminiClient *gemini.Client
	projects     *ledger.ProjectStore
	generatedDir string
}

func NewRemixHandler(geminiClient *gemini.Client, projects *ledger.ProjectStore, generatedDir string) *RemixHandler {
	return &RemixHandler{
		geminiClient: geminiClient,
		projects:     projects,
		generatedDir: generatedDir,
	}
}

// Remix accepts up to five images plus a prompt, streams the model output
// into the generated-assets directory, and records the results as projects.
// With a projectId the first output replaces that project's image in place.
func (h *RemixHandler) Remix(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to parse multipart form", Message: err.Error()})
		return
	}

	files := form.File["images"]
	if len(files) > maxRemixImages {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: fmt.Sprintf("at most %d images are allowed", maxRemixImages),
		})
		return
	}

	prompt := c.PostForm("prompt")
	if prompt == "" {
		switch {
		case len(files) == 1:
			prompt = promptSingleImage
		case len(files) > 1:
			prompt = promptMultiImage
		default:
			prompt = promptNoImage
		}
	}

	// Stage the uploads as temp files for the adapter; they are inputs only
	// and removed when the request finishes.
	imagePaths := make([]string, 0, len(files))
	defer func() {
		for _, p := range imagePaths {
			os.Remove(p)
		}
	}()
	for _, file := range files {
		tmpPath := filepath.Join(h.generatedDir, "upload_"+uuid.New().String()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, tmpPath); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to store uploaded image", Message: err.Error()})
			return
		}
		imagePaths = append(imagePaths, tmpPath)
	}

	savedFiles, err := h.geminiClient.Remix(c.Request.Context(), imagePaths, prompt, h.generatedDir)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client is gone; partial outputs were already cleaned up.
			return
		}
		if errors.Is(err, gemini.ErrQuotaExceeded) {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "API quota exceeded", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "remix failed", Message: err.Error()})
		return
	}

	imageURLs := make([]string, 0, len(savedFiles))
	projectIDs := make([]string, 0, len(savedFiles))

	// Re-generation: the first output replaces the referenced project's
	// image and bumps its timestamp.
	if projectID := c.PostForm("projectId"); projectID != "" && len(savedFiles) > 0 {
		imageURL := generatedURL(c, savedFiles[0])
		updated, err := h.projects.ReplaceImage(projectID, userID, prompt, imageURL, reasoningUpdated)
		if err == nil {
			imageURLs = append(imageURLs, updated.ImageURL)
			projectIDs = append(projectIDs, updated.ID)
			savedFiles = savedFiles[1:]
		}
	}

	for _, filename := range savedFiles {
		project, err := h.projects.Insert(models.Project{
			UserID:    userID,
			Title:     prompt,
			ImageURL:  generatedURL(c, filename),
			Type:      models.ProjectTypeGenerated,
			Reasoning: reasoningGenerated,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to save project", Message: err.Error()})
			return
		}
		imageURLs = append(imageURLs, project.ImageURL)
		projectIDs = append(projectIDs, project.ID)
	}

	c.JSON(http.StatusOK, models.RemixResponse{
		Success:    true,
		Images:     imageURLs,
		ProjectIDs: projectIDs,
	})
}
