package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"grumini-backend/internal/ledger"
	"grumini-backend/internal/middleware"
	"grumini-backend/internal/models"
)

type ProjectsHandler struct {
	projects     *ledger.ProjectStore
	generatedDir string
}

func NewProjectsHandler(projects *ledger.ProjectStore, generatedDir string) *ProjectsHandler {
	return &ProjectsHandler{
		projects:     projects,
		generatedDir: generatedDir,
	}
}

// ListProjects returns the user's projects newest first. excludeType=analysis
// drops analysis-tagged and analysis-upload records.
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	excludeAnalysis := c.Query("excludeType") == models.ProjectTypeAnalysis
	projects, err := h.projects.ListByUser(userID, excludeAnalysis)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list projects", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, projects)
}

// DeleteProject removes the record and best-effort deletes the backing file.
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	removed, err := h.projects.Delete(c.Param("id"), userID)
	if err != nil {
		c.JSON(ledgerStatus(err), models.ErrorResponse{Error: err.Error()})
		return
	}

	if removed.ImageURL != "" {
		filename := assetFilename(removed.ImageURL)
		if filename != "" && filename != "." && filename != "/" {
			os.Remove(filepath.Join(h.generatedDir, filename))
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RateProject upserts the 1-10 brand/satisfaction scores on a project.
func (h *ProjectsHandler) RateProject(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	var req models.RateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if req.BrandScore == nil && req.SatisfactionScore == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "at least one of brandScore or satisfactionScore is required"})
		return
	}

	project, err := h.projects.Rate(c.Param("id"), userID, req.BrandScore, req.SatisfactionScore)
	if err != nil {
		if errors.Is(err, ledger.ErrScoreOutOfRange) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(ledgerStatus(err), models.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "project": project})
}
