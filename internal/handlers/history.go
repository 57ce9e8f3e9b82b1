package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"grumini-backend/internal/ledger"
	"grumini-backend/internal/middleware"
	"grumini-backend/internal/models"
)

type HistoryHandler struct {
	history *ledger.HistoryStore
}

func NewHistoryHandler(history *ledger.HistoryStore) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) ListHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	entries, err := h.history.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list history", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *HistoryHandler) AddHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	var req models.AddHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "action is required", Message: err.Error()})
		return
	}

	entry, err := h.history.Append(models.HistoryEntry{
		UserID:      userID,
		Action:      req.Action,
		Status:      req.Status,
		Description: req.Description,
		Time:        req.Time,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to record history", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}
