package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"grumini-backend/internal/ledger"
	"grumini-backend/internal/middleware"
	"grumini-backend/internal/models"
)

type ExportsHandler struct {
	exports *ledger.ExportStore
}

func NewExportsHandler(exports *ledger.ExportStore) *ExportsHandler {
	return &ExportsHandler{exports: exports}
}

func (h *ExportsHandler) ListExports(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	exports, err := h.exports.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list exports", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, exports)
}

func (h *ExportsHandler) DeleteExport(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	if err := h.exports.Delete(c.Param("id"), userID); err != nil {
		c.JSON(ledgerStatus(err), models.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
