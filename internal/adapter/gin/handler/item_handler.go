package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ozo-backend/pkg/logger"
)

const (
	defaultItemLimit = 10
	maxItemLimit     = 100
)

// ItemResponse represents a listed item
type ItemResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// ItemHandler serves the item listing. No item store exists yet, so every
// page is empty.
type ItemHandler struct {
	log *zap.Logger
}

// NewItemHandler creates a new ItemHandler instance
func NewItemHandler(log *zap.Logger) *ItemHandler {
	return &ItemHandler{log: log}
}

// ListItems handles GET /api/v1/items?skip=&limit=
func (h *ItemHandler) ListItems(c *gin.Context) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "skip must be a non-negative integer",
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultItemLimit)))
	if err != nil || limit < 1 || limit > maxItemLimit {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "limit must be between 1 and 100",
		})
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Debug("listing items", zap.Int("skip", skip), zap.Int("limit", limit))
	c.JSON(http.StatusOK, []ItemResponse{})
}
