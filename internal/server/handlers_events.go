package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpessa/yearview/internal/store"
)

type eventPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	EndDate     string `json:"endDate"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	CategoryID  string `json:"categoryId"`
}

func (p eventPayload) toInput() store.EventInput {
	return store.EventInput{
		Title:       p.Title,
		Description: p.Description,
		Date:        p.Date,
		EndDate:     p.EndDate,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		CategoryID:  p.CategoryID,
	}
}

func (h *httpHandler) handleListEvents(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	events, err := h.store.ListEvents(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *httpHandler) handleCreateEvent(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var payload eventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	created, err := h.store.CreateEvent(c.Request.Context(), userID, payload.toInput())
	if err != nil {
		h.respondStoreError(c, "create event", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *httpHandler) handleUpdateEvent(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var payload eventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	updated, err := h.store.UpdateEvent(c.Request.Context(), userID, c.Param("id"), payload.toInput())
	if err != nil {
		h.respondStoreError(c, "update event", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *httpHandler) handleDeleteEvent(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.store.DeleteEvent(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondStoreError(c, "delete event", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondStoreError maps storage failures onto HTTP statuses: ownership and
// existence misses become 404, validation failures 400, the rest 500.
func (h *httpHandler) respondStoreError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("store operation failed", zap.String("action", action), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func isValidationError(err error) bool {
	var serviceErr *store.ServiceError
	if !errors.As(err, &serviceErr) {
		return false
	}
	code := serviceErr.Code()
	return strings.Contains(code, ".invalid_") || strings.HasSuffix(code, ".unknown_category")
}
