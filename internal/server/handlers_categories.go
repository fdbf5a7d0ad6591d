package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpessa/yearview/internal/store"
)

type categoryPayload struct {
	Name    string  `json:"name"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

func (h *httpHandler) handleListCategories(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	categories, err := h.store.ListCategories(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *httpHandler) handleCreateCategory(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var payload categoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	created, err := h.store.CreateCategory(c.Request.Context(), userID, store.CategoryInput{
		Name:    payload.Name,
		Color:   payload.Color,
		Opacity: payload.Opacity,
	})
	if err != nil {
		h.respondStoreError(c, "create category", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *httpHandler) handleUpdateCategory(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var payload categoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	updated, err := h.store.UpdateCategory(c.Request.Context(), userID, c.Param("id"), store.CategoryInput{
		Name:    payload.Name,
		Color:   payload.Color,
		Opacity: payload.Opacity,
	})
	if err != nil {
		h.respondStoreError(c, "update category", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// handleDeleteCategory removes the category and every event filed under it.
func (h *httpHandler) handleDeleteCategory(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.store.DeleteCategory(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondStoreError(c, "delete category", err)
		return
	}
	c.Status(http.StatusNoContent)
}
