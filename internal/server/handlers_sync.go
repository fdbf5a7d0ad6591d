package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpessa/yearview/internal/scheduler"
)

type syncRunPayload struct {
	Year int `json:"year"`
}

// handleSyncRun triggers one on-demand reconciliation pass. The year
// defaults to the current one.
func (h *httpHandler) handleSyncRun(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync_disabled"})
		return
	}

	var payload syncRunPayload
	// An absent body means "sync the current year".
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	year := payload.Year
	if year == 0 {
		year = time.Now().Year()
	}

	summary, err := h.runner.RunOnce(c.Request.Context(), userID, year)
	if errors.Is(err, scheduler.ErrStaleRun) {
		c.JSON(http.StatusConflict, gin.H{"error": "superseded"})
		return
	}
	if err != nil {
		h.logger.Error("sync run failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "sync_failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleSyncDisconnect deletes every remote-backed event and category.
func (h *httpHandler) handleSyncDisconnect(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync_disabled"})
		return
	}
	removed, err := h.runner.Disconnect(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("sync disconnect failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "disconnect_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removedCategoryIds": removed})
}

// handleExportYear serves GET /export/2026.ics.
func (h *httpHandler) handleExportYear(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export_disabled"})
		return
	}
	year, err := strconv.Atoi(strings.TrimSuffix(c.Param("year"), ".ics"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_year"})
		return
	}

	events, err := h.store.ListEvents(c.Request.Context(), userID)
	if err != nil {
		h.respondStoreError(c, "list events", err)
		return
	}
	categories, err := h.store.ListCategories(c.Request.Context(), userID)
	if err != nil {
		h.respondStoreError(c, "list categories", err)
		return
	}

	serialized, err := h.exporter.Year(events, categories, year)
	if err != nil {
		h.logger.Error("export failed", zap.Int("year", year), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+strconv.Itoa(year)+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(serialized))
}
