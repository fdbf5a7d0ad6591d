package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpessa/yearview/internal/event"
	"github.com/kpessa/yearview/internal/holiday"
	"github.com/kpessa/yearview/internal/store"
)

type customHolidayPayload struct {
	Note string `json:"note"`
	Date string `json:"date"`
}

func (h *httpHandler) handleListCustomHolidays(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	holidays, err := h.store.ListCustomHolidays(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list custom holidays", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customHolidays": holidays})
}

func (h *httpHandler) handleCreateCustomHoliday(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var payload customHolidayPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	created, err := h.store.CreateCustomHoliday(c.Request.Context(), userID, store.CustomHolidayInput{
		Note: payload.Note,
		Date: payload.Date,
	})
	if err != nil {
		h.respondStoreError(c, "create custom holiday", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *httpHandler) handleDeleteCustomHoliday(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.store.DeleteCustomHoliday(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondStoreError(c, "delete custom holiday", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleHolidayYear returns the static holiday table for a year, filtered
// by the user's source toggles and merged with their custom holidays.
func (h *httpHandler) handleHolidayYear(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_year"})
		return
	}
	settings, err := h.store.GetSettings(c.Request.Context(), userID)
	if err != nil {
		h.respondStoreError(c, "load settings", err)
		return
	}
	custom, err := h.store.ListCustomHolidays(c.Request.Context(), userID)
	if err != nil {
		h.respondStoreError(c, "list custom holidays", err)
		return
	}
	entries := holiday.ForYear(year, custom, holiday.Options{
		ShowUS:    settings.ShowUSHolidays,
		ShowIndia: settings.ShowIndiaHolidays,
	})
	c.JSON(http.StatusOK, gin.H{"year": year, "holidays": entries})
}

type dayNotePayload struct {
	Date        string `json:"date"`
	Note        string `json:"note"`
	Highlighted *bool  `json:"isHighlighted"`
}

func (h *httpHandler) handleListDayNotes(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	notes, err := h.store.ListDayNotes(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list day notes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dayNotes": notes})
}

func (h *httpHandler) handleUpsertDayNote(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var payload dayNotePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	note, err := h.store.UpsertDayNote(c.Request.Context(), userID, store.DayNoteInput{
		Date:        payload.Date,
		Note:        payload.Note,
		Highlighted: payload.Highlighted,
	})
	if err != nil {
		h.respondStoreError(c, "upsert day note", err)
		return
	}
	if note == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *httpHandler) handleDeleteDayNote(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.store.DeleteDayNote(c.Request.Context(), userID, c.Param("date")); err != nil {
		h.respondStoreError(c, "delete day note", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type settingsPayload struct {
	WeekStartDay      *int     `json:"weekStartDay"`
	ShowUSHolidays    *bool    `json:"showUSHolidays"`
	ShowIndiaHolidays *bool    `json:"showIndiaHolidays"`
	VisibleCategories []string `json:"visibleCategories"`
}

func (h *httpHandler) handleGetSettings(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	settings, err := h.store.GetSettings(c.Request.Context(), userID)
	if err != nil {
		h.respondStoreError(c, "load settings", err)
		return
	}
	c.JSON(http.StatusOK, settingsResponse(settings))
}

func (h *httpHandler) handleUpdateSettings(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var payload settingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	settings, err := h.store.GetSettings(c.Request.Context(), userID)
	if err != nil {
		h.respondStoreError(c, "load settings", err)
		return
	}
	if payload.WeekStartDay != nil {
		if *payload.WeekStartDay < 0 || *payload.WeekStartDay > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_week_start"})
			return
		}
		settings.WeekStartDay = *payload.WeekStartDay
	}
	if payload.ShowUSHolidays != nil {
		settings.ShowUSHolidays = *payload.ShowUSHolidays
	}
	if payload.ShowIndiaHolidays != nil {
		settings.ShowIndiaHolidays = *payload.ShowIndiaHolidays
	}
	if payload.VisibleCategories != nil {
		settings.SetVisibleCategories(payload.VisibleCategories)
	}
	if err := h.store.SaveSettings(c.Request.Context(), settings); err != nil {
		h.respondStoreError(c, "save settings", err)
		return
	}
	c.JSON(http.StatusOK, settingsResponse(settings))
}

// settingsResponse surfaces the visible-category list explicitly; null
// means every category is visible.
func settingsResponse(s *event.UserSettings) gin.H {
	var visible []string
	if s.VisibleCategories != "" {
		visible = strings.Split(s.VisibleCategories, ",")
	}
	return gin.H{
		"weekStartDay":      s.WeekStartDay,
		"showUSHolidays":    s.ShowUSHolidays,
		"showIndiaHolidays": s.ShowIndiaHolidays,
		"visibleCategories": visible,
	}
}
