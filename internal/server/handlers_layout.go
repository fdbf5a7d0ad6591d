package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kpessa/yearview/internal/civil"
	"github.com/kpessa/yearview/internal/layout"
)

func (h *httpHandler) layoutInput(ctx context.Context, c *gin.Context, userID string) (layout.Input, time.Weekday, bool) {
	events, err := h.store.ListEvents(ctx, userID)
	if err != nil {
		h.respondStoreError(c, "list events", err)
		return layout.Input{}, 0, false
	}
	categories, err := h.store.ListCategories(ctx, userID)
	if err != nil {
		h.respondStoreError(c, "list categories", err)
		return layout.Input{}, 0, false
	}
	settings, err := h.store.GetSettings(ctx, userID)
	if err != nil {
		h.respondStoreError(c, "load settings", err)
		return layout.Input{}, 0, false
	}
	input := layout.Input{
		Events:             events,
		Categories:         categories,
		VisibleCategoryIDs: settings.VisibleCategorySet(),
	}
	return input, time.Weekday(settings.WeekStartDay), true
}

// handleLayoutYear returns twelve month projections, one per row of the
// year grid.
func (h *httpHandler) handleLayoutYear(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_year"})
		return
	}
	input, _, ok := h.layoutInput(c.Request.Context(), c, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "months": layout.ForYear(year, input)})
}

// handleLayoutWeek returns the layout for the week containing ?date=.
func (h *httpHandler) handleLayoutWeek(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	date, err := civil.Parse(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
		return
	}
	input, weekStart, ok := h.layoutInput(c.Request.Context(), c, userID)
	if !ok {
		return
	}
	week := civil.WeekOf(date, weekStart)
	c.JSON(http.StatusOK, gin.H{
		"weekStart": week.Start.String(),
		"weekEnd":   week.End.String(),
		"layout":    layout.ForWeek(week, input),
	})
}

// handleDeckYear returns the card-deck projection: four 13-week quarters.
func (h *httpHandler) handleDeckYear(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_year"})
		return
	}
	input, weekStart, ok := h.layoutInput(c.Request.Context(), c, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"year":     year,
		"quarters": layout.DeckForYear(year, weekStart, input),
	})
}
