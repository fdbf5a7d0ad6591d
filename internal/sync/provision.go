package sync

import (
	"strings"

	"github.com/kpessa/yearview/internal/event"
)

const fallbackCalendarName = "Google Calendar"

// EnsureCategoriesForCalendars resolves each remote calendar in the sync
// set to a category, planning creation for previously unseen calendars.
// It is idempotent: calendars that already have a matching category map
// to it and produce no intents.
func (e *Engine) EnsureCategoriesForCalendars(userID string, categories []event.Category, calendars []RemoteCalendar) (CategoryPlan, error) {
	if strings.TrimSpace(userID) == "" {
		e.logError(opEnsureCategories, "missing_user_id", errMissingUserID)
		return CategoryPlan{}, newServiceError(opEnsureCategories, "missing_user_id", errMissingUserID)
	}

	existingByCalendar := make(map[string]event.Category)
	for _, c := range categories {
		if c.IsRemoteBacked() {
			existingByCalendar[c.GoogleCalendarID] = c
		}
	}

	plan := CategoryPlan{CalendarToCategory: make(map[string]string, len(calendars))}
	for index, calendar := range calendars {
		if calendar.ID == "" {
			continue
		}
		if existing, ok := existingByCalendar[calendar.ID]; ok {
			plan.CalendarToCategory[calendar.ID] = existing.ID
			continue
		}
		if _, ok := plan.CalendarToCategory[calendar.ID]; ok {
			// Duplicate entry in the calendar list.
			continue
		}

		name := calendar.Summary
		if name == "" {
			name = fallbackCalendarName
		}
		color := calendar.BackgroundColor
		if color == "" {
			color = CalendarColor(calendar.ID, index)
		}

		id, err := e.ids.NewID()
		if err != nil {
			e.logError(opEnsureCategories, "id_generation_failed", err)
			return CategoryPlan{}, newServiceError(opEnsureCategories, "id_generation_failed", err)
		}
		created := event.Category{
			ID:                    id,
			UserID:                userID,
			Name:                  name,
			Color:                 color,
			Opacity:               1,
			CreatedAt:             e.nowMillis(),
			GoogleCalendarID:      calendar.ID,
			GoogleCalendarName:    calendar.Summary,
			GoogleCalendarPrimary: calendar.Primary,
		}
		plan.Intents = append(plan.Intents, Intent{
			Op:       OpCreate,
			Entity:   EntityCategory,
			ID:       id,
			Category: &created,
		})
		plan.NewCategories = append(plan.NewCategories, created)
		plan.NewlyVisible = append(plan.NewlyVisible, id)
		plan.CalendarToCategory[calendar.ID] = id
	}

	return plan, nil
}

// EnsureCategoriesFromEvents repairs events that carry a remote calendar
// id whose category has gone missing: it provisions a category from the
// cached calendar name and re-points the orphaned events at it.
func (e *Engine) EnsureCategoriesFromEvents(userID string, locals []event.Event, categories []event.Category) (CategoryPlan, error) {
	if strings.TrimSpace(userID) == "" {
		e.logError(opEnsureCategories, "missing_user_id", errMissingUserID)
		return CategoryPlan{}, newServiceError(opEnsureCategories, "missing_user_id", errMissingUserID)
	}

	existingByCalendar := make(map[string]string)
	for _, c := range categories {
		if c.IsRemoteBacked() {
			existingByCalendar[c.GoogleCalendarID] = c.ID
		}
	}

	plan := CategoryPlan{CalendarToCategory: make(map[string]string)}
	for calendarID, categoryID := range existingByCalendar {
		plan.CalendarToCategory[calendarID] = categoryID
	}

	fallbackIndex := 0
	for _, local := range locals {
		calendarID := local.GoogleCalendarID
		if calendarID == "" {
			continue
		}
		if _, ok := plan.CalendarToCategory[calendarID]; ok {
			continue
		}

		name := local.GoogleCalendarName
		if name == "" {
			name = fallbackCalendarName
		}
		id, err := e.ids.NewID()
		if err != nil {
			e.logError(opEnsureCategories, "id_generation_failed", err)
			return CategoryPlan{}, newServiceError(opEnsureCategories, "id_generation_failed", err)
		}
		created := event.Category{
			ID:                 id,
			UserID:             userID,
			Name:               name,
			Color:              CalendarColor(calendarID, fallbackIndex),
			Opacity:            1,
			CreatedAt:          e.nowMillis(),
			GoogleCalendarID:   calendarID,
			GoogleCalendarName: name,
		}
		fallbackIndex++
		plan.Intents = append(plan.Intents, Intent{
			Op:       OpCreate,
			Entity:   EntityCategory,
			ID:       id,
			Category: &created,
		})
		plan.NewCategories = append(plan.NewCategories, created)
		plan.NewlyVisible = append(plan.NewlyVisible, id)
		plan.CalendarToCategory[calendarID] = id
	}

	for _, local := range locals {
		calendarID := local.GoogleCalendarID
		if calendarID == "" {
			continue
		}
		target, ok := plan.CalendarToCategory[calendarID]
		if !ok || local.CategoryID == target {
			continue
		}
		updated := local
		updated.CategoryID = target
		updated.UpdatedAt = e.nowMillis()
		plan.Intents = append(plan.Intents, Intent{
			Op:      OpUpdate,
			Entity:  EntityEvent,
			ID:      local.ID,
			Event:   &updated,
			Columns: []string{"category_id", "updated_at_ms"},
		})
	}

	return plan, nil
}

// RemoveAllRemoteData plans the full disconnect: every event imported
// from a remote calendar goes first, then every remote-backed category.
func (e *Engine) RemoveAllRemoteData(locals []event.Event, categories []event.Category) RemovalPlan {
	var plan RemovalPlan
	for _, local := range locals {
		if local.GoogleCalendarID != "" {
			plan.Intents = append(plan.Intents, Intent{Op: OpDelete, Entity: EntityEvent, ID: local.ID})
		}
	}
	for _, c := range categories {
		if c.IsRemoteBacked() {
			plan.Intents = append(plan.Intents, Intent{Op: OpDelete, Entity: EntityCategory, ID: c.ID})
			plan.RemovedCategoryIDs = append(plan.RemovedCategoryIDs, c.ID)
		}
	}
	return plan
}
