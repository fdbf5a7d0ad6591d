// Package sync reconciles batches of externally fetched calendar events
// against the locally stored event set. Every operation is a pure
// function over a snapshot passed in by the caller; results are intent
// lists the caller applies to the store, never direct mutations.
package sync

import "github.com/kpessa/yearview/internal/event"

// RemoteEvent is the normalized shape the reconciliation engine consumes.
// The fetch boundary has already converted remote datetimes to civil
// dates plus local times of day and turned exclusive all-day end dates
// into inclusive ones (empty EndDate means single-day).
type RemoteEvent struct {
	ID           string
	CalendarID   string
	CalendarName string
	Title        string
	Description  string
	Date         string
	EndDate      string
	StartTime    string
	EndTime      string
}

// Key identifies the remote event across calendars.
func (r RemoteEvent) Key() string {
	return event.RemoteKey(r.CalendarID, r.ID)
}

// RemoteCalendar is one entry of the remote calendar list.
type RemoteCalendar struct {
	ID              string
	Summary         string
	Primary         bool
	BackgroundColor string
}

// Op enumerates storage intent operations.
type Op string

const (
	// OpCreate inserts a new record.
	OpCreate Op = "create"
	// OpUpdate modifies the named columns of an existing record.
	OpUpdate Op = "update"
	// OpDelete removes a record.
	OpDelete Op = "delete"
)

// EntityType names the record kind an intent targets.
type EntityType string

const (
	// EntityEvent targets the events table.
	EntityEvent EntityType = "event"
	// EntityCategory targets the categories table.
	EntityCategory EntityType = "category"
)

// Intent is one storage mutation the engine asks the caller to apply.
// For updates, Columns names the record fields to persist; other fields
// of the payload are left untouched in the store.
type Intent struct {
	Op       Op
	Entity   EntityType
	ID       string
	Event    *event.Event
	Category *event.Category
	Columns  []string
}

// PlanResult is the outcome of one reconciliation pass.
type PlanResult struct {
	Intents []Intent
	Created int
	Linked  int
	Skipped int
}

// CategoryPlan is the outcome of calendar-to-category provisioning.
type CategoryPlan struct {
	Intents []Intent
	// CalendarToCategory maps each remote calendar id to the category
	// representing it, covering both existing and newly planned ones.
	CalendarToCategory map[string]string
	// NewCategories lists categories the plan creates, in input order.
	NewCategories []event.Category
	// NewlyVisible lists category ids the caller should add to the
	// user's visible set.
	NewlyVisible []string
}

// RemovalPlan is the outcome of a full remote-data disconnect.
type RemovalPlan struct {
	Intents []Intent
	// RemovedCategoryIDs lists category ids the caller should drop from
	// the user's visible set.
	RemovedCategoryIDs []string
}
