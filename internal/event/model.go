package event

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kpessa/yearview/internal/civil"
)

const (
	// PrimaryCalendarID is the implicit calendar identifier used when a
	// remote-linked record does not name its source calendar.
	PrimaryCalendarID = "primary"

	maxDayNoteLength = 100
)

var (
	// ErrMissingTitle indicates an event without a display title.
	ErrMissingTitle = errors.New("event: title is required")
	// ErrMissingDate indicates an event without a start date.
	ErrMissingDate = errors.New("event: date is required")
	// ErrMissingCategory indicates an event without a category reference.
	ErrMissingCategory = errors.New("event: category id is required")
	// ErrMissingUser indicates a record without an owner.
	ErrMissingUser = errors.New("event: user id is required")
	// ErrEndBeforeStart indicates an end date preceding the start date.
	ErrEndBeforeStart = errors.New("event: end date precedes start date")
	// ErrInvalidTime indicates a time-of-day value outside HH:MM form.
	ErrInvalidTime = errors.New("event: invalid time of day")
	// ErrDanglingEndTime indicates an end time supplied without a start time.
	ErrDanglingEndTime = errors.New("event: end time requires start time")
	// ErrNoteTooLong indicates a day note exceeding the length cap.
	ErrNoteTooLong = errors.New("event: day note exceeds 100 characters")
)

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Event is a user-visible calendar item. Date fields hold zero-padded
// YYYY-MM-DD strings with civil semantics; CreatedAt/UpdatedAt are
// milliseconds since epoch and act as a logical clock for tie-breaking.
type Event struct {
	ID                 string `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	UserID             string `gorm:"column:user_id;size:190;not null;index:idx_events_user_date,priority:1" json:"userId"`
	Title              string `gorm:"column:title;size:320;not null" json:"title"`
	Description        string `gorm:"column:description;type:text" json:"description,omitempty"`
	Date               string `gorm:"column:date;size:10;not null;index:idx_events_user_date,priority:2" json:"date"`
	EndDate            string `gorm:"column:end_date;size:10" json:"endDate,omitempty"`
	StartTime          string `gorm:"column:start_time;size:5" json:"startTime,omitempty"`
	EndTime            string `gorm:"column:end_time;size:5" json:"endTime,omitempty"`
	CategoryID         string `gorm:"column:category_id;size:190;not null;index" json:"categoryId"`
	CreatedAt          int64  `gorm:"column:created_at_ms;not null" json:"createdAt"`
	UpdatedAt          int64  `gorm:"column:updated_at_ms;not null" json:"updatedAt"`
	GoogleEventID      string `gorm:"column:google_event_id;size:190;index" json:"googleEventId,omitempty"`
	GoogleCalendarID   string `gorm:"column:google_calendar_id;size:190;index" json:"googleCalendarId,omitempty"`
	GoogleCalendarName string `gorm:"column:google_calendar_name;size:320" json:"googleCalendarName,omitempty"`
}

// TableName provides the explicit table binding for GORM.
func (Event) TableName() string {
	return "events"
}

// IsTimed reports whether the event carries a start time of day.
func (e Event) IsTimed() bool {
	return e.StartTime != ""
}

// IsRemoteLinked reports whether the event was imported from a remote calendar.
func (e Event) IsRemoteLinked() bool {
	return e.GoogleEventID != ""
}

// RemoteKey identifies the remote origin of a linked event. At most one
// stored event may hold a given key at any time.
func (e Event) RemoteKey() string {
	return RemoteKey(e.GoogleCalendarID, e.GoogleEventID)
}

// RemoteKey builds the dedup key for a (calendar, remote event) pair,
// substituting the primary calendar when calendarID is empty.
func RemoteKey(calendarID, remoteEventID string) string {
	if calendarID == "" {
		calendarID = PrimaryCalendarID
	}
	return calendarID + ":" + remoteEventID
}

// EffectiveEnd returns the inclusive end of the event's date range. A
// stored EndDate preceding Date is clamped to Date rather than excluded;
// malformed ranges are reachable only through direct store manipulation
// and clamping keeps every code path consistent.
func (e Event) EffectiveEnd() string {
	if e.EndDate == "" || e.EndDate < e.Date {
		return e.Date
	}
	return e.EndDate
}

// IsMultiDay reports whether the event spans more than one day after clamping.
func (e Event) IsMultiDay() bool {
	return e.EffectiveEnd() != e.Date
}

// Validate checks the invariants enforced at the write boundary.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(e.UserID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return ErrMissingCategory
	}
	if _, err := civil.Parse(e.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingDate, err)
	}
	if e.EndDate != "" {
		if _, err := civil.Parse(e.EndDate); err != nil {
			return fmt.Errorf("%w: %v", ErrEndBeforeStart, err)
		}
		if e.EndDate < e.Date {
			return ErrEndBeforeStart
		}
	}
	if e.StartTime != "" && !timeOfDayPattern.MatchString(e.StartTime) {
		return fmt.Errorf("%w: %q", ErrInvalidTime, e.StartTime)
	}
	if e.EndTime != "" {
		if e.StartTime == "" {
			return ErrDanglingEndTime
		}
		if !timeOfDayPattern.MatchString(e.EndTime) {
			return fmt.Errorf("%w: %q", ErrInvalidTime, e.EndTime)
		}
	}
	return nil
}

// Category is a user-defined label, optionally provisioned automatically
// to represent one remote calendar.
type Category struct {
	ID                    string  `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	UserID                string  `gorm:"column:user_id;size:190;not null;index" json:"userId"`
	Name                  string  `gorm:"column:name;size:320;not null" json:"name"`
	Color                 string  `gorm:"column:color;size:32;not null" json:"color"`
	Opacity               float64 `gorm:"column:opacity;not null;default:1" json:"opacity"`
	CreatedAt             int64   `gorm:"column:created_at_ms;not null" json:"createdAt"`
	GoogleCalendarID      string  `gorm:"column:google_calendar_id;size:190;index" json:"googleCalendarId,omitempty"`
	GoogleCalendarName    string  `gorm:"column:google_calendar_name;size:320" json:"googleCalendarName,omitempty"`
	GoogleCalendarPrimary bool    `gorm:"column:google_calendar_primary;not null;default:false" json:"googleCalendarPrimary,omitempty"`
}

// TableName provides the explicit table binding for GORM.
func (Category) TableName() string {
	return "categories"
}

// IsRemoteBacked reports whether the category represents a remote calendar.
func (c Category) IsRemoteBacked() bool {
	return c.GoogleCalendarID != ""
}

// Validate checks category invariants at the write boundary.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("category: name is required")
	}
	if strings.TrimSpace(c.UserID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(c.Color) == "" {
		return errors.New("category: color is required")
	}
	return nil
}

// CustomHoliday is a user override marking one date as a named holiday.
type CustomHoliday struct {
	ID        string `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	UserID    string `gorm:"column:user_id;size:190;not null;index:idx_custom_holidays_user_date,priority:1" json:"userId"`
	Date      string `gorm:"column:date;size:10;not null;index:idx_custom_holidays_user_date,priority:2" json:"date"`
	Note      string `gorm:"column:note;size:320;not null" json:"note"`
	CreatedAt int64  `gorm:"column:created_at_ms;not null" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (CustomHoliday) TableName() string {
	return "custom_holidays"
}

// Validate checks custom-holiday invariants at the write boundary.
func (h CustomHoliday) Validate() error {
	if strings.TrimSpace(h.UserID) == "" {
		return ErrMissingUser
	}
	if _, err := civil.Parse(h.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingDate, err)
	}
	if strings.TrimSpace(h.Note) == "" {
		return errors.New("event: holiday note is required")
	}
	return nil
}

// DayNote is a short annotation attached to one date. Uniqueness per
// (user, date) is maintained by the store's upsert-by-date path.
type DayNote struct {
	ID            string `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	UserID        string `gorm:"column:user_id;size:190;not null;index:idx_day_notes_user_date,priority:1" json:"userId"`
	Date          string `gorm:"column:date;size:10;not null;index:idx_day_notes_user_date,priority:2" json:"date"`
	Note          string `gorm:"column:note;size:100;not null" json:"note"`
	IsHighlighted bool   `gorm:"column:is_highlighted;not null;default:false" json:"isHighlighted"`
	CreatedAt     int64  `gorm:"column:created_at_ms;not null" json:"createdAt"`
	UpdatedAt     int64  `gorm:"column:updated_at_ms;not null" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (DayNote) TableName() string {
	return "day_notes"
}

// Validate checks day-note invariants at the write boundary.
func (n DayNote) Validate() error {
	if strings.TrimSpace(n.UserID) == "" {
		return ErrMissingUser
	}
	if _, err := civil.Parse(n.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingDate, err)
	}
	if len(n.Note) > maxDayNoteLength {
		return ErrNoteTooLong
	}
	return nil
}
