// Package export renders a user's planner year as an iCalendar document.
package export

import (
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/kpessa/yearview/internal/civil"
	"github.com/kpessa/yearview/internal/event"
)

const (
	calendarProductID = "-//yearview//year planner//EN"
	uidSuffix         = "@yearview"
)

var errMissingClock = errors.New("clock is required")

// ExporterConfig wires the exporter's dependencies.
type ExporterConfig struct {
	Clock    func() time.Time
	Location *time.Location
}

// Exporter serializes events to RFC 5545 iCalendar text.
type Exporter struct {
	clock    func() time.Time
	location *time.Location
}

// NewExporter constructs an Exporter. Timed events are rendered in the
// given location, defaulting to the process local zone.
func NewExporter(cfg ExporterConfig) (*Exporter, error) {
	if cfg.Clock == nil {
		return nil, fmt.Errorf("export.new: %w", errMissingClock)
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	return &Exporter{clock: cfg.Clock, location: location}, nil
}

// Year renders every event starting in the given year as one VCALENDAR.
// All-day events use DATE values with the exclusive DTEND the format
// requires, so an inclusive March 2..4 span serializes as DTEND March 5.
func (e *Exporter) Year(events []event.Event, categories []event.Category, year int) (string, error) {
	categoryNames := make(map[string]string, len(categories))
	for _, category := range categories {
		categoryNames[category.ID] = category.Name
	}

	yearPrefix := fmt.Sprintf("%04d-", year)
	stamp := e.clock().UTC()

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetName(fmt.Sprintf("Year Planner %d", year))

	for _, item := range events {
		if len(item.Date) < len(yearPrefix) || item.Date[:len(yearPrefix)] != yearPrefix {
			continue
		}
		start, err := civil.Parse(item.Date)
		if err != nil {
			continue
		}

		entry := cal.AddEvent(item.ID + uidSuffix)
		entry.SetDtStampTime(stamp)
		entry.SetSummary(item.Title)
		if item.Description != "" {
			entry.SetDescription(item.Description)
		}
		if name, ok := categoryNames[item.CategoryID]; ok && name != "" {
			entry.SetProperty(ical.ComponentPropertyCategories, name)
		}

		if item.IsTimed() {
			if err := e.setTimedRange(entry, item, start); err != nil {
				return "", fmt.Errorf("export.year: event %s: %w", item.ID, err)
			}
			continue
		}

		end, err := civil.Parse(item.EffectiveEnd())
		if err != nil {
			end = start
		}
		entry.SetAllDayStartAt(start.Time(e.location))
		entry.SetAllDayEndAt(end.AddDays(1).Time(e.location))
	}

	return cal.Serialize(), nil
}

func (e *Exporter) setTimedRange(entry *ical.VEvent, item event.Event, start civil.Date) error {
	startAt, err := atTime(start, item.StartTime, e.location)
	if err != nil {
		return err
	}
	entry.SetStartAt(startAt)

	endDate := start
	if item.EndDate != "" {
		if parsed, parseErr := civil.Parse(item.EffectiveEnd()); parseErr == nil {
			endDate = parsed
		}
	}
	endClock := item.EndTime
	if endClock == "" {
		endClock = item.StartTime
	}
	endAt, err := atTime(endDate, endClock, e.location)
	if err != nil {
		return err
	}
	if !endAt.After(startAt) {
		endAt = startAt.Add(time.Hour)
	}
	entry.SetEndAt(endAt)
	return nil
}

func atTime(date civil.Date, clockValue string, location *time.Location) (time.Time, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(clockValue, "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("bad time of day %q: %w", clockValue, err)
	}
	return time.Date(date.Year, date.Month, date.Day, hour, minute, 0, 0, location), nil
}
