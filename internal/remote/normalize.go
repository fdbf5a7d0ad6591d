// Package remote fetches events from Google Calendar and normalizes them
// into the neutral shapes the reconciliation engine consumes.
package remote

import (
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/kpessa/yearview/internal/civil"
	"github.com/kpessa/yearview/internal/sync"
)

const (
	defaultTitle       = "Untitled Event"
	defaultDescription = "Imported from Google Calendar"

	statusCancelled = "cancelled"
)

// normalizeEvent converts one Google Calendar item into a RemoteEvent.
// The boolean is false when the item carries nothing worth importing.
//
// Google represents all-day spans with an exclusive end date. The stored
// model uses inclusive end dates, so the end moves back one day, and an
// end equal to the start collapses to a single-day event. Timed events
// keep the calendar's local wall-clock date and HH:MM, never a UTC
// conversion of the instant.
func normalizeEvent(item *calendar.Event, calendarID, calendarName string) (sync.RemoteEvent, bool) {
	if item == nil || item.Id == "" || item.Status == statusCancelled {
		return sync.RemoteEvent{}, false
	}
	if item.Start == nil {
		return sync.RemoteEvent{}, false
	}

	normalized := sync.RemoteEvent{
		ID:           item.Id,
		CalendarID:   calendarID,
		CalendarName: calendarName,
		Title:        strings.TrimSpace(item.Summary),
		Description:  strings.TrimSpace(item.Description),
	}
	if normalized.Title == "" {
		normalized.Title = defaultTitle
	}
	if normalized.Description == "" {
		normalized.Description = defaultDescription
	}

	switch {
	case item.Start.Date != "":
		start, err := civil.Parse(item.Start.Date)
		if err != nil {
			return sync.RemoteEvent{}, false
		}
		normalized.Date = start.String()
		if item.End != nil && item.End.Date != "" {
			exclusiveEnd, err := civil.Parse(item.End.Date)
			if err != nil {
				return sync.RemoteEvent{}, false
			}
			inclusiveEnd := exclusiveEnd.AddDays(-1)
			if inclusiveEnd.After(start) {
				normalized.EndDate = inclusiveEnd.String()
			}
		}
	case item.Start.DateTime != "":
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return sync.RemoteEvent{}, false
		}
		normalized.Date = civil.FromTime(start).String()
		normalized.StartTime = start.Format("15:04")
		if item.End != nil && item.End.DateTime != "" {
			end, err := time.Parse(time.RFC3339, item.End.DateTime)
			if err == nil {
				normalized.EndTime = end.Format("15:04")
				endDate := civil.FromTime(end)
				if endDate.After(civil.FromTime(start)) {
					normalized.EndDate = endDate.String()
				}
			}
		}
	default:
		return sync.RemoteEvent{}, false
	}

	return normalized, true
}

// mergeByKey folds events from several calendars into one slice, keeping the
// first occurrence of each remote key. Order within a calendar is preserved.
func mergeByKey(batches [][]sync.RemoteEvent) []sync.RemoteEvent {
	seen := make(map[string]bool)
	var merged []sync.RemoteEvent
	for _, batch := range batches {
		for _, remote := range batch {
			key := remote.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, remote)
		}
	}
	return merged
}
