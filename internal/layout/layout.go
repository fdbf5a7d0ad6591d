// Package layout computes renderable views over a window of consecutive
// calendar dates: which events land on each day, and how multi-day
// events stack into non-overlapping horizontal bars.
package layout

import (
	"sort"
	"strings"
	"time"

	"github.com/kpessa/yearview/internal/civil"
	"github.com/kpessa/yearview/internal/event"
)

// Input is the snapshot a layout is derived from. The engine never
// mutates it and holds no state between calls.
type Input struct {
	Events     []event.Event
	Categories []event.Category

	// VisibleCategoryIDs limits layout to the listed categories. A nil
	// map shows every known category; an empty map shows none.
	VisibleCategoryIDs map[string]bool

	// Columns sets the grid the bar percentages project onto. Zero means
	// one column per window date. The dense year grid renders each month
	// on a fixed 31-column track, so its windows pass 31.
	Columns int
}

// Bar is a multi-day event positioned within a window. Indexes are
// clamped to the window; Slot is the stacking row assigned so that
// overlapping bars never share a row.
type Bar struct {
	Event        event.Event `json:"event"`
	StartIndex   int         `json:"startIndex"`
	EndIndex     int         `json:"endIndex"`
	Span         int         `json:"span"`
	Slot         int         `json:"slot"`
	LeftPercent  float64     `json:"leftPercent"`
	WidthPercent float64     `json:"widthPercent"`
}

// Day pairs one window date with its ordered single-day events.
type Day struct {
	Date   civil.Date    `json:"date"`
	Events []event.Event `json:"events"`
}

// WindowLayout is the full derived view for one window.
type WindowLayout struct {
	Days      []Day `json:"days"`
	Bars      []Bar `json:"bars"`
	SlotCount int   `json:"slotCount"`
}

// ForWindow lays out the events visible in the window spanned by dates.
// Events referencing an unknown category, hidden categories, and events
// whose range misses the window are excluded, never errors.
func ForWindow(dates []civil.Date, input Input) WindowLayout {
	if len(dates) == 0 {
		return WindowLayout{}
	}

	windowStart := dates[0].String()
	windowEnd := dates[len(dates)-1].String()

	known := make(map[string]bool, len(input.Categories))
	for _, c := range input.Categories {
		known[c.ID] = true
	}

	var singleDay, multiDay []event.Event
	for _, e := range input.Events {
		if !known[e.CategoryID] {
			continue
		}
		if input.VisibleCategoryIDs != nil && !input.VisibleCategoryIDs[e.CategoryID] {
			continue
		}
		if _, err := civil.Parse(e.Date); err != nil {
			continue
		}
		// Inclusive range-overlap test over lexicographic date strings.
		if e.Date > windowEnd || e.EffectiveEnd() < windowStart {
			continue
		}
		if e.IsMultiDay() {
			multiDay = append(multiDay, e)
		} else {
			singleDay = append(singleDay, e)
		}
	}

	layout := WindowLayout{Days: make([]Day, len(dates))}
	for i, date := range dates {
		key := date.String()
		var onDate []event.Event
		for _, e := range singleDay {
			if e.Date == key {
				onDate = append(onDate, e)
			}
		}
		SortDayEvents(onDate)
		layout.Days[i] = Day{Date: date, Events: onDate}
	}

	layout.Bars, layout.SlotCount = assignBars(dates, multiDay, input.Columns)
	return layout
}

// SortDayEvents orders the events of one date for display: timed events
// before all-day ones, earlier start time first, then case-insensitive
// title, then id. The order is stable across renders regardless of
// insertion order.
func SortDayEvents(events []event.Event) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.IsTimed() != b.IsTimed() {
			return a.IsTimed()
		}
		if a.IsTimed() && a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		aTitle := strings.ToLower(a.Title)
		bTitle := strings.ToLower(b.Title)
		if aTitle != bTitle {
			return aTitle < bTitle
		}
		return a.ID < b.ID
	})
}

// assignBars clamps each multi-day event into the window and assigns
// stacking slots by first-fit greedy over intervals sorted by
// (startIndex, id). Day ranges form proper interval graphs, where
// first-fit over sorted starts uses the minimum number of rows.
func assignBars(dates []civil.Date, events []event.Event, columns int) ([]Bar, int) {
	if len(events) == 0 {
		return nil, 0
	}
	if columns <= 0 {
		columns = len(dates)
	}

	windowStart := dates[0]
	last := len(dates) - 1

	bars := make([]Bar, 0, len(events))
	for _, e := range events {
		start, err := civil.Parse(e.Date)
		if err != nil {
			continue
		}
		end, err := civil.Parse(e.EffectiveEnd())
		if err != nil {
			continue
		}

		startIndex := clamp(windowStart.DaysUntil(start), 0, last)
		endIndex := clamp(windowStart.DaysUntil(end), 0, last)
		span := endIndex - startIndex + 1
		if span <= 0 {
			continue
		}

		bars = append(bars, Bar{
			Event:        e,
			StartIndex:   startIndex,
			EndIndex:     endIndex,
			Span:         span,
			LeftPercent:  float64(startIndex) / float64(columns) * 100,
			WidthPercent: float64(span) / float64(columns) * 100,
		})
	}

	sort.Slice(bars, func(i, j int) bool {
		if bars[i].StartIndex != bars[j].StartIndex {
			return bars[i].StartIndex < bars[j].StartIndex
		}
		return bars[i].Event.ID < bars[j].Event.ID
	})

	var slots [][]Bar
	for i := range bars {
		assigned := -1
		for slot := range slots {
			if !slotConflicts(slots[slot], bars[i]) {
				assigned = slot
				break
			}
		}
		if assigned == -1 {
			slots = append(slots, nil)
			assigned = len(slots) - 1
		}
		bars[i].Slot = assigned
		slots[assigned] = append(slots[assigned], bars[i])
	}

	return bars, len(slots)
}

func slotConflicts(occupied []Bar, candidate Bar) bool {
	for _, b := range occupied {
		if candidate.StartIndex <= b.EndIndex && candidate.EndIndex >= b.StartIndex {
			return true
		}
	}
	return false
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// monthGridColumns matches the fixed 31-column track the year grid
// renders every month on.
const monthGridColumns = 31

// ForMonth lays out one calendar month on the year grid's 31-column track.
func ForMonth(year int, month time.Month, input Input) WindowLayout {
	first := civil.Date{Year: year, Month: month, Day: 1}
	var dates []civil.Date
	for cursor := first; cursor.Month == month; cursor = cursor.AddDays(1) {
		dates = append(dates, cursor)
	}
	input.Columns = monthGridColumns
	return ForWindow(dates, input)
}

// ForWeek lays out one 7-day week.
func ForWeek(week civil.Week, input Input) WindowLayout {
	input.Columns = 7
	return ForWindow(week.Dates, input)
}

// ForYear lays out all twelve months of a year in order.
func ForYear(year int, input Input) []WindowLayout {
	months := make([]WindowLayout, 0, 12)
	for month := time.January; month <= time.December; month++ {
		months = append(months, ForMonth(year, month, input))
	}
	return months
}
