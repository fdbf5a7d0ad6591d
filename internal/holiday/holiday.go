// Package holiday answers holiday and extended-weekend questions for a
// single year, combining static national tables with user-defined custom
// holidays.
package holiday

import (
	"time"

	"github.com/kpessa/yearview/internal/civil"
	"github.com/kpessa/yearview/internal/event"
)

// Options selects which national holiday sources participate in lookups.
type Options struct {
	ShowUS    bool
	ShowIndia bool
}

// DefaultOptions enables every national source.
func DefaultOptions() Options {
	return Options{ShowUS: true, ShowIndia: true}
}

// Entry is a single named holiday on a fixed date.
type Entry struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// Calendar is a precomputed holiday view for one year. Lookups are by
// formatted date string; the first source to claim a date wins naming,
// in the order US table, India table, custom holidays.
type Calendar struct {
	names  map[string]string
	bridge map[string]string
}

// New builds a holiday calendar for year from the enabled static tables
// plus the user's custom holidays dated within that year.
func New(year int, custom []event.CustomHoliday, opts Options) *Calendar {
	entries := ForYear(year, custom, opts)

	cal := &Calendar{
		names:  make(map[string]string, len(entries)),
		bridge: make(map[string]string),
	}

	for _, entry := range entries {
		if _, claimed := cal.names[entry.Date]; !claimed {
			cal.names[entry.Date] = entry.Name
		}

		date, err := civil.Parse(entry.Date)
		if err != nil {
			continue
		}
		// A Friday holiday extends into the following weekend, a Monday
		// holiday into the preceding one. First match wins for naming.
		switch date.Weekday() {
		case time.Friday:
			cal.markBridge(date.AddDays(1), entry.Name)
			cal.markBridge(date.AddDays(2), entry.Name)
		case time.Monday:
			cal.markBridge(date.AddDays(-2), entry.Name)
			cal.markBridge(date.AddDays(-1), entry.Name)
		}
	}

	return cal
}

func (c *Calendar) markBridge(date civil.Date, name string) {
	key := date.String()
	if _, claimed := c.bridge[key]; !claimed {
		c.bridge[key] = name
	}
}

// IsHoliday reports whether date lands on any enabled holiday.
func (c *Calendar) IsHoliday(date civil.Date) bool {
	_, ok := c.names[date.String()]
	return ok
}

// Name returns the display name of the holiday on date, if any.
func (c *Calendar) Name(date civil.Date) (string, bool) {
	name, ok := c.names[date.String()]
	return name, ok
}

// IsExtendedWeekend reports whether date is a Saturday or Sunday bridged
// by an adjacent Friday or Monday holiday.
func (c *Calendar) IsExtendedWeekend(date civil.Date) bool {
	if wd := date.Weekday(); wd != time.Saturday && wd != time.Sunday {
		return false
	}
	_, ok := c.bridge[date.String()]
	return ok
}

// ExtendedWeekendName returns the name of the holiday that bridges date
// into a long weekend, suffixed for display.
func (c *Calendar) ExtendedWeekendName(date civil.Date) (string, bool) {
	if wd := date.Weekday(); wd != time.Saturday && wd != time.Sunday {
		return "", false
	}
	name, ok := c.bridge[date.String()]
	if !ok {
		return "", false
	}
	return name + " Weekend", true
}

// ForYear lists the enabled holidays for a year: static tables first,
// then the user's custom holidays dated within the year.
func ForYear(year int, custom []event.CustomHoliday, opts Options) []Entry {
	var entries []Entry
	if opts.ShowUS {
		entries = append(entries, usHolidays[year]...)
	}
	if opts.ShowIndia {
		entries = append(entries, indiaHolidays[year]...)
	}
	for _, h := range custom {
		date, err := civil.Parse(h.Date)
		if err != nil || date.Year != year {
			continue
		}
		entries = append(entries, Entry{Name: h.Note, Date: h.Date})
	}
	return entries
}
