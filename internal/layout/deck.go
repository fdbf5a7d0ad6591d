package layout

import (
	"time"

	"github.com/kpessa/yearview/internal/civil"
)

const (
	deckWeeks       = 52
	weeksPerQuarter = 13
	quartersPerYear = 4
)

// DeckWeek is one row of the playing-card week grid: a 7-day window, its
// layout, and any spillover dates merged in from a 53rd week.
type DeckWeek struct {
	Index    int          `json:"index"`
	Week     civil.Week   `json:"week"`
	Overflow []civil.Date `json:"overflow,omitempty"`
	Layout   WindowLayout `json:"layout"`
}

// DeckQuarter groups 13 deck weeks under a card suit.
type DeckQuarter struct {
	Quarter int        `json:"quarter"`
	Suit    string     `json:"suit"`
	Red     bool       `json:"red"`
	Weeks   []DeckWeek `json:"weeks"`
}

// DeckForYear projects a year onto exactly 52 card rows split into four
// 13-week suits. Years that tile into 53 weeks merge the overflow dates
// into row 52; a short tiling pads with empty rows.
func DeckForYear(year int, weekStartDay time.Weekday, input Input) []DeckQuarter {
	weeks := civil.WeeksInYear(year, weekStartDay)

	rows := make([]DeckWeek, 0, deckWeeks)
	for i := 0; i < deckWeeks && i < len(weeks); i++ {
		rows = append(rows, DeckWeek{
			Index:  i + 1,
			Week:   weeks[i],
			Layout: ForWeek(weeks[i], input),
		})
	}
	for len(rows) < deckWeeks {
		rows = append(rows, DeckWeek{Index: len(rows) + 1})
	}
	if len(weeks) > deckWeeks {
		var overflow []civil.Date
		for _, week := range weeks[deckWeeks:] {
			overflow = append(overflow, week.Dates...)
		}
		rows[deckWeeks-1].Overflow = overflow
	}

	quarters := make([]DeckQuarter, 0, quartersPerYear)
	for q := 1; q <= quartersPerYear; q++ {
		start := (q - 1) * weeksPerQuarter
		quarters = append(quarters, DeckQuarter{
			Quarter: q,
			Suit:    civil.SuitForQuarter(q),
			Red:     civil.SuitIsRed(q),
			Weeks:   rows[start : start+weeksPerQuarter],
		})
	}
	return quarters
}

// MaxStackHeight returns the tallest bar stack across the quarter's
// weeks, for reserving uniform row height.
func (q DeckQuarter) MaxStackHeight() int {
	max := 0
	for _, week := range q.Weeks {
		if week.Layout.SlotCount > max {
			max = week.Layout.SlotCount
		}
	}
	return max
}
