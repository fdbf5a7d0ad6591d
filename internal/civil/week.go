package civil

import "time"

// Week is a 7-day window aligned to a configurable week-start day.
type Week struct {
	Start Date   `json:"start"`
	End   Date   `json:"end"`
	Dates []Date `json:"dates"`
}

// WeekStart returns the first day of the 7-day window containing d,
// where weekStartDay follows time.Weekday numbering (0 = Sunday).
func WeekStart(d Date, weekStartDay time.Weekday) Date {
	diff := (int(d.Weekday()) - int(weekStartDay) + 7) % 7
	return d.AddDays(-diff)
}

// WeekOf returns the 7-day window containing d.
func WeekOf(d Date, weekStartDay time.Weekday) Week {
	start := WeekStart(d, weekStartDay)
	dates := make([]Date, 7)
	for i := range dates {
		dates[i] = start.AddDays(i)
	}
	return Week{Start: dates[0], End: dates[6], Dates: dates}
}

// WeeksInYear tiles the whole year into consecutive weeks. The first and
// last week may spill into the adjacent year; every date of the year is
// covered exactly once. Depending on alignment the result holds 52 or 53
// weeks.
func WeeksInYear(year int, weekStartDay time.Weekday) []Week {
	yearStart := Date{Year: year, Month: time.January, Day: 1}
	yearEnd := Date{Year: year, Month: time.December, Day: 31}

	cursor := WeekStart(yearStart, weekStartDay)
	lastWeekEnd := WeekStart(yearEnd, weekStartDay).AddDays(6)

	var weeks []Week
	for !cursor.After(lastWeekEnd) {
		dates := make([]Date, 7)
		for i := range dates {
			dates[i] = cursor
			cursor = cursor.AddDays(1)
		}
		weeks = append(weeks, Week{Start: dates[0], End: dates[6], Dates: dates})
	}
	return weeks
}

// WeekIndex returns the 1-based index of the week containing d within d's year.
func WeekIndex(d Date, weekStartDay time.Weekday) int {
	yearStart := Date{Year: d.Year, Month: time.January, Day: 1}
	firstWeekStart := WeekStart(yearStart, weekStartDay)
	return firstWeekStart.DaysUntil(WeekStart(d, weekStartDay))/7 + 1
}
