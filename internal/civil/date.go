package civil

import (
	"errors"
	"fmt"
	"time"
)

// Date is a calendar date with no attached time zone. Event dates are
// stored as zero-padded YYYY-MM-DD strings representing civil dates;
// arithmetic on Date never routes through a UTC instant, so a date can
// never shift by a day at a timezone boundary.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ErrInvalidDate indicates that a date string is not a valid YYYY-MM-DD value.
var ErrInvalidDate = errors.New("civil: invalid date")

// MustParse parses value and panics on failure. Intended for constants and tests.
func MustParse(value string) Date {
	parsed, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return parsed
}

// Parse converts a YYYY-MM-DD string into a Date.
func Parse(value string) (Date, error) {
	if len(value) != 10 || value[4] != '-' || value[7] != '-' {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	var year, month, day int
	if _, err := fmt.Sscanf(value, "%4d-%2d-%2d", &year, &month, &day); err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	candidate := Date{Year: year, Month: time.Month(month), Day: day}
	if candidate.normalized() != candidate {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return candidate, nil
}

// FromTime extracts the civil date of t in t's own location.
func FromTime(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// String renders the date as zero-padded YYYY-MM-DD. The format sorts
// lexicographically in calendar order, which range comparisons rely on.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidDate, data)
	}
	parsed, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// normalized rolls out-of-range month/day values into a canonical date.
func (d Date) normalized() Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return FromTime(t)
}

// Time returns midnight on d in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n days after d (negative n moves backwards).
func (d Date) AddDays(n int) Date {
	return Date{Year: d.Year, Month: d.Month, Day: d.Day + n}.normalized()
}

// DaysUntil returns the number of days from d to other (negative when other precedes d).
func (d Date) DaysUntil(other Date) int {
	from := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	to := time.Date(other.Year, other.Month, other.Day, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from) / (24 * time.Hour))
}

// Weekday returns the day of the week (Sunday = 0).
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Before reports whether d precedes other.
func (d Date) Before(other Date) bool {
	return d.compare(other) < 0
}

// After reports whether d follows other.
func (d Date) After(other Date) bool {
	return d.compare(other) > 0
}

func (d Date) compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return d.Year - other.Year
	case d.Month != other.Month:
		return int(d.Month) - int(other.Month)
	default:
		return d.Day - other.Day
	}
}

// Min returns the earlier of two dates.
func Min(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the later of two dates.
func Max(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}

// IsLeapYear implements the Gregorian leap-year rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// AllDatesInYear enumerates every date of the year in order.
func AllDatesInYear(year int) []Date {
	count := DaysInYear(year)
	dates := make([]Date, 0, count)
	cursor := Date{Year: year, Month: time.January, Day: 1}
	for i := 0; i < count; i++ {
		dates = append(dates, cursor)
		cursor = cursor.AddDays(1)
	}
	return dates
}

// Today returns the current civil date according to clock, or time.Now when nil.
func Today(clock func() time.Time) Date {
	if clock == nil {
		clock = time.Now
	}
	return FromTime(clock())
}

// QuarterOf maps a date to its calendar quarter (1..4).
func QuarterOf(d Date) int {
	return (int(d.Month)-1)/3 + 1
}

// SuitForQuarter maps a quarter to its playing-card suit symbol.
func SuitForQuarter(quarter int) string {
	switch quarter {
	case 1:
		return "♠"
	case 2:
		return "♥"
	case 3:
		return "♣"
	case 4:
		return "♦"
	default:
		return "♠"
	}
}

// SuitIsRed reports whether the quarter's suit renders in red.
func SuitIsRed(quarter int) bool {
	return quarter == 2 || quarter == 4
}

var shortMonthNames = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// MonthName returns the short month name for a 1-based month number.
func MonthName(month time.Month) string {
	if month < time.January || month > time.December {
		return ""
	}
	return shortMonthNames[month-1]
}
