package holiday

import (
	"testing"

	"github.com/kpessa/yearview/internal/civil"
	"github.com/kpessa/yearview/internal/event"
)

func TestStaticTableLookup(t *testing.T) {
	cal := New(2026, nil, DefaultOptions())

	christmas := civil.MustParse("2026-12-25")
	if !cal.IsHoliday(christmas) {
		t.Fatalf("expected Christmas to be a holiday")
	}
	name, ok := cal.Name(christmas)
	if !ok || name != "Christmas" {
		t.Fatalf("Name = %q, %v", name, ok)
	}

	ordinary := civil.MustParse("2026-03-05")
	if cal.IsHoliday(ordinary) {
		t.Fatalf("did not expect %s to be a holiday", ordinary)
	}
}

func TestDisabledSourceIsExcluded(t *testing.T) {
	cal := New(2026, nil, Options{ShowUS: true, ShowIndia: false})

	if cal.IsHoliday(civil.MustParse("2026-01-26")) {
		t.Fatalf("Republic Day should be excluded when the India source is off")
	}
	if !cal.IsHoliday(civil.MustParse("2026-07-04")) {
		t.Fatalf("Independence Day (US) should remain")
	}
}

func TestCustomHolidayParticipates(t *testing.T) {
	custom := []event.CustomHoliday{
		{ID: "h1", UserID: "user-1", Date: "2026-04-09", Note: "Company Day"},
		{ID: "h2", UserID: "user-1", Date: "2025-04-09", Note: "Wrong Year"},
	}
	cal := New(2026, custom, Options{})

	name, ok := cal.Name(civil.MustParse("2026-04-09"))
	if !ok || name != "Company Day" {
		t.Fatalf("Name = %q, %v", name, ok)
	}
	if cal.IsHoliday(civil.MustParse("2025-04-09")) {
		t.Fatalf("custom holiday from another year leaked in")
	}
}

func TestMondayHolidayBridgesPrecedingWeekend(t *testing.T) {
	// MLK Day 2026-01-19 is a Monday.
	cal := New(2026, nil, DefaultOptions())

	for _, day := range []string{"2026-01-17", "2026-01-18"} {
		date := civil.MustParse(day)
		if !cal.IsExtendedWeekend(date) {
			t.Fatalf("expected %s to be an extended weekend", day)
		}
		name, ok := cal.ExtendedWeekendName(date)
		if !ok || name != "Martin Luther King Jr. Day Weekend" {
			t.Fatalf("ExtendedWeekendName(%s) = %q, %v", day, name, ok)
		}
	}

	// The Monday holiday itself is not a bridge day.
	if cal.IsExtendedWeekend(civil.MustParse("2026-01-19")) {
		t.Fatalf("the holiday itself is a weekday, not a bridge day")
	}
}

func TestFridayHolidayBridgesFollowingWeekend(t *testing.T) {
	// India Labor Day 2026-05-01 is a Friday.
	cal := New(2026, nil, DefaultOptions())

	for _, day := range []string{"2026-05-02", "2026-05-03"} {
		if !cal.IsExtendedWeekend(civil.MustParse(day)) {
			t.Fatalf("expected %s to be an extended weekend", day)
		}
	}
	if cal.IsExtendedWeekend(civil.MustParse("2026-05-09")) {
		t.Fatalf("unbridged Saturday reported as extended weekend")
	}
}

func TestOrdinaryWeekendIsNotExtended(t *testing.T) {
	cal := New(2026, nil, DefaultOptions())
	if cal.IsExtendedWeekend(civil.MustParse("2026-03-07")) {
		t.Fatalf("plain Saturday reported as extended weekend")
	}
}

func TestFirstSourceWinsNaming(t *testing.T) {
	// Christmas appears in both national tables; the US entry is first.
	cal := New(2026, []event.CustomHoliday{
		{ID: "h1", UserID: "user-1", Date: "2026-12-25", Note: "Family Day"},
	}, DefaultOptions())

	name, ok := cal.Name(civil.MustParse("2026-12-25"))
	if !ok || name != "Christmas" {
		t.Fatalf("Name = %q, want table entry to win over custom", name)
	}
}
