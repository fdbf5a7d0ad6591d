package holiday

// Static national holiday tables. Dates are fixed per year rather than
// computed from floating rules; extend the maps as new years are needed.

var usHolidays = map[int][]Entry{
	2025: {
		{Name: "New Year's Day", Date: "2025-01-01"},
		{Name: "Martin Luther King Jr. Day", Date: "2025-01-20"},
		{Name: "Presidents' Day", Date: "2025-02-17"},
		{Name: "Memorial Day", Date: "2025-05-26"},
		{Name: "Independence Day", Date: "2025-07-04"},
		{Name: "Labor Day", Date: "2025-09-01"},
		{Name: "Thanksgiving", Date: "2025-11-27"},
		{Name: "Christmas", Date: "2025-12-25"},
	},
	2026: {
		{Name: "New Year's Day", Date: "2026-01-01"},
		{Name: "Martin Luther King Jr. Day", Date: "2026-01-19"},
		{Name: "Presidents' Day", Date: "2026-02-16"},
		{Name: "Memorial Day", Date: "2026-05-25"},
		{Name: "Independence Day", Date: "2026-07-04"},
		{Name: "Labor Day", Date: "2026-09-07"},
		{Name: "Thanksgiving", Date: "2026-11-26"},
		{Name: "Christmas", Date: "2026-12-25"},
	},
}

var indiaHolidays = map[int][]Entry{
	2025: {
		// Shown on the 2025 grid even though it falls in the spillover week.
		{Name: "New Year's Eve", Date: "2024-12-31"},
		{Name: "Pongal / Makar Sankranti", Date: "2025-01-14"},
		{Name: "Republic Day", Date: "2025-01-26"},
		{Name: "Holi", Date: "2025-03-14"},
		{Name: "Ramzan / Eid ul-Fitr", Date: "2025-03-31"},
		{Name: "Labor Day", Date: "2025-05-01"},
		{Name: "Bakrid / Eid ul-Adha", Date: "2025-06-07"},
		{Name: "Independence Day", Date: "2025-08-15"},
		{Name: "Gandhi Jayanti", Date: "2025-10-02"},
		{Name: "Dussehra", Date: "2025-10-12"},
		{Name: "Diwali", Date: "2025-10-20"},
		{Name: "Christmas", Date: "2025-12-25"},
		{Name: "New Year's Eve", Date: "2025-12-31"},
	},
	2026: {
		{Name: "Pongal / Makar Sankranti", Date: "2026-01-14"},
		{Name: "Republic Day", Date: "2026-01-26"},
		{Name: "Holi", Date: "2026-03-03"},
		{Name: "Ramzan / Eid ul-Fitr", Date: "2026-03-20"},
		{Name: "Labor Day", Date: "2026-05-01"},
		{Name: "Bakrid / Eid ul-Adha", Date: "2026-05-27"},
		{Name: "Independence Day", Date: "2026-08-15"},
		{Name: "Gandhi Jayanti", Date: "2026-10-02"},
		{Name: "Dussehra", Date: "2026-10-01"},
		{Name: "Diwali", Date: "2026-11-08"},
		{Name: "Christmas", Date: "2026-12-25"},
		{Name: "New Year's Eve", Date: "2026-12-31"},
	},
}
