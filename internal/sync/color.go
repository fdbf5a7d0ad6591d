package sync

// CategoryColors is the fixed palette calendar categories draw from.
var CategoryColors = []string{
	"#10b981", // green
	"#059669", // emerald
	"#14b8a6", // teal
	"#06b6d4", // cyan
	"#0ea5e9", // sky
	"#3b82f6", // blue
	"#6366f1", // indigo
	"#8b5cf6", // violet
	"#a855f7", // purple
	"#d946ef", // fuchsia
	"#ec4899", // pink
	"#f43f5e", // rose
	"#ef4444", // red
	"#f97316", // orange
	"#f59e0b", // amber
	"#eab308", // yellow
	"#84cc16", // lime
	"#64748b", // slate
}

// CalendarColor deterministically maps a calendar id into the palette so
// the same calendar always provisions the same color. An empty id falls
// back to the supplied index.
func CalendarColor(calendarID string, fallbackIndex int) string {
	if calendarID == "" {
		index := abs(fallbackIndex) % len(CategoryColors)
		return CategoryColors[index]
	}

	var hash int32
	for _, ch := range []byte(calendarID) {
		hash = hash*31 + int32(ch)
	}
	return CategoryColors[abs(int(hash))%len(CategoryColors)]
}

func abs(value int) int {
	if value < 0 {
		return -value
	}
	return value
}
