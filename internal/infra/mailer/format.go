package mailer

import (
	"fmt"
	"strings"

	"class_openings_notifier/internal/domain/slot"
)

// FormatBody renders one fixed-width line per slot:
// open spots | level | date | 12-hour time.
func FormatBody(slots []slot.ClassSlot) string {
	var b strings.Builder
	for _, s := range slots {
		fmt.Fprintf(&b, "%-14s | %-10s | %-10s | %-15s\n", s.OpenSpots, s.Level, s.Date, s.Time12h())
	}
	return b.String()
}
