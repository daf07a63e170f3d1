package slot

import (
	"fmt"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = DateLayout + " " + TimeLayout
)

// ClassSlot is one bookable schedule cell observed at scrape time.
type ClassSlot struct {
	Date      string // YYYY-MM-DD
	Time      string // HH:MM, 24-hour
	Level     string // e.g. "Flow 1.5"
	OpenSpots string // raw availability text
}

// Instant combines Date and Time in loc.
func (s ClassSlot) Instant(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s.Date+" "+s.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot instant %q %q: %w", s.Date, s.Time, err)
	}
	return t, nil
}

// Invalidation asks the ledger to forget every notification for a slot that
// was seen full, waitlisted or without a readable status.
type Invalidation struct {
	Date    string
	RawTime string // time text exactly as captured from the page
}
