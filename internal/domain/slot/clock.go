package slot

import (
	"fmt"
	"strings"
	"time"
)

const clock12Layout = "3:04PM"

// To24Hour converts displayed start times such as "9:00 AM", "9:00-9:50AM" or
// "11:30-12:20PM" into "HH:MM". Only the start of a range is used; when the
// start carries no AM/PM it is taken from the end of the range.
func To24Hour(raw string) (string, error) {
	text := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if text == "" {
		return "", fmt.Errorf("empty time text")
	}

	start, end, isRange := strings.Cut(text, "-")
	if !hasMeridiem(start) {
		if !isRange || !hasMeridiem(end) {
			return "", fmt.Errorf("no AM/PM in time text %q", raw)
		}
		meridiem := end[len(end)-2:]
		endTime, err := time.Parse(clock12Layout, end)
		if err != nil {
			return "", fmt.Errorf("invalid end time in %q: %w", raw, err)
		}
		startTime, err := time.Parse(clock12Layout, start+meridiem)
		if err != nil {
			return "", fmt.Errorf("invalid start time in %q: %w", raw, err)
		}
		// 11:30-12:20PM starts in the morning.
		if startTime.Hour()%12 > endTime.Hour()%12 {
			startTime, err = time.Parse(clock12Layout, start+flipMeridiem(meridiem))
			if err != nil {
				return "", fmt.Errorf("invalid start time in %q: %w", raw, err)
			}
		}
		return startTime.Format(TimeLayout), nil
	}

	startTime, err := time.Parse(clock12Layout, start)
	if err != nil {
		return "", fmt.Errorf("invalid start time in %q: %w", raw, err)
	}
	return startTime.Format(TimeLayout), nil
}

// To12Hour renders "HH:MM" as "hh:mm AM".
func To12Hour(hhmm string) (string, error) {
	t, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return "", fmt.Errorf("invalid 24-hour time %q: %w", hhmm, err)
	}
	return t.Format("03:04 PM"), nil
}

func hasMeridiem(s string) bool {
	return strings.HasSuffix(s, "AM") || strings.HasSuffix(s, "PM")
}

func flipMeridiem(m string) string {
	if m == "AM" {
		return "PM"
	}
	return "AM"
}

// Time12h is the slot's start time as "hh:mm AM", or the raw value if it is
// not a valid 24-hour time.
func (s ClassSlot) Time12h() string {
	t, err := To12Hour(s.Time)
	if err != nil {
		return s.Time
	}
	return t
}
