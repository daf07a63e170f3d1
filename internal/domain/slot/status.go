package slot

import "strings"

// Status is the availability class of a schedule cell.
type Status string

const (
	StatusFullOrWaitlisted Status = "FULL_OR_WAITLISTED"
	StatusEmptyOrUnknown   Status = "EMPTY_OR_UNKNOWN"
	StatusOpen             Status = "OPEN"
)

// Classify maps raw status text to exactly one Status.
func Classify(text string) Status {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "waitlist"), strings.Contains(lower, "full"):
		return StatusFullOrWaitlisted
	case strings.TrimSpace(text) == "":
		return StatusEmptyOrUnknown
	default:
		return StatusOpen
	}
}
