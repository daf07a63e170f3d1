// internal/domain/notification/record.go
package notification

import "time"

// Record is the persisted fact that a recipient was emailed about a class slot.
// Corresponds to the 'sent_notifications' table.
type Record struct {
	ID             int64
	ClassDate      string // identity
	ClassTime      string // identity
	RecipientEmail string // identity
	ClassLevel     string
	SentAt         time.Time
}
