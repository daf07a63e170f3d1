package mail

import (
	"context"

	"class_openings_notifier/internal/domain/slot"
)

// Sender delivers one openings email to one recipient.
// This keeps the dispatch logic independent of the mail transport.
type Sender interface {
	Send(ctx context.Context, slots []slot.ClassSlot, recipientEmail string) (messageID string, err error)
}
