// internal/domain/notification/repository.go
package notification

import (
	"context"
	"time"
)

// Repository is the notification ledger.
type Repository interface {
	WasNotified(ctx context.Context, classDate, classTime, email string) (bool, error)
	// RecordNotification inserts a record unless one already exists for the key.
	RecordNotification(ctx context.Context, classDate, classTime, classLevel, email string) error
	// Invalidate deletes every record for the slot key, whatever the recipient.
	Invalidate(ctx context.Context, classDate, classTime string) (int64, error)
	// EvictPast deletes records whose slot instant is strictly before now.
	EvictPast(ctx context.Context, now time.Time) (int64, error)
	ListByRecipient(ctx context.Context, email string) ([]*Record, error)
}
