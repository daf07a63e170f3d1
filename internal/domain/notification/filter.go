package notification

import (
	"context"
	"fmt"

	"class_openings_notifier/internal/domain/slot"
)

// FilterUnnotified returns the slots the recipient has not been told about yet,
// in their original order.
func FilterUnnotified(ctx context.Context, repo Repository, slots []slot.ClassSlot, email string) ([]slot.ClassSlot, error) {
	pending := make([]slot.ClassSlot, 0, len(slots))
	for _, s := range slots {
		notified, err := repo.WasNotified(ctx, s.Date, s.Time, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check notification for %s %s: %w", s.Date, s.Time, err)
		}
		if !notified {
			pending = append(pending, s)
		}
	}
	return pending, nil
}
