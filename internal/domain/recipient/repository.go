package recipient

import (
	"context"
)

// Repository defines the operations for the recipient roster.
type Repository interface {
	Add(ctx context.Context, email string) error
	Remove(ctx context.Context, email string) error
	Exists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*Recipient, error)
	ListEmails(ctx context.Context) ([]string, error)
}
