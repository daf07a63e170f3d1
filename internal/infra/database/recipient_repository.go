package database

import (
	"context"
	"fmt"

	"class_openings_notifier/internal/domain/recipient"
)

type SQLRecipientRepository struct {
	db *DB
}

func NewSQLRecipientRepository(db *DB) *SQLRecipientRepository {
	return &SQLRecipientRepository{db: db}
}

func (r *SQLRecipientRepository) Add(ctx context.Context, email string) error {
	query := r.db.rebind(`INSERT INTO recipients (email) VALUES (?) ON CONFLICT (email) DO NOTHING`)
	res, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("error adding recipient: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading inserted recipient: %w", err)
	}
	if n == 0 {
		return ErrDuplicateRecipient
	}
	return nil
}

func (r *SQLRecipientRepository) Remove(ctx context.Context, email string) error {
	query := r.db.rebind(`DELETE FROM recipients WHERE email = ?`)
	res, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("error removing recipient: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading removed recipient: %w", err)
	}
	if n == 0 {
		return ErrRecipientNotFound
	}
	return nil
}

func (r *SQLRecipientRepository) Exists(ctx context.Context, email string) (bool, error) {
	query := r.db.rebind(`SELECT COUNT(*) FROM recipients WHERE email = ?`)
	var count int
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&count); err != nil {
		return false, fmt.Errorf("error checking recipient: %w", err)
	}
	return count > 0, nil
}

func (r *SQLRecipientRepository) List(ctx context.Context) ([]*recipient.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, email FROM recipients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing recipients: %w", err)
	}
	defer rows.Close()

	recipients := make([]*recipient.Recipient, 0)
	for rows.Next() {
		rc := &recipient.Recipient{}
		if err := rows.Scan(&rc.ID, &rc.Email); err != nil {
			return nil, fmt.Errorf("error scanning recipient: %w", err)
		}
		recipients = append(recipients, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipients: %w", err)
	}
	return recipients, nil
}

func (r *SQLRecipientRepository) ListEmails(ctx context.Context) ([]string, error) {
	recipients, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	emails := make([]string, len(recipients))
	for i, rc := range recipients {
		emails[i] = rc.Email
	}
	return emails, nil
}
