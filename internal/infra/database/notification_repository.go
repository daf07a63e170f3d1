package database

import (
	"context"
	"fmt"
	"time"

	"class_openings_notifier/internal/domain/notification"
	"class_openings_notifier/internal/domain/slot"
)

type SQLNotificationRepository struct {
	db *DB
}

func NewSQLNotificationRepository(db *DB) *SQLNotificationRepository {
	return &SQLNotificationRepository{db: db}
}

func (r *SQLNotificationRepository) WasNotified(ctx context.Context, classDate, classTime, email string) (bool, error) {
	query := r.db.rebind(`SELECT 1 FROM sent_notifications
               WHERE class_date = ? AND class_time = ? AND recipient_email = ?
               LIMIT 1`)
	rows, err := r.db.QueryContext(ctx, query, classDate, classTime, email)
	if err != nil {
		return false, fmt.Errorf("error checking notification: %w", err)
	}
	defer rows.Close()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("error reading notification check: %w", err)
	}
	return found, nil
}

// RecordNotification is a conditional insert: the existence check and the
// insert run as one statement.
func (r *SQLNotificationRepository) RecordNotification(ctx context.Context, classDate, classTime, classLevel, email string) error {
	query := r.db.rebind(`INSERT INTO sent_notifications (class_date, class_time, class_level, recipient_email)
               SELECT CAST(? AS TEXT), CAST(? AS TEXT), CAST(? AS TEXT), CAST(? AS TEXT)
               WHERE NOT EXISTS (
                   SELECT 1 FROM sent_notifications
                   WHERE class_date = ? AND class_time = ? AND recipient_email = ?
               )`)
	_, err := r.db.ExecContext(ctx, query,
		classDate, classTime, classLevel, email,
		classDate, classTime, email,
	)
	if err != nil {
		return fmt.Errorf("error recording notification: %w", err)
	}
	return nil
}

func (r *SQLNotificationRepository) Invalidate(ctx context.Context, classDate, classTime string) (int64, error) {
	query := r.db.rebind(`DELETE FROM sent_notifications WHERE class_date = ? AND class_time = ?`)
	res, err := r.db.ExecContext(ctx, query, classDate, classTime)
	if err != nil {
		return 0, fmt.Errorf("error invalidating notifications for %s %s: %w", classDate, classTime, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading invalidated rows: %w", err)
	}
	return n, nil
}

// EvictPast compares the wall clock of now with the stored date and time,
// so now must already be in the studio's location.
func (r *SQLNotificationRepository) EvictPast(ctx context.Context, now time.Time) (int64, error) {
	query := r.db.rebind(`DELETE FROM sent_notifications WHERE class_date || ' ' || class_time < ?`)
	res, err := r.db.ExecContext(ctx, query, now.Format(slot.DateTimeLayout))
	if err != nil {
		return 0, fmt.Errorf("error evicting past notifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading evicted rows: %w", err)
	}
	return n, nil
}

func (r *SQLNotificationRepository) ListByRecipient(ctx context.Context, email string) ([]*notification.Record, error) {
	query := r.db.rebind(`SELECT id, class_date, class_time, class_level, recipient_email, sent_at
               FROM sent_notifications
               WHERE recipient_email = ?
               ORDER BY class_date, class_time`)
	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	records := make([]*notification.Record, 0)
	for rows.Next() {
		rec := &notification.Record{}
		if err := rows.Scan(&rec.ID, &rec.ClassDate, &rec.ClassTime, &rec.ClassLevel, &rec.RecipientEmail, &rec.SentAt); err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return records, nil
}
