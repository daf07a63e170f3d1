package app

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"class_openings_notifier/internal/domain/notification"
	"class_openings_notifier/internal/domain/recipient"
	"class_openings_notifier/internal/domain/slot"
	idb "class_openings_notifier/internal/infra/database"
	"class_openings_notifier/internal/infra/scraper"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type ledgerKey struct{ date, time, email string }

// memLedger is an in-memory notification.Repository.
type memLedger struct {
	records   map[ledgerKey]string
	recordErr error
	evictedAt []time.Time
}

func newMemLedger() *memLedger {
	return &memLedger{records: map[ledgerKey]string{}}
}

func (m *memLedger) WasNotified(_ context.Context, date, tm, email string) (bool, error) {
	_, ok := m.records[ledgerKey{date, tm, email}]
	return ok, nil
}

func (m *memLedger) RecordNotification(_ context.Context, date, tm, level, email string) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	k := ledgerKey{date, tm, email}
	if _, ok := m.records[k]; !ok {
		m.records[k] = level
	}
	return nil
}

func (m *memLedger) Invalidate(_ context.Context, date, tm string) (int64, error) {
	var n int64
	for k := range m.records {
		if k.date == date && k.time == tm {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

func (m *memLedger) EvictPast(_ context.Context, now time.Time) (int64, error) {
	m.evictedAt = append(m.evictedAt, now)
	cutoff := now.Format(slot.DateTimeLayout)
	var n int64
	for k := range m.records {
		if k.date+" "+k.time < cutoff {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

func (m *memLedger) ListByRecipient(_ context.Context, email string) ([]*notification.Record, error) {
	var out []*notification.Record
	for k, level := range m.records {
		if k.email == email {
			out = append(out, &notification.Record{ClassDate: k.date, ClassTime: k.time, ClassLevel: level, RecipientEmail: email})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ClassDate+out[i].ClassTime < out[j].ClassDate+out[j].ClassTime
	})
	return out, nil
}

// memRoster is an in-memory recipient.Repository.
type memRoster struct {
	emails  []string
	listErr error
}

func (r *memRoster) Add(_ context.Context, email string) error {
	for _, e := range r.emails {
		if e == email {
			return idb.ErrDuplicateRecipient
		}
	}
	r.emails = append(r.emails, email)
	return nil
}

func (r *memRoster) Remove(_ context.Context, email string) error {
	for i, e := range r.emails {
		if e == email {
			r.emails = append(r.emails[:i], r.emails[i+1:]...)
			return nil
		}
	}
	return idb.ErrRecipientNotFound
}

func (r *memRoster) Exists(_ context.Context, email string) (bool, error) {
	for _, e := range r.emails {
		if e == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRoster) List(_ context.Context) ([]*recipient.Recipient, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*recipient.Recipient, 0, len(r.emails))
	for i, e := range r.emails {
		out = append(out, &recipient.Recipient{ID: int64(i + 1), Email: e})
	}
	return out, nil
}

func (r *memRoster) ListEmails(ctx context.Context) ([]string, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]string(nil), r.emails...), nil
}

type sentMail struct {
	to    string
	slots []slot.ClassSlot
}

// fakeSender records every send and fails for addresses in failFor.
type fakeSender struct {
	sent    []sentMail
	failFor map[string]bool
}

func (f *fakeSender) Send(_ context.Context, slots []slot.ClassSlot, email string) (string, error) {
	if f.failFor[email] {
		return "", errors.New("connection refused")
	}
	f.sent = append(f.sent, sentMail{to: email, slots: slots})
	return "<id-" + email + ">", nil
}

type fakeWalker struct {
	result *scraper.WalkResult
	err    error
	calls  int
}

func (w *fakeWalker) Walk(context.Context) (*scraper.WalkResult, error) {
	w.calls++
	return w.result, w.err
}
