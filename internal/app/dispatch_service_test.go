package app

import (
	"context"
	"errors"
	"testing"

	"class_openings_notifier/internal/domain/slot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	slotA = slot.ClassSlot{Date: "2030-06-10", Time: "09:00", Level: "Flow 1.5", OpenSpots: "2 spots"}
	slotB = slot.ClassSlot{Date: "2030-06-10", Time: "17:30", Level: "Flow 1", OpenSpots: "1 spot"}
	slotC = slot.ClassSlot{Date: "2030-06-11", Time: "07:15", Level: "Flow 1", OpenSpots: "5 spots"}
)

func TestDispatch_SendsAndRecords(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	roster := &memRoster{emails: []string{"a@example.com", "b@example.com"}}
	sender := &fakeSender{}
	svc := NewDispatchServiceImpl(ledger, roster, sender, testLogger())

	deliveries, err := svc.Dispatch(ctx, []slot.ClassSlot{slotA, slotB})
	require.NoError(t, err)
	require.Len(t, deliveries, 2)
	for _, d := range deliveries {
		assert.Equal(t, DeliverySent, d.Status)
		assert.Equal(t, 2, d.Slots)
		assert.Equal(t, "<id-"+d.Recipient+">", d.MessageID)
	}
	require.Len(t, sender.sent, 2)
	assert.Equal(t, []slot.ClassSlot{slotA, slotB}, sender.sent[0].slots)

	for _, email := range roster.emails {
		for _, s := range []slot.ClassSlot{slotA, slotB} {
			ok, err := ledger.WasNotified(ctx, s.Date, s.Time, email)
			require.NoError(t, err)
			assert.True(t, ok)
		}
	}
}

func TestDispatch_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	roster := &memRoster{emails: []string{"a@example.com"}}
	sender := &fakeSender{}
	svc := NewDispatchServiceImpl(ledger, roster, sender, testLogger())

	_, err := svc.Dispatch(ctx, []slot.ClassSlot{slotA, slotB})
	require.NoError(t, err)

	deliveries, err := svc.Dispatch(ctx, []slot.ClassSlot{slotA, slotB})
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, DeliveryAlreadyNotified, deliveries[0].Status)
	assert.Len(t, sender.sent, 1)
	assert.Len(t, ledger.records, 2)
}

func TestDispatch_OnlyNewSlotsPreservingOrder(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	require.NoError(t, ledger.RecordNotification(ctx, slotB.Date, slotB.Time, slotB.Level, "a@example.com"))
	roster := &memRoster{emails: []string{"a@example.com"}}
	sender := &fakeSender{}
	svc := NewDispatchServiceImpl(ledger, roster, sender, testLogger())

	deliveries, err := svc.Dispatch(ctx, []slot.ClassSlot{slotC, slotB, slotA})
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, 2, deliveries[0].Slots)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []slot.ClassSlot{slotC, slotA}, sender.sent[0].slots)
}

// Scenario: the only open slot was already sent to the only recipient.
func TestDispatch_AlreadyNotified(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	require.NoError(t, ledger.RecordNotification(ctx, slotA.Date, slotA.Time, slotA.Level, "a@example.com"))
	sender := &fakeSender{}
	svc := NewDispatchServiceImpl(ledger, &memRoster{emails: []string{"a@example.com"}}, sender, testLogger())

	deliveries, err := svc.Dispatch(ctx, []slot.ClassSlot{slotA})
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, DeliveryAlreadyNotified, deliveries[0].Status)
	assert.Empty(t, sender.sent)
}

func TestDispatch_FailureDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	roster := &memRoster{emails: []string{"a@example.com", "broken@example.com", "c@example.com"}}
	sender := &fakeSender{failFor: map[string]bool{"broken@example.com": true}}
	svc := NewDispatchServiceImpl(ledger, roster, sender, testLogger())

	deliveries, err := svc.Dispatch(ctx, []slot.ClassSlot{slotA})
	require.NoError(t, err)
	require.Len(t, deliveries, 3)

	byRecipient := map[string]Delivery{}
	for _, d := range deliveries {
		byRecipient[d.Recipient] = d
	}
	assert.Equal(t, DeliverySent, byRecipient["a@example.com"].Status)
	assert.Equal(t, DeliverySent, byRecipient["c@example.com"].Status)
	failed := byRecipient["broken@example.com"]
	assert.Equal(t, DeliveryFailed, failed.Status)
	assert.EqualError(t, failed.Err, "connection refused")

	notified, err := ledger.WasNotified(ctx, slotA.Date, slotA.Time, "broken@example.com")
	require.NoError(t, err)
	assert.False(t, notified)
}

func TestDispatch_RecordFailureKeepsSentStatus(t *testing.T) {
	ledger := newMemLedger()
	ledger.recordErr = errors.New("disk full")
	svc := NewDispatchServiceImpl(ledger, &memRoster{emails: []string{"a@example.com"}}, &fakeSender{}, testLogger())

	deliveries, err := svc.Dispatch(context.Background(), []slot.ClassSlot{slotA})
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, DeliverySent, deliveries[0].Status)
}

func TestDispatch_RosterError(t *testing.T) {
	roster := &memRoster{listErr: errors.New("db closed")}
	svc := NewDispatchServiceImpl(newMemLedger(), roster, &fakeSender{}, testLogger())

	_, err := svc.Dispatch(context.Background(), []slot.ClassSlot{slotA})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db closed")
}

func TestDispatch_EmptyRoster(t *testing.T) {
	sender := &fakeSender{}
	svc := NewDispatchServiceImpl(newMemLedger(), &memRoster{}, sender, testLogger())

	deliveries, err := svc.Dispatch(context.Background(), []slot.ClassSlot{slotA})
	require.NoError(t, err)
	assert.Empty(t, deliveries)
	assert.Empty(t, sender.sent)
}
