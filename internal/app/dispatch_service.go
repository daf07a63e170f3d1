package app

import (
	"context"
	"fmt"

	"class_openings_notifier/internal/domain/mail"
	"class_openings_notifier/internal/domain/notification"
	"class_openings_notifier/internal/domain/recipient"
	"class_openings_notifier/internal/domain/slot"

	"github.com/sirupsen/logrus"
)

// AlreadyNotifiedMessage is reported for a recipient with nothing new to hear about.
const AlreadyNotifiedMessage = "already notified about all current openings"

type DeliveryStatus string

const (
	DeliverySent            DeliveryStatus = "sent"
	DeliveryAlreadyNotified DeliveryStatus = "already_notified"
	DeliveryFailed          DeliveryStatus = "failed"
)

// Delivery is the outcome of one recipient's dispatch.
type Delivery struct {
	Recipient string
	Status    DeliveryStatus
	MessageID string
	Slots     int
	Err       error
}

// DispatchService fans the open slots out to the roster, one email per
// recipient, and records what was sent.
type DispatchService interface {
	Dispatch(ctx context.Context, openings []slot.ClassSlot) ([]Delivery, error)
}

type DispatchServiceImpl struct {
	notifRepo     notification.Repository
	recipientRepo recipient.Repository
	sender        mail.Sender
	logger        *logrus.Entry
}

func NewDispatchServiceImpl(
	nr notification.Repository,
	rr recipient.Repository,
	sender mail.Sender,
	logger *logrus.Entry,
) *DispatchServiceImpl {
	return &DispatchServiceImpl{
		notifRepo:     nr,
		recipientRepo: rr,
		sender:        sender,
		logger:        logger,
	}
}

// Dispatch only fails when the roster cannot be read. Per-recipient errors are
// returned inside the deliveries and never stop the remaining recipients.
func (s *DispatchServiceImpl) Dispatch(ctx context.Context, openings []slot.ClassSlot) ([]Delivery, error) {
	emails, err := s.recipientRepo.ListEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	if len(emails) == 0 {
		s.logger.Info("Roster is empty, nothing to dispatch")
		return nil, nil
	}

	deliveries := make([]Delivery, 0, len(emails))
	for _, email := range emails {
		deliveries = append(deliveries, s.dispatchOne(ctx, openings, email))
	}
	return deliveries, nil
}

func (s *DispatchServiceImpl) dispatchOne(ctx context.Context, openings []slot.ClassSlot, email string) Delivery {
	log := s.logger.WithField("recipient", email)
	d := Delivery{Recipient: email}

	pending, err := notification.FilterUnnotified(ctx, s.notifRepo, openings, email)
	if err != nil {
		log.WithError(err).Error("Failed to filter openings against the ledger")
		d.Status, d.Err = DeliveryFailed, err
		return d
	}
	if len(pending) == 0 {
		log.Info(AlreadyNotifiedMessage)
		d.Status = DeliveryAlreadyNotified
		return d
	}

	messageID, err := s.sender.Send(ctx, pending, email)
	if err != nil {
		log.WithError(err).Error("Failed to send openings email")
		d.Status, d.Err = DeliveryFailed, err
		return d
	}
	log.WithFields(logrus.Fields{"message_id": messageID, "slots": len(pending)}).Info("Openings email sent")

	for _, sl := range pending {
		if err := s.notifRepo.RecordNotification(ctx, sl.Date, sl.Time, sl.Level, email); err != nil {
			// The email is already out; a missing record only risks a repeat next run.
			log.WithError(err).WithFields(logrus.Fields{"date": sl.Date, "time": sl.Time}).
				Warn("Failed to record notification")
		}
	}

	d.Status = DeliverySent
	d.MessageID = messageID
	d.Slots = len(pending)
	return d
}
