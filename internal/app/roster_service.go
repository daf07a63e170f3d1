package app

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"class_openings_notifier/internal/domain/recipient"
	idb "class_openings_notifier/internal/infra/database"
)

var ErrInvalidEmail = fmt.Errorf("invalid email address")

// RosterService manages who receives openings emails.
type RosterService struct {
	recipientRepo recipient.Repository
}

func NewRosterService(rr recipient.Repository) *RosterService {
	return &RosterService{recipientRepo: rr}
}

// AddRecipient returns idb.ErrDuplicateRecipient when the address is already
// on the roster. Callers treat that as a soft conflict.
func (s *RosterService) AddRecipient(ctx context.Context, email string) (string, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	if err := s.recipientRepo.Add(ctx, normalized); err != nil {
		if errors.Is(err, idb.ErrDuplicateRecipient) {
			return normalized, err
		}
		return "", fmt.Errorf("failed to add recipient: %w", err)
	}
	return normalized, nil
}

func (s *RosterService) RemoveRecipient(ctx context.Context, email string) (string, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	if err := s.recipientRepo.Remove(ctx, normalized); err != nil {
		if errors.Is(err, idb.ErrRecipientNotFound) {
			return normalized, err
		}
		return "", fmt.Errorf("failed to remove recipient: %w", err)
	}
	return normalized, nil
}

func (s *RosterService) RecipientExists(ctx context.Context, email string) (bool, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return false, err
	}
	return s.recipientRepo.Exists(ctx, normalized)
}

func (s *RosterService) ListRecipients(ctx context.Context) ([]*recipient.Recipient, error) {
	list, err := s.recipientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	return list, nil
}

// NormalizeEmail accepts a bare address and lowercases it. Display names
// ("Name <a@b>") are rejected so the roster only holds plain addresses.
func NormalizeEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return strings.ToLower(addr.Address), nil
}
