package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"

	"class_openings_notifier/internal/domain/slot"

	"github.com/google/uuid"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

const (
	AuthPlain   = "plain"
	AuthXOAuth2 = "xoauth2"
)

var ErrMailNotConfigured = errors.New("mail sender is not configured")

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
	AuthMode string
}

// SMTPSender emails openings through an SMTP relay.
type SMTPSender struct {
	cfg    Config
	tokens *TokenStore
	logger *logrus.Entry
	send   func(e *email.Email, addr string, a smtp.Auth) error
}

// NewSMTPSender validates cfg. tokens is only needed for AuthXOAuth2.
func NewSMTPSender(cfg Config, tokens *TokenStore, logger *logrus.Entry) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("%w: host and sender address are required", ErrMailNotConfigured)
	}
	switch cfg.AuthMode {
	case AuthPlain:
	case AuthXOAuth2:
		if tokens == nil {
			return nil, fmt.Errorf("%w: xoauth2 needs a token store", ErrMailNotConfigured)
		}
	default:
		return nil, fmt.Errorf("%w: unknown auth mode %q", ErrMailNotConfigured, cfg.AuthMode)
	}
	return &SMTPSender{
		cfg:    cfg,
		tokens: tokens,
		logger: logger,
		send: func(e *email.Email, addr string, a smtp.Auth) error {
			return e.Send(addr, a)
		},
	}, nil
}

// Send emails the slots to recipientEmail and returns the Message-Id.
func (s *SMTPSender) Send(ctx context.Context, slots []slot.ClassSlot, recipientEmail string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	auth, err := s.auth(ctx)
	if err != nil {
		return "", err
	}

	messageID := newMessageID(s.cfg.From)
	msg := email.NewEmail()
	msg.From = s.cfg.From
	msg.To = []string{recipientEmail}
	msg.Subject = s.cfg.Subject
	msg.Text = []byte(FormatBody(slots))
	msg.Headers.Set("Message-Id", messageID)

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	err = s.send(msg, addr, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		s.logger.WithField("addr", addr).Warn("SMTP server does not support AUTH, retrying without it")
		err = s.send(msg, addr, nil)
	}
	if err != nil {
		return "", fmt.Errorf("failed to send email to %s: %w", recipientEmail, err)
	}
	return messageID, nil
}

func (s *SMTPSender) auth(ctx context.Context) (smtp.Auth, error) {
	switch s.cfg.AuthMode {
	case AuthXOAuth2:
		tok, err := s.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain mail token: %w", err)
		}
		return &xoauth2Auth{username: s.username(), accessToken: tok.AccessToken}, nil
	default:
		if s.cfg.Username == "" {
			return nil, nil
		}
		return smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host), nil
	}
}

func (s *SMTPSender) username() string {
	if s.cfg.Username != "" {
		return s.cfg.Username
	}
	if addr, err := mail.ParseAddress(s.cfg.From); err == nil {
		return addr.Address
	}
	return s.cfg.From
}

func newMessageID(from string) string {
	domain := "localhost"
	if addr, err := mail.ParseAddress(from); err == nil {
		if at := strings.LastIndex(addr.Address, "@"); at >= 0 {
			domain = addr.Address[at+1:]
		}
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

// xoauth2Auth implements the SASL XOAUTH2 mechanism used by Gmail.
type xoauth2Auth struct {
	username    string
	accessToken string
}

func (a *xoauth2Auth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, errors.New("xoauth2 requires an encrypted connection")
	}
	resp := fmt.Sprintf("user=%s\x01auth=Bearer %s\x01\x01", a.username, a.accessToken)
	return "XOAUTH2", []byte(resp), nil
}

func (a *xoauth2Auth) Next(fromServer []byte, more bool) ([]byte, error) {
	if more {
		// The server sent an error challenge; an empty reply gets the final status.
		return []byte{}, nil
	}
	return nil, nil
}
