package mailer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GmailScope grants SMTP access to the mailbox.
const GmailScope = "https://mail.google.com/"

var ErrNoToken = errors.New("no cached mail token, run the auth command first")

// LoadOAuthConfig reads an installed-app client secrets file.
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, GmailScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse oauth credentials: %w", err)
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "http://localhost"
	}
	return cfg, nil
}

// TokenStore caches the mail OAuth token on disk. It is reloaded on every
// run and rewritten whenever a refresh produces a new access token.
type TokenStore struct {
	config *oauth2.Config
	path   string
}

func NewTokenStore(config *oauth2.Config, path string) *TokenStore {
	return &TokenStore{config: config, path: path}
}

func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return tok, nil
}

func (s *TokenStore) Save(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Token returns a valid access token, refreshing and persisting it if needed.
func (s *TokenStore) Token(ctx context.Context) (*oauth2.Token, error) {
	cached, err := s.Load()
	if err != nil {
		return nil, err
	}
	fresh, err := s.config.TokenSource(ctx, cached).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if fresh.AccessToken != cached.AccessToken {
		if err := s.Save(fresh); err != nil {
			return nil, err
		}
	}
	return fresh, nil
}

func (s *TokenStore) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and caches it.
func (s *TokenStore) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if err := s.Save(tok); err != nil {
		return nil, err
	}
	return tok, nil
}
