package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"DATABASE_URL", "LOG_LEVEL", "ENVIRONMENT", "TIMEZONE", "CRON_SPEC",
	"SCHEDULE_URL", "LOOKAHEAD_WEEKS", "LEVEL_KEYWORD", "LEVEL_TOKEN", "LEVEL_LABEL_WIDTH",
	"CONTAINER_TIMEOUT", "PAGE_SETTLE", "WEEK_SETTLE", "DAY_SETTLE", "ELEMENT_TIMEOUT",
	"BROWSER_HEADLESS", "CHROME_PATH",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_AUTH",
	"MAIL_FROM", "MAIL_SUBJECT", "OAUTH_CREDENTIALS_FILE", "OAUTH_TOKEN_FILE",
}

// isolate clears every key and moves into an empty dir so no .env is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "notifications.db", cfg.DatabaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "*/10 * * * *", cfg.CronSpec)
	assert.Equal(t, time.Local, cfg.Location())

	assert.Equal(t, 2, cfg.Scraper.LookaheadWeeks)
	assert.Equal(t, "Flow", cfg.Scraper.LevelKeyword)
	assert.Equal(t, "1", cfg.Scraper.LevelToken)
	assert.Equal(t, 8, cfg.Scraper.LevelLabelWidth)
	assert.Equal(t, 10*time.Second, cfg.Scraper.ContainerTimeout)
	assert.Equal(t, 3*time.Second, cfg.Scraper.PageSettle)
	assert.Equal(t, 2*time.Second, cfg.Scraper.WeekSettle)
	assert.Equal(t, time.Second, cfg.Scraper.DaySettle)
	assert.True(t, cfg.Scraper.Headless)

	assert.Equal(t, "smtp.gmail.com", cfg.Mail.SMTPHost)
	assert.Equal(t, 587, cfg.Mail.SMTPPort)
	assert.Equal(t, "plain", cfg.Mail.SMTPAuth)
	assert.Equal(t, "Pilates Opening(s)", cfg.Mail.Subject)
	assert.Equal(t, "token.json", cfg.Mail.OAuthTokenFile)
	assert.Error(t, cfg.RequireMail())
}

func TestLoad_Overrides(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/openings")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("TIMEZONE", "America/New_York")
	t.Setenv("LOOKAHEAD_WEEKS", "3")
	t.Setenv("DAY_SETTLE", "250ms")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("SMTP_AUTH", "XOAUTH2")
	t.Setenv("MAIL_FROM", "alerts@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@localhost/openings", cfg.DatabaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "America/New_York", cfg.Location().String())
	assert.Equal(t, 3, cfg.Scraper.LookaheadWeeks)
	assert.Equal(t, 250*time.Millisecond, cfg.Scraper.DaySettle)
	assert.False(t, cfg.Scraper.Headless)
	assert.Equal(t, "xoauth2", cfg.Mail.SMTPAuth)
	assert.NoError(t, cfg.RequireMail())
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"LOOKAHEAD_WEEKS":   "two",
		"LEVEL_LABEL_WIDTH": "x",
		"CONTAINER_TIMEOUT": "10",
		"BROWSER_HEADLESS":  "maybe",
		"SMTP_PORT":         "smtp",
		"SMTP_AUTH":         "cram-md5",
		"TIMEZONE":          "Mars/Olympus",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			isolate(t)
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_ZeroLookahead(t *testing.T) {
	isolate(t)
	t.Setenv("LOOKAHEAD_WEEKS", "0")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	dir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MAIL_SUBJECT=Openings\n"), 0o600))
	// godotenv never overrides a variable that is present, even when empty.
	require.NoError(t, os.Unsetenv("MAIL_SUBJECT"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Openings", cfg.Mail.Subject)
}
