package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL string
	LogLevel    string
	Environment string
	Timezone    string
	CronSpec    string

	Scraper ScraperConfig
	Mail    MailConfig
}

// ScraperConfig drives the schedule walk and the class filter.
type ScraperConfig struct {
	ScheduleURL      string
	LookaheadWeeks   int
	LevelKeyword     string
	LevelToken       string
	LevelLabelWidth  int
	ContainerTimeout time.Duration
	PageSettle       time.Duration
	WeekSettle       time.Duration
	DaySettle        time.Duration
	ElementTimeout   time.Duration
	Headless         bool
	ChromePath       string
}

type MailConfig struct {
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	SMTPAuth             string
	From                 string
	Subject              string
	OAuthCredentialsFile string
	OAuthTokenFile       string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = getEnv("DATABASE_URL", "notifications.db")
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))
	cfg.CronSpec = getEnv("CRON_SPEC", "*/10 * * * *")

	cfg.Timezone = getEnv("TIMEZONE", "Local")
	if _, err = time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	sc := &cfg.Scraper
	sc.ScheduleURL = getEnv("SCHEDULE_URL", "https://www.clubpilates.com/location/gardencity")
	sc.LevelKeyword = getEnv("LEVEL_KEYWORD", "Flow")
	sc.LevelToken = getEnv("LEVEL_TOKEN", "1")
	sc.ChromePath = os.Getenv("CHROME_PATH")

	if sc.LookaheadWeeks, err = getInt("LOOKAHEAD_WEEKS", 2); err != nil {
		return nil, err
	}
	if sc.LookaheadWeeks < 1 {
		return nil, fmt.Errorf("invalid LOOKAHEAD_WEEKS: must be at least 1, got %d", sc.LookaheadWeeks)
	}
	if sc.LevelLabelWidth, err = getInt("LEVEL_LABEL_WIDTH", 8); err != nil {
		return nil, err
	}
	if sc.ContainerTimeout, err = getDuration("CONTAINER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if sc.PageSettle, err = getDuration("PAGE_SETTLE", 3*time.Second); err != nil {
		return nil, err
	}
	if sc.WeekSettle, err = getDuration("WEEK_SETTLE", 2*time.Second); err != nil {
		return nil, err
	}
	if sc.DaySettle, err = getDuration("DAY_SETTLE", time.Second); err != nil {
		return nil, err
	}
	if sc.ElementTimeout, err = getDuration("ELEMENT_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if sc.Headless, err = getBool("BROWSER_HEADLESS", true); err != nil {
		return nil, err
	}

	mc := &cfg.Mail
	mc.SMTPHost = getEnv("SMTP_HOST", "smtp.gmail.com")
	mc.SMTPUsername = os.Getenv("SMTP_USERNAME")
	mc.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	mc.SMTPAuth = strings.ToLower(getEnv("SMTP_AUTH", "plain"))
	mc.From = os.Getenv("MAIL_FROM")
	mc.Subject = getEnv("MAIL_SUBJECT", "Pilates Opening(s)")
	mc.OAuthCredentialsFile = getEnv("OAUTH_CREDENTIALS_FILE", "credentials.json")
	mc.OAuthTokenFile = getEnv("OAUTH_TOKEN_FILE", "token.json")
	if mc.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if mc.SMTPAuth != "plain" && mc.SMTPAuth != "xoauth2" {
		return nil, fmt.Errorf("invalid SMTP_AUTH: %q (want plain or xoauth2)", mc.SMTPAuth)
	}

	return cfg, nil
}

// Location resolves the studio time zone. Load has already validated it.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RequireMail reports whether the sender address needed by run and serve is set.
func (c *AppConfig) RequireMail() error {
	if c.Mail.From == "" {
		return fmt.Errorf("MAIL_FROM is not set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
