package cmd

import (
	"context"
	"fmt"

	"class_openings_notifier/internal/app"
	"class_openings_notifier/internal/infra/config"
	idb "class_openings_notifier/internal/infra/database"
	"class_openings_notifier/internal/infra/logger"
	"class_openings_notifier/internal/infra/mailer"
	"class_openings_notifier/internal/infra/scraper"
)

func openDatabase(ctx context.Context, cfg *config.AppConfig) (*idb.DB, error) {
	db, err := idb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	logger.Log.WithField("dialect", db.Dialect()).Debug("Database connection established")
	return db, nil
}

func newSender(cfg *config.AppConfig) (*mailer.SMTPSender, error) {
	if err := cfg.RequireMail(); err != nil {
		return nil, err
	}
	var tokens *mailer.TokenStore
	if cfg.Mail.SMTPAuth == mailer.AuthXOAuth2 {
		oauthCfg, err := mailer.LoadOAuthConfig(cfg.Mail.OAuthCredentialsFile)
		if err != nil {
			return nil, err
		}
		tokens = mailer.NewTokenStore(oauthCfg, cfg.Mail.OAuthTokenFile)
	}
	return mailer.NewSMTPSender(mailer.Config{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.SMTPUsername,
		Password: cfg.Mail.SMTPPassword,
		From:     cfg.Mail.From,
		Subject:  cfg.Mail.Subject,
		AuthMode: cfg.Mail.SMTPAuth,
	}, tokens, logger.Component("mailer"))
}

// newOpeningsService wires the full cycle against db.
func newOpeningsService(cfg *config.AppConfig, db *idb.DB) (*app.OpeningsServiceImpl, error) {
	sender, err := newSender(cfg)
	if err != nil {
		return nil, err
	}

	notifRepo := idb.NewSQLNotificationRepository(db)
	recipientRepo := idb.NewSQLRecipientRepository(db)
	loc := cfg.Location()
	sc := cfg.Scraper

	selectors := scraper.DefaultSelectors()
	extractor := scraper.NewExtractor(selectors, scraper.LevelFilter{
		Keyword:    sc.LevelKeyword,
		Token:      sc.LevelToken,
		LabelWidth: sc.LevelLabelWidth,
	}, loc, logger.Component("extractor"))

	browsers := scraper.NewChromeBrowserFactory(scraper.ChromeOptions{
		Headless:       sc.Headless,
		ExecPath:       sc.ChromePath,
		ElementTimeout: sc.ElementTimeout,
	}, logger.Component("browser"))

	walker := scraper.NewWalker(scraper.WalkerConfig{
		URL:              sc.ScheduleURL,
		LookaheadWeeks:   sc.LookaheadWeeks,
		ContainerTimeout: sc.ContainerTimeout,
		PageSettle:       sc.PageSettle,
		WeekSettle:       sc.WeekSettle,
		DaySettle:        sc.DaySettle,
	}, selectors, browsers, extractor, notifRepo, logger.Component("walker"))

	dispatcher := app.NewDispatchServiceImpl(notifRepo, recipientRepo, sender, logger.Component("dispatch"))
	return app.NewOpeningsServiceImpl(walker, dispatcher, notifRepo, loc, logger.Component("openings")), nil
}
