package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"class_openings_notifier/internal/domain/slot"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// ErrCalendarNotLoaded means the first week never rendered; the walk has no data.
var ErrCalendarNotLoaded = errors.New("schedule calendar did not load")

// Browser is a live page session. Implementations are not safe for concurrent use.
type Browser interface {
	Navigate(url string) error
	// Click activates the first element matching selector, or fails with
	// ErrElementNotFound.
	Click(selector string) error
	WaitPresent(selector string, timeout time.Duration) error
	Count(selector string) (int, error)
	ClickNth(selector string, index int) error
	HTML() (string, error)
	Close() error
}

// BrowserFactory starts one browser session per walk.
type BrowserFactory func(ctx context.Context) (Browser, error)

// Invalidator drops ledger records for a slot seen as unavailable.
type Invalidator interface {
	Invalidate(ctx context.Context, classDate, classTime string) (int64, error)
}

type WalkerConfig struct {
	URL              string
	LookaheadWeeks   int
	ContainerTimeout time.Duration
	PageSettle       time.Duration
	WeekSettle       time.Duration
	DaySettle        time.Duration
}

// WalkResult is the aggregate of one walk.
type WalkResult struct {
	Slots       []slot.ClassSlot
	Weeks       int
	Days        int
	Invalidated int64
}

// Walker drives the paginated schedule: load, dismiss the cookie popup, then
// every day of every week in the lookahead window.
type Walker struct {
	cfg        WalkerConfig
	selectors  Selectors
	newBrowser BrowserFactory
	extractor  *Extractor
	ledger     Invalidator
	logger     *logrus.Entry
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewWalker(
	cfg WalkerConfig,
	selectors Selectors,
	newBrowser BrowserFactory,
	extractor *Extractor,
	ledger Invalidator,
	logger *logrus.Entry,
) *Walker {
	return &Walker{
		cfg:        cfg,
		selectors:  selectors,
		newBrowser: newBrowser,
		extractor:  extractor,
		ledger:     ledger,
		logger:     logger,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// Walk collects the open slots of the lookahead window. Invalidations are
// applied to the ledger as they are found. The browser is always closed.
func (w *Walker) Walk(ctx context.Context) (*WalkResult, error) {
	browser, err := w.newBrowser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			w.logger.WithError(err).Warn("Failed to close browser session")
		}
	}()

	w.logger.WithField("url", w.cfg.URL).Info("Loading schedule page")
	if err := browser.Navigate(w.cfg.URL); err != nil {
		return nil, fmt.Errorf("failed to load schedule page: %w", err)
	}
	if err := w.sleep(ctx, w.cfg.PageSettle); err != nil {
		return nil, err
	}

	if err := w.dismissPopup(ctx, browser); err != nil {
		return nil, err
	}

	result := &WalkResult{}
	for week := 0; week < w.cfg.LookaheadWeeks; week++ {
		weekLog := w.logger.WithField("week", week)

		if week > 0 {
			if err := browser.Click(w.selectors.NextWeek); err != nil {
				weekLog.WithError(err).Warn("Next week control not found, stopping lookahead")
				break
			}
			if err := w.sleep(ctx, w.cfg.WeekSettle); err != nil {
				return result, err
			}
		}

		if err := browser.WaitPresent(w.selectors.Calendar, w.cfg.ContainerTimeout); err != nil {
			if week == 0 {
				return nil, fmt.Errorf("%w: %v", ErrCalendarNotLoaded, err)
			}
			weekLog.WithError(err).Warn("Calendar did not load, stopping lookahead")
			break
		}

		if err := w.walkWeek(ctx, browser, weekLog, result); err != nil {
			return result, err
		}
		result.Weeks++
	}

	w.logger.WithFields(logrus.Fields{
		"weeks":       result.Weeks,
		"days":        result.Days,
		"openings":    len(result.Slots),
		"invalidated": result.Invalidated,
	}).Info("Schedule walk finished")
	return result, nil
}

func (w *Walker) dismissPopup(ctx context.Context, browser Browser) error {
	if err := browser.Click(w.selectors.CookieDecline); err != nil {
		w.logger.WithError(err).Info("No cookie popup found or could not click it")
		return nil
	}
	return w.sleep(ctx, w.cfg.WeekSettle)
}

// walkWeek visits each day control. Clicking a day can rebuild the control
// list, so it is re-read on every step and indices past its end are skipped.
func (w *Walker) walkWeek(ctx context.Context, browser Browser, weekLog *logrus.Entry, result *WalkResult) error {
	total, err := browser.Count(w.selectors.DayButton)
	if err != nil {
		weekLog.WithError(err).Warn("Could not list day controls")
		return nil
	}

	for i := 0; i < total; i++ {
		dayLog := weekLog.WithField("day", i)

		live, err := browser.Count(w.selectors.DayButton)
		if err != nil {
			dayLog.WithError(err).Warn("Could not re-read day controls, skipping day")
			continue
		}
		if i >= live {
			dayLog.WithField("controls", live).Debug("Day control disappeared, skipping day")
			continue
		}
		if err := browser.ClickNth(w.selectors.DayButton, i); err != nil {
			dayLog.WithError(err).Warn("Could not select day, skipping day")
			continue
		}
		if err := w.sleep(ctx, w.cfg.DaySettle); err != nil {
			return err
		}

		html, err := browser.HTML()
		if err != nil {
			dayLog.WithError(err).Warn("Could not read page, skipping day")
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			dayLog.WithError(err).Warn("Could not parse page, skipping day")
			continue
		}
		date := w.extractor.DayDate(doc, i)
		if date == "" {
			dayLog.Warn("Day control has no date value, skipping day")
			continue
		}

		extraction := w.extractor.Extract(doc, date, w.now())
		result.Slots = append(result.Slots, extraction.Slots...)
		for _, inv := range extraction.Invalidations {
			result.Invalidated += w.invalidate(ctx, inv, dayLog)
		}
		result.Days++
	}
	return nil
}

// invalidate keys the deletion the same way slots are stored: 24-hour start
// time, falling back to the captured text when it cannot be parsed.
func (w *Walker) invalidate(ctx context.Context, inv slot.Invalidation, dayLog *logrus.Entry) int64 {
	key := inv.RawTime
	if t, err := slot.To24Hour(inv.RawTime); err == nil {
		key = t
	}
	n, err := w.ledger.Invalidate(ctx, inv.Date, key)
	if err != nil {
		dayLog.WithError(err).WithFields(logrus.Fields{"date": inv.Date, "time": key}).Error("Failed to invalidate notifications")
		return 0
	}
	if n > 0 {
		dayLog.WithFields(logrus.Fields{"date": inv.Date, "time": key, "records": n}).Info("Slot no longer open, notifications reset")
	}
	return n
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
