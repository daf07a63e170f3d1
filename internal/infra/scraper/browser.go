package scraper

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

var ErrElementNotFound = errors.New("element not found")

type ChromeOptions struct {
	Headless       bool
	ExecPath       string
	ElementTimeout time.Duration
}

// ChromeBrowser is a headless Chrome tab driven over the DevTools protocol.
type ChromeBrowser struct {
	ctx            context.Context
	cancelTab      context.CancelFunc
	cancelAlloc    context.CancelFunc
	elementTimeout time.Duration
}

func NewChromeBrowserFactory(opts ChromeOptions, logger *logrus.Entry) BrowserFactory {
	return func(ctx context.Context) (Browser, error) {
		return NewChromeBrowser(ctx, opts, logger)
	}
}

func NewChromeBrowser(ctx context.Context, opts ChromeOptions, logger *logrus.Entry) (*ChromeBrowser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", opts.Headless))
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)

	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Debugf),
		chromedp.WithErrorf(logger.Debugf),
	)
	// The first Run launches the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	timeout := opts.ElementTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ChromeBrowser{
		ctx:            tabCtx,
		cancelTab:      cancelTab,
		cancelAlloc:    cancelAlloc,
		elementTimeout: timeout,
	}, nil
}

func (b *ChromeBrowser) Navigate(url string) error {
	return chromedp.Run(b.ctx, chromedp.Navigate(url))
}

func (b *ChromeBrowser) Click(selector string) error {
	ctx, cancel := context.WithTimeout(b.ctx, b.elementTimeout)
	defer cancel()
	err := chromedp.Run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
	return b.lookupError(selector, err)
}

func (b *ChromeBrowser) WaitPresent(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()
	err := chromedp.Run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
	return b.lookupError(selector, err)
}

func (b *ChromeBrowser) Count(selector string) (int, error) {
	var n int
	js := fmt.Sprintf(`document.querySelectorAll(%s).length`, strconv.Quote(selector))
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(js, &n)); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", selector, err)
	}
	return n, nil
}

func (b *ChromeBrowser) ClickNth(selector string, index int) error {
	var clicked bool
	js := fmt.Sprintf(`(() => {
		const els = document.querySelectorAll(%s);
		if (%d >= els.length) { return false; }
		els[%d].click();
		return true;
	})()`, strconv.Quote(selector), index, index)
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(js, &clicked)); err != nil {
		return fmt.Errorf("failed to click %s[%d]: %w", selector, index, err)
	}
	if !clicked {
		return fmt.Errorf("%w: %s[%d]", ErrElementNotFound, selector, index)
	}
	return nil
}

func (b *ChromeBrowser) HTML() (string, error) {
	var html string
	if err := chromedp.Run(b.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page html: %w", err)
	}
	return html, nil
}

// Close shuts the browser down and releases the allocator.
func (b *ChromeBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancelTab()
	b.cancelAlloc()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close chrome: %w", err)
	}
	return nil
}

func (b *ChromeBrowser) lookupError(selector string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && b.ctx.Err() == nil {
		return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return err
}
