package browser

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"jobbots/common/errors"
	"jobbots/services/ingestion/internal/page"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Session is one Chromium browser with a single context and tab.
// It implements page.Page so bots can drive it directly.
type Session struct {
	mu      sync.Mutex
	opts    LaunchOptions
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	logger  *zap.Logger
	closed  bool
}

var _ page.Page = (*Session)(nil)

// Launch starts a browser on a running driver.
func (d *Driver) Launch(opts LaunchOptions) (*Session, error) {
	pw, err := d.running()
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: opts.Headless,
		Args:     opts.Args,
	}
	if opts.Channel != "" {
		launchOpts.Channel = playwright.String(opts.Channel)
	}
	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, driverError("launching chromium", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
		Locale: playwright.String(opts.Locale),
	}
	if opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		return nil, driverError("creating browser context", err)
	}

	pg, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		return nil, driverError("opening page", err)
	}
	pg.SetDefaultTimeout(float64(opts.Timeout / time.Millisecond))
	pg.SetDefaultNavigationTimeout(float64(opts.Timeout / time.Millisecond))

	s := &Session{
		opts:    opts,
		browser: browser,
		context: bctx,
		page:    pg,
		logger:  d.logger,
	}

	if opts.CookiesPath != "" {
		if _, err := s.LoadCookies(); err != nil {
			s.logger.Warn("failed to restore cookies",
				zap.String("path", opts.CookiesPath),
				zap.Error(err))
		}
	}

	d.logger.Info("browser session launched",
		zap.Bool("headless", *opts.Headless),
		zap.String("channel", opts.Channel))
	return s, nil
}

func (s *Session) Navigate(ctx context.Context, url string, opts NavigateOptions) error {
	if err := s.usable(ctx); err != nil {
		return err
	}
	waitUntil := playwright.WaitUntilStateDomcontentloaded
	if opts.WaitUntil != "" {
		w := playwright.WaitUntilState(opts.WaitUntil)
		waitUntil = &w
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: waitUntil,
		Timeout:   playwright.Float(timeoutMillis(ctx, opts.Timeout, s.opts.Timeout)),
	})
	if err != nil {
		return driverError("navigating to "+url, err)
	}
	return nil
}

func (s *Session) WaitFor(ctx context.Context, selector string, opts WaitOptions) error {
	if err := s.usable(ctx); err != nil {
		return err
	}
	state := playwright.WaitForSelectorStateVisible
	if opts.State != "" {
		st := playwright.WaitForSelectorState(opts.State)
		state = &st
	}
	_, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   state,
		Timeout: playwright.Float(timeoutMillis(ctx, opts.Timeout, s.opts.Timeout)),
	})
	if err != nil {
		return driverError("waiting for "+selector, err)
	}
	return nil
}

func (s *Session) Goto(ctx context.Context, url string) error {
	return s.Navigate(ctx, url, NavigateOptions{})
}

func (s *Session) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return s.WaitFor(ctx, selector, WaitOptions{Timeout: timeout})
}

func (s *Session) Locator(selector string) page.Locator {
	return &locator{loc: s.page.Locator(selector), timeout: s.opts.ActionTimeout}
}

func (s *Session) URL() string {
	return s.page.URL()
}

// Close shuts the tab, context and browser. The driver keeps running.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.opts.CookiesPath != "" {
		if err := s.saveCookies(); err != nil {
			s.logger.Warn("failed to save cookies",
				zap.String("path", s.opts.CookiesPath),
				zap.Error(err))
		}
	}

	var errs []error
	if err := s.page.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := stderrors.Join(errs...); err != nil {
		return errors.Internal("closing browser session", err)
	}
	return nil
}

func (s *Session) usable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Timeout("browser call cancelled", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.Unavailable("browser session closed", nil)
	}
	return nil
}

// driverError wraps an error returned by the driver, keeping timeouts
// distinguishable from other failures.
func driverError(action string, err error) error {
	if stderrors.Is(err, playwright.ErrTimeout) {
		return errors.Timeout(action, err)
	}
	return errors.Internal(fmt.Sprintf("%s failed", action), err)
}
