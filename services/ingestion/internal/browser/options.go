package browser

import (
	"context"
	"time"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultActionTimeout  = 5 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// AutomationControlledArg hides navigator.webdriver from page scripts.
const AutomationControlledArg = "--disable-blink-features=AutomationControlled"

type Viewport struct {
	Width  int
	Height int
}

type LaunchOptions struct {
	// Headless defaults to true.
	Headless *bool
	// Channel selects a branded browser such as "chrome"; empty uses the
	// bundled Chromium.
	Channel   string
	Args      []string
	UserAgent string
	Locale    string
	Viewport  *Viewport
	// Timeout applies to navigation and waits; defaults to DefaultTimeout.
	Timeout time.Duration
	// ActionTimeout bounds reading text or attributes of one element.
	ActionTimeout time.Duration
	// CookiesPath is where SaveCookies/LoadCookies persist; empty disables.
	CookiesPath string
}

func (o LaunchOptions) withDefaults() LaunchOptions {
	if o.Headless == nil {
		headless := true
		o.Headless = &headless
	}
	if o.Locale == "" {
		o.Locale = "zh-CN"
	}
	if o.Viewport == nil {
		o.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ActionTimeout == 0 {
		o.ActionTimeout = DefaultActionTimeout
	}
	args := []string{AutomationControlledArg}
	for _, a := range o.Args {
		if a != AutomationControlledArg {
			args = append(args, a)
		}
	}
	o.Args = args
	return o
}

type NavigateOptions struct {
	// WaitUntil is one of "load", "domcontentloaded", "networkidle",
	// "commit". Defaults to "domcontentloaded".
	WaitUntil string
	Timeout   time.Duration
}

type WaitOptions struct {
	// State is one of "attached", "detached", "visible", "hidden".
	// Defaults to "visible".
	State   string
	Timeout time.Duration
}

// timeoutMillis picks the smaller of d and the time left on ctx, in the
// milliseconds the driver expects. A non-positive d means fallback.
func timeoutMillis(ctx context.Context, d, fallback time.Duration) float64 {
	if d <= 0 {
		d = fallback
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = left
		}
	}
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return float64(d / time.Millisecond)
}
