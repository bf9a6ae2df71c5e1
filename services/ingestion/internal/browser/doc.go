// Package browser is the typed layer over the Playwright driver.
//
// The driver itself is an external Node process started and spoken to by
// playwright-go. This package computes the environment the driver runs
// with, launches Chromium sessions, and exposes each capability the bots
// need as a method taking an explicit options struct. Inputs are validated
// by the driver; its errors are returned wrapped, never retried.
package browser
