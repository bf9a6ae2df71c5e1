// Package page defines the page handle the scraper bots drive and a static
// implementation backed by parsed HTML documents.
package page

import (
	"context"
	"time"
)

// Page is a navigable document. Implementations are not safe for concurrent
// use; a bot owns its page.
type Page interface {
	// Goto loads url and makes it the current document.
	Goto(ctx context.Context, url string) error
	// WaitForSelector blocks until selector matches or timeout elapses.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	// Locator is lazy: it is resolved against the current document on use.
	Locator(selector string) Locator
	URL() string
	Close() error
}

type Locator interface {
	// All resolves every match into its own locator.
	All() ([]Locator, error)
	Locator(selector string) Locator
	// TextContent returns the text of the first match.
	TextContent() (string, error)
	// GetAttribute returns the attribute of the first match, "" if unset.
	GetAttribute(name string) (string, error)
}
