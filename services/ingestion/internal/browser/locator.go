package browser

import (
	"time"

	"jobbots/services/ingestion/internal/page"

	"github.com/playwright-community/playwright-go"
)

type locator struct {
	loc     playwright.Locator
	timeout time.Duration
}

func (l *locator) All() ([]page.Locator, error) {
	locs, err := l.loc.All()
	if err != nil {
		return nil, driverError("resolving elements", err)
	}
	out := make([]page.Locator, len(locs))
	for i, loc := range locs {
		out[i] = &locator{loc: loc, timeout: l.timeout}
	}
	return out, nil
}

func (l *locator) Locator(selector string) page.Locator {
	return &locator{loc: l.loc.Locator(selector), timeout: l.timeout}
}

func (l *locator) TextContent() (string, error) {
	text, err := l.loc.First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(float64(l.timeout / time.Millisecond)),
	})
	if err != nil {
		return "", driverError("reading text", err)
	}
	return text, nil
}

func (l *locator) GetAttribute(name string) (string, error) {
	value, err := l.loc.First().GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(float64(l.timeout / time.Millisecond)),
	})
	if err != nil {
		return "", driverError("reading attribute "+name, err)
	}
	return value, nil
}
