package page

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"jobbots/common/errors"

	"github.com/PuerkitoBio/goquery"
)

// Loader fetches url and returns the body and the URL it was served from.
type Loader func(ctx context.Context, url string) (body []byte, finalURL string, err error)

// DocumentPage is a Page over static HTML. Nothing on it changes after
// load, so WaitForSelector answers immediately.
type DocumentPage struct {
	load Loader
	doc  *goquery.Document
	url  string
}

func NewDocumentPage(load Loader) *DocumentPage {
	return &DocumentPage{load: load, url: "about:blank"}
}

// NewFixturePage serves pages from a url -> html map.
func NewFixturePage(fixtures map[string]string) *DocumentPage {
	return NewDocumentPage(func(_ context.Context, url string) ([]byte, string, error) {
		html, ok := fixtures[url]
		if !ok {
			return nil, "", errors.NotFound(fmt.Sprintf("no fixture for %s", url), nil)
		}
		return []byte(html), url, nil
	})
}

func (p *DocumentPage) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, finalURL, err := p.load(ctx, url)
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return errors.Internal("parsing "+url, err)
	}

	p.doc = doc
	p.url = finalURL
	return nil
}

func (p *DocumentPage) WaitForSelector(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.root().Find(selector).Length() == 0 {
		return errors.Timeout(fmt.Sprintf("waiting for selector %q", selector), nil)
	}
	return nil
}

func (p *DocumentPage) root() *goquery.Selection {
	if p.doc == nil {
		return new(goquery.Selection)
	}
	return p.doc.Selection
}

func (p *DocumentPage) Locator(selector string) Locator {
	return &docLocator{
		selector: selector,
		resolve:  func() *goquery.Selection { return p.root().Find(selector) },
	}
}

func (p *DocumentPage) URL() string {
	return p.url
}

func (p *DocumentPage) Close() error {
	p.doc = nil
	return nil
}

type docLocator struct {
	selector string
	resolve  func() *goquery.Selection
}

func (l *docLocator) All() ([]Locator, error) {
	sel := l.resolve()
	out := make([]Locator, 0, sel.Length())
	for i := 0; i < sel.Length(); i++ {
		item := sel.Eq(i)
		out = append(out, &docLocator{
			selector: fmt.Sprintf("%s >> nth=%d", l.selector, i),
			resolve:  func() *goquery.Selection { return item },
		})
	}
	return out, nil
}

func (l *docLocator) Locator(selector string) Locator {
	return &docLocator{
		selector: l.selector + " " + selector,
		resolve:  func() *goquery.Selection { return l.resolve().Find(selector) },
	}
}

func (l *docLocator) first() (*goquery.Selection, error) {
	sel := l.resolve()
	if sel.Length() == 0 {
		return nil, errors.NotFound(fmt.Sprintf("no element matches %q", l.selector), nil)
	}
	return sel.First(), nil
}

func (l *docLocator) TextContent() (string, error) {
	sel, err := l.first()
	if err != nil {
		return "", err
	}
	return sel.Text(), nil
}

func (l *docLocator) GetAttribute(name string) (string, error) {
	sel, err := l.first()
	if err != nil {
		return "", err
	}
	value, _ := sel.Attr(name)
	return value, nil
}
