package page

import (
	"context"
	"testing"
	"time"

	"jobbots/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listHTML = `<html><body>
<ul class="jobs">
  <li class="job"><a class="title" href="/job/1/">Go 工程师</a><span class="tag">Go</span><span class="tag">K8s</span></li>
  <li class="job"><a class="title" href="/job/2/"> Python 开发 </a></li>
</ul>
</body></html>`

func TestDocumentPageLocators(t *testing.T) {
	ctx := context.Background()
	p := NewFixturePage(map[string]string{"https://example.com/jobs": listHTML})

	require.NoError(t, p.Goto(ctx, "https://example.com/jobs"))
	assert.Equal(t, "https://example.com/jobs", p.URL())
	require.NoError(t, p.WaitForSelector(ctx, ".jobs", time.Second))

	items, err := p.Locator(".jobs .job").All()
	require.NoError(t, err)
	require.Len(t, items, 2)

	title, err := items[1].Locator(".title").TextContent()
	require.NoError(t, err)
	assert.Equal(t, " Python 开发 ", title)

	href, err := items[0].Locator(".title").GetAttribute("href")
	require.NoError(t, err)
	assert.Equal(t, "/job/1/", href)

	missingAttr, err := items[0].Locator(".title").GetAttribute("data-id")
	require.NoError(t, err)
	assert.Empty(t, missingAttr)

	tags, err := items[0].Locator(".tag").All()
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	first, err := p.Locator(".title").TextContent()
	require.NoError(t, err)
	assert.Equal(t, "Go 工程师", first)
}

func TestDocumentPageMissingElements(t *testing.T) {
	ctx := context.Background()
	p := NewFixturePage(map[string]string{"https://example.com/jobs": listHTML})
	require.NoError(t, p.Goto(ctx, "https://example.com/jobs"))

	err := p.WaitForSelector(ctx, ".job-detail", time.Second)
	assert.True(t, errors.Is(err, errors.ErrTypeTimeout))

	_, err = p.Locator(".salary").TextContent()
	assert.True(t, errors.Is(err, errors.ErrTypeNotFound))

	_, err = p.Locator(".salary").GetAttribute("href")
	assert.True(t, errors.Is(err, errors.ErrTypeNotFound))

	none, err := p.Locator(".salary").All()
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDocumentPageLocatorIsLazy(t *testing.T) {
	ctx := context.Background()
	p := NewFixturePage(map[string]string{
		"https://example.com/a": `<p class="name">first</p>`,
		"https://example.com/b": `<p class="name">second</p>`,
	})

	name := p.Locator(".name")
	require.NoError(t, p.Goto(ctx, "https://example.com/a"))
	text, err := name.TextContent()
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	require.NoError(t, p.Goto(ctx, "https://example.com/b"))
	text, err = name.TextContent()
	require.NoError(t, err)
	assert.Equal(t, "second", text)
}

func TestDocumentPageGotoErrors(t *testing.T) {
	p := NewFixturePage(map[string]string{})

	err := p.Goto(context.Background(), "https://example.com/missing")
	assert.True(t, errors.Is(err, errors.ErrTypeNotFound))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Goto(ctx, "https://example.com/missing"), context.Canceled)

	_, err = p.Locator("body").TextContent()
	assert.Error(t, err)
	assert.NoError(t, p.Close())
}
