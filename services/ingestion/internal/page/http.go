package page

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"jobbots/common/errors"

	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

type HTTPOptions struct {
	Timeout   time.Duration
	UserAgent string
}

// NewHTTPClient returns a resty client preset for fetching site pages.
func NewHTTPClient(opts HTTPOptions) *resty.Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetHeader("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
}

// HTTPLoader fetches pages with client; no script runs on them.
func HTTPLoader(client *resty.Client) Loader {
	return func(ctx context.Context, url string) ([]byte, string, error) {
		res, err := client.R().SetContext(ctx).Get(url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", errors.Timeout("fetching "+url, err)
			}
			return nil, "", errors.Unavailable("fetching "+url, err)
		}

		finalURL := url
		if res.RawResponse != nil && res.RawResponse.Request != nil {
			finalURL = res.RawResponse.Request.URL.String()
		}

		if err := statusError(url, res.StatusCode()); err != nil {
			return nil, "", err
		}
		return res.Body(), finalURL, nil
	}
}

func statusError(url string, status int) error {
	msg := fmt.Sprintf("fetching %s: status %d", url, status)
	switch {
	case status < 400:
		return nil
	case status == http.StatusNotFound:
		return errors.NotFound(msg, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.Unauthorized(msg, nil)
	case status == http.StatusTooManyRequests:
		return errors.RateLimit(msg, nil)
	case status >= 500:
		return errors.Unavailable(msg, nil)
	default:
		return errors.Internal(msg, nil)
	}
}

// NewHTTPPage is a DocumentPage fetching over HTTP.
func NewHTTPPage(opts HTTPOptions) *DocumentPage {
	return NewDocumentPage(HTTPLoader(NewHTTPClient(opts)))
}
