package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// HTTPLoader fetches pages without executing scripts.
type HTTPLoader struct {
	client *resty.Client
	log    *slog.Logger
}

func NewHTTPLoader(timeout time.Duration, log *slog.Logger) *HTTPLoader {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")
	return &HTTPLoader{client: client, log: log}
}

func (l *HTTPLoader) Open(ctx context.Context, rawURL, waitSelector string) (*Page, error) {
	l.log.Debug("fetching page", "url", rawURL)

	resp, err := l.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode())
	}

	final := rawURL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL.String()
	}

	page, err := NewPage(final, string(resp.Body()))
	if err != nil {
		return nil, err
	}
	if waitSelector != "" && page.Doc.Find(waitSelector).Length() == 0 {
		return nil, fmt.Errorf("wait for %q: %w", waitSelector, ErrElementNotFound)
	}
	return page, nil
}

func (l *HTTPLoader) Close() error { return nil }
