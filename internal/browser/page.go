// Package browser loads web pages, either through a real browser session
// driven over the DevTools protocol or through plain HTTP requests.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrElementNotFound is returned when a page loads but the awaited
// element never appears.
var ErrElementNotFound = errors.New("element not found")

// Page is a loaded document together with the URL it was served from.
type Page struct {
	URL  *url.URL
	HTML string
	Doc  *goquery.Document
}

// NewPage parses html served at rawURL.
func NewPage(rawURL, html string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}
	doc.Url = u
	return &Page{URL: u, HTML: html, Doc: doc}, nil
}

// Resolve turns ref into an absolute URL relative to the page. It
// returns "" for refs that cannot be parsed.
func (p *Page) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if p.URL == nil {
		return u.String()
	}
	return p.URL.ResolveReference(u).String()
}

// Loader opens pages. Open waits for waitSelector (CSS) to be present
// when it is non-empty.
type Loader interface {
	Open(ctx context.Context, rawURL, waitSelector string) (*Page, error)
	Close() error
}
