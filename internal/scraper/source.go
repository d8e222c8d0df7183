package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/opinions/internal/browser"
)

const listingSelector = "article h2 a"

// Source lists article URLs from a section front page.
type Source struct {
	loader browser.Loader
	suffix string
	limit  int
	log    *slog.Logger
}

// NewSource returns a Source keeping at most limit links ending in suffix
// (empty suffix accepts any path).
func NewSource(loader browser.Loader, suffix string, limit int, log *slog.Logger) *Source {
	return &Source{loader: loader, suffix: suffix, limit: limit, log: log}
}

// ListArticles returns up to the configured number of unique article URLs
// found on baseURL. Any failure yields an empty slice.
func (s *Source) ListArticles(ctx context.Context, baseURL string) []string {
	s.log.Info("opening listing", "url", baseURL)

	page, err := s.loader.Open(ctx, baseURL, listingSelector)
	if err != nil {
		s.log.Error("timed out waiting for article links to load", "url", baseURL, "err", err)
		return []string{}
	}

	var hrefs []string
	page.Doc.Find(listingSelector).Each(func(i int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
			hrefs = append(hrefs, href)
		}
	})

	links := FilterLinks(page.URL, hrefs, s.suffix, s.limit)
	s.log.Info("collected unique article links", "count", len(links))
	return links
}

// FilterLinks resolves hrefs against base and keeps, in order, the first
// limit unique links that are http(s), on the same site as base, carry no
// fragment and end with suffix.
func FilterLinks(base *url.URL, hrefs []string, suffix string, limit int) []string {
	out := []string{}
	seen := make(map[string]struct{})

	for _, href := range hrefs {
		if limit > 0 && len(out) >= limit {
			break
		}
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			continue
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		if u.Fragment != "" || strings.HasSuffix(href, "#") {
			continue
		}
		if base != nil && !sameSite(base.Hostname(), u.Hostname()) {
			continue
		}
		if suffix != "" && !strings.HasSuffix(u.Path, suffix) {
			continue
		}

		link := u.String()
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}

func sameSite(a, b string) bool {
	a = strings.TrimPrefix(strings.ToLower(a), "www.")
	b = strings.TrimPrefix(strings.ToLower(b), "www.")
	return a != "" && a == b
}
