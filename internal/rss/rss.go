// Package rss lists article URLs from a section feed. It backs up the
// listing-page source when the front page yields nothing.
package rss

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/opinions/internal/scraper"
)

// FeedSource reads item links from an RSS/Atom feed and keeps those that
// belong to the site of baseURL.
type FeedSource struct {
	parser  *gofeed.Parser
	baseURL string
	suffix  string
	limit   int
	timeout time.Duration
	log     *slog.Logger
}

func NewFeedSource(baseURL, suffix string, limit int, timeout time.Duration, log *slog.Logger) *FeedSource {
	return &FeedSource{
		parser:  gofeed.NewParser(),
		baseURL: baseURL,
		suffix:  suffix,
		limit:   limit,
		timeout: timeout,
		log:     log,
	}
}

// ListArticles downloads and parses feedURL. Errors are logged and yield
// an empty slice.
func (s *FeedSource) ListArticles(ctx context.Context, feedURL string) []string {
	if feedURL == "" {
		return []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		s.log.Error("error parsing feed", "url", feedURL, "err", err)
		return []string{}
	}

	hrefs := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link != "" {
			hrefs = append(hrefs, item.Link)
		}
	}

	base, err := url.Parse(s.baseURL)
	if err != nil {
		s.log.Error("invalid base url", "url", s.baseURL, "err", err)
		return []string{}
	}

	links := scraper.FilterLinks(base, hrefs, s.suffix, s.limit)
	s.log.Info("loaded feed links", "url", feedURL, "items", len(feed.Items), "kept", len(links))
	return links
}
