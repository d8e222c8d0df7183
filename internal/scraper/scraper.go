// Package scraper turns section and article pages into article URLs and
// (title, body, image) triples.
package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/deusflow/opinions/internal/browser"
)

// TitleNotFound marks an article page without a usable headline. It is
// distinct from the empty title of a page that failed to load.
const TitleNotFound = "Title not found"

const articleSelector = "article"

// Article is the extracted content of one article page.
type Article struct {
	URL      string
	Title    string // "" when the page could not be loaded, TitleNotFound when it had no headline
	Body     string
	ImageURL string // "" when absent
}

// HasTitle reports whether a usable headline was extracted.
func (a Article) HasTitle() bool {
	return a.Title != "" && a.Title != TitleNotFound
}

// Strategy extracts one field from a loaded page, returning "" when it
// finds nothing.
type Strategy func(p *browser.Page) string

// FirstNonEmpty applies strategies in order and returns the first
// non-empty result.
func FirstNonEmpty(p *browser.Page, strategies []Strategy) string {
	for _, s := range strategies {
		if v := strings.TrimSpace(s(p)); v != "" {
			return v
		}
	}
	return ""
}

// Extractor loads article pages and extracts their fields.
type Extractor struct {
	loader browser.Loader
	log    *slog.Logger

	titles []Strategy
	images []Strategy
}

func NewExtractor(loader browser.Loader, log *slog.Logger) *Extractor {
	return &Extractor{
		loader: loader,
		log:    log,
		titles: []Strategy{
			Selector("h1"),
			MetaContent("og:title"),
		},
		images: []Strategy{
			AttrURL("article img", "src"),
			MetaURL("og:image"),
		},
	}
}

// Extract never fails: a page that cannot be loaded yields an Article
// with only URL set, and each missing field degrades on its own.
func (e *Extractor) Extract(ctx context.Context, url string) Article {
	e.log.Info("scraping article", "url", url)

	page, err := e.loader.Open(ctx, url, articleSelector)
	if err != nil {
		e.log.Error("article page did not load correctly, skipping", "url", url, "err", err)
		return Article{URL: url}
	}

	a := Article{URL: url}
	a.Title = FirstNonEmpty(page, e.titles)
	if a.Title == "" {
		a.Title = TitleNotFound
	}

	a.Body = FirstNonEmpty(page, BodyStrategies(a.Title))
	a.ImageURL = FirstNonEmpty(page, e.images)
	if a.ImageURL == "" {
		e.log.Info("no image found for this article", "url", url)
	}
	return a
}

// BodyStrategies lists body extractors from most to least specific. The
// last one falls back to all visible text, with title removed from the
// front.
func BodyStrategies(title string) []Strategy {
	return []Strategy{
		Paragraphs("article p"),
		Paragraphs(".article-body p"),
		Paragraphs(".article-content p"),
		Paragraphs("main p"),
		Readable,
		VisibleText(title),
	}
}

// Selector returns the trimmed text of the first element matching sel.
func Selector(sel string) Strategy {
	return func(p *browser.Page) string {
		return normalizeSpace(p.Doc.Find(sel).First().Text())
	}
}

// Paragraphs joins the non-blank text of every element matching sel.
func Paragraphs(sel string) Strategy {
	return func(p *browser.Page) string {
		var parts []string
		p.Doc.Find(sel).Each(func(i int, s *goquery.Selection) {
			if text := normalizeSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		return strings.Join(parts, " ")
	}
}

// MetaContent reads <meta property=name content=...>.
func MetaContent(name string) Strategy {
	return func(p *browser.Page) string {
		content, _ := p.Doc.Find(`meta[property="` + name + `"]`).First().Attr("content")
		return normalizeSpace(content)
	}
}

// MetaURL is MetaContent resolved against the page URL.
func MetaURL(name string) Strategy {
	return func(p *browser.Page) string {
		return p.Resolve(MetaContent(name)(p))
	}
}

// AttrURL resolves attribute attr of the first element matching sel.
func AttrURL(sel, attr string) Strategy {
	return func(p *browser.Page) string {
		v, ok := p.Doc.Find(sel).First().Attr(attr)
		if !ok {
			return ""
		}
		return p.Resolve(v)
	}
}

// Readable runs the readability algorithm over the raw page.
func Readable(p *browser.Page) string {
	article, err := readability.FromReader(strings.NewReader(p.HTML), p.URL)
	if err != nil {
		return ""
	}
	return normalizeSpace(article.TextContent)
}

// VisibleText returns the text of <body> without scripts and styles, with
// title stripped from the front when present.
func VisibleText(title string) Strategy {
	return func(p *browser.Page) string {
		body := p.Doc.Find("body").Clone()
		body.Find("script, style, noscript, template").Remove()
		text := normalizeSpace(body.Text())

		if title != "" && title != TitleNotFound {
			text = strings.TrimSpace(strings.TrimPrefix(text, normalizeSpace(title)))
		}
		return text
	}
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
