package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/deusflow/opinions/internal/analyzer"
	"github.com/deusflow/opinions/internal/images"
	"github.com/deusflow/opinions/internal/metrics"
	"github.com/deusflow/opinions/internal/scraper"
	"github.com/deusflow/opinions/internal/translate"
)

const excerptRunes = 200

type ArticleLister interface {
	ListArticles(ctx context.Context, url string) []string
}

type ArticleExtractor interface {
	Extract(ctx context.Context, url string) scraper.Article
}

type Translator interface {
	Translate(ctx context.Context, text, from, to string) translate.Result
}

type ImageSaver interface {
	Save(ctx context.Context, imageRef, label string) images.Result
}

// Deps are the collaborators of a Runner. Feed may be nil.
type Deps struct {
	Source     ArticleLister
	Feed       ArticleLister
	Extractor  ArticleExtractor
	Translator Translator
	Images     ImageSaver
}

// Settings is the part of the configuration a Runner reads.
type Settings struct {
	BaseURL         string
	FeedURL         string
	MaxArticles     int
	SourceLang      string
	TargetLang      string
	MinWordCount    int
	StopwordProfile analyzer.Profile
}

// Report is what one run produced.
type Report struct {
	Links           []string
	Titles          []string
	TranslatedTitle []string
	Frequent        analyzer.FrequencyTable
}

// Runner processes the articles one at a time and prints the report.
type Runner struct {
	deps Deps
	set  Settings
	out  io.Writer
	log  *slog.Logger
}

func NewRunner(deps Deps, set Settings, out io.Writer, log *slog.Logger) *Runner {
	return &Runner{deps: deps, set: set, out: out, log: log}
}

func (r *Runner) Run(ctx context.Context, m *metrics.Run) Report {
	var rep Report

	links, fromFeed := r.listArticles(ctx)
	m.SetListed(len(links), fromFeed)
	rep.Links = links

	if len(links) == 0 {
		fmt.Fprintln(r.out, "Failed to retrieve any article links. Exiting.")
		return rep
	}

	if len(links) < r.set.MaxArticles {
		fmt.Fprintf(r.out, "Warning: Only found %d articles (expected %d). Proceeding with available articles.\n", len(links), r.set.MaxArticles)
	}

	srcName := translate.LanguageName(r.set.SourceLang)
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			r.log.Warn("run interrupted", "err", err)
			m.SetError(err)
			break
		}

		article := r.deps.Extractor.Extract(ctx, link)
		if !article.HasTitle() {
			fmt.Fprintln(r.out, "\n--- SKIPPING ARTICLE ---")
			fmt.Fprintf(r.out, "Failed to scrape title for link: %s. Moving to next.\n", link)
			m.IncrementSkipped()
			continue
		}
		m.IncrementScraped()

		fmt.Fprintln(r.out, "\n--- ARTICLE ---")
		fmt.Fprintf(r.out, "Title (%s): %s\n", srcName, article.Title)

		res := r.deps.Translator.Translate(ctx, article.Title, r.set.SourceLang, r.set.TargetLang)
		m.RecordTranslation(res.Failed(), res.Cached)
		if res.Failed() {
			r.log.Warn("headline left untranslated", "title", article.Title, "err", res.Err)
			fmt.Fprintf(r.out, "Translated Title: %s [untranslated]\n", res.Text)
		} else {
			fmt.Fprintf(r.out, "Translated Title: %s\n", res.Text)
		}
		rep.Titles = append(rep.Titles, article.Title)
		rep.TranslatedTitle = append(rep.TranslatedTitle, res.Text)

		if article.Body != "" {
			fmt.Fprintf(r.out, "Content (%s, excerpt): %s...\n", srcName, excerpt(article.Body, excerptRunes))
		} else {
			fmt.Fprintln(r.out, "Content: [Not available — article may be behind a paywall]")
		}

		img := r.deps.Images.Save(ctx, article.ImageURL, article.Title)
		m.RecordImage(img.Skipped, img.Err)
	}

	rep.Frequent = analyzer.Analyze(strings.Join(rep.TranslatedTitle, " "), r.set.MinWordCount, r.set.StopwordProfile)
	m.SetFrequentWords(rep.Frequent.Len())
	r.printAnalysis(rep.Frequent)
	return rep
}

// listArticles asks the listing page first and the feed when that yields
// nothing.
func (r *Runner) listArticles(ctx context.Context) ([]string, bool) {
	links := r.deps.Source.ListArticles(ctx, r.set.BaseURL)
	if len(links) > 0 || r.deps.Feed == nil || r.set.FeedURL == "" {
		return links, false
	}

	r.log.Warn("listing page gave no links, trying feed", "feed", r.set.FeedURL)
	links = r.deps.Feed.ListArticles(ctx, r.set.FeedURL)
	return links, len(links) > 0
}

func (r *Runner) printAnalysis(table analyzer.FrequencyTable) {
	minCount := r.set.MinWordCount
	if minCount < 1 {
		minCount = 1
	}
	fmt.Fprintf(r.out, "\n--- ANALYSIS (words repeated at least %d times across translated headers) ---\n", minCount)

	if table.Len() == 0 {
		fmt.Fprintln(r.out, "No words appeared frequently enough for analysis.")
		return
	}
	for _, wc := range table {
		fmt.Fprintf(r.out, "- %s: %d times\n", wc.Word, wc.Count)
	}
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
