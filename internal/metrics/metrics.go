// Package metrics counts what happened during one run and prints a summary.
package metrics

import (
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

type Run struct {
	mu sync.RWMutex

	// Counters
	ArticlesListed     int
	ArticlesScraped    int
	ArticlesSkipped    int
	TranslationsOK     int
	TranslationsFailed int
	TranslationsCached int
	ImagesSaved        int
	ImagesSkipped      int
	ImagesFailed       int
	FrequentWords      int
	UsedFeedFallback   bool

	// Timings
	StartedAt time.Time
	Duration  time.Duration

	// Status
	LastError string
}

func NewRun() *Run {
	return &Run{StartedAt: time.Now()}
}

func (r *Run) SetListed(n int, fromFeed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ArticlesListed = n
	r.UsedFeedFallback = fromFeed
}

func (r *Run) IncrementScraped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ArticlesScraped++
}

func (r *Run) IncrementSkipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ArticlesSkipped++
}

// RecordTranslation counts one translation attempt.
func (r *Run) RecordTranslation(failed, cached bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case failed:
		r.TranslationsFailed++
	case cached:
		r.TranslationsOK++
		r.TranslationsCached++
	default:
		r.TranslationsOK++
	}
}

// RecordImage counts one image save.
func (r *Run) RecordImage(skipped bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case skipped:
		r.ImagesSkipped++
	case err != nil:
		r.ImagesFailed++
	default:
		r.ImagesSaved++
	}
}

func (r *Run) SetFrequentWords(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FrequentWords = n
}

func (r *Run) SetError(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LastError = err.Error()
}

// Finish stops the clock.
func (r *Run) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Duration = time.Since(r.StartedAt)
}

func (r *Run) GetStats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]interface{}{
		"articles_listed":     r.ArticlesListed,
		"articles_scraped":    r.ArticlesScraped,
		"articles_skipped":    r.ArticlesSkipped,
		"translations_ok":     r.TranslationsOK,
		"translations_failed": r.TranslationsFailed,
		"translations_cached": r.TranslationsCached,
		"images_saved":        r.ImagesSaved,
		"images_skipped":      r.ImagesSkipped,
		"images_failed":       r.ImagesFailed,
		"frequent_words":      r.FrequentWords,
		"feed_fallback":       r.UsedFeedFallback,
		"duration_ms":         r.Duration.Milliseconds(),
		"last_error":          r.LastError,
	}
}

// Render writes the summary table to w.
func (r *Run) Render(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source := "listing page"
	if r.UsedFeedFallback {
		source = "feed"
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Run summary")
	t.AppendHeader(table.Row{"Stage", "OK", "Skipped", "Failed"})
	t.AppendRows([]table.Row{
		{"articles (" + source + ")", r.ArticlesScraped, r.ArticlesSkipped, r.ArticlesListed - r.ArticlesScraped - r.ArticlesSkipped},
		{"translations", r.TranslationsOK, "", r.TranslationsFailed},
		{"images", r.ImagesSaved, r.ImagesSkipped, r.ImagesFailed},
	})
	t.AppendSeparator()
	t.AppendRow(table.Row{"cached translations", r.TranslationsCached, "", ""})
	t.AppendRow(table.Row{"frequent words", r.FrequentWords, "", ""})
	t.AppendRow(table.Row{"duration", r.Duration.Round(time.Millisecond).String(), "", ""})
	if r.LastError != "" {
		t.AppendRow(table.Row{"last error", r.LastError, "", ""})
	}
	t.Render()
}
