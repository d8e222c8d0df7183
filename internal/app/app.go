// Package app wires the collaborators of one scraping run together.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/deusflow/opinions/internal/analyzer"
	"github.com/deusflow/opinions/internal/browser"
	"github.com/deusflow/opinions/internal/cache"
	"github.com/deusflow/opinions/internal/config"
	"github.com/deusflow/opinions/internal/gemini"
	"github.com/deusflow/opinions/internal/images"
	"github.com/deusflow/opinions/internal/logger"
	"github.com/deusflow/opinions/internal/metrics"
	"github.com/deusflow/opinions/internal/ratelimit"
	"github.com/deusflow/opinions/internal/rss"
	"github.com/deusflow/opinions/internal/scraper"
	"github.com/deusflow/opinions/internal/translate"
)

// Run starts the page loader, processes the articles and prints the
// report to out. Only a failure to start the loader is returned as an
// error; everything else degrades and is reported.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger, out io.Writer) error {
	kind, err := browser.ParseKind(cfg.Browser)
	if err != nil {
		return err
	}

	loader, err := browser.New(ctx, browser.Options{
		Kind:               kind,
		Bin:                cfg.BrowserBin,
		Headless:           cfg.Headless,
		PageLoadTimeout:    cfg.PageLoadTimeout,
		ElementWaitTimeout: cfg.ElementWaitTimeout,
		ConsentXPath:       browser.DefaultConsentXPath,
	}, logger.Component(log, "browser"))
	if err != nil {
		return fmt.Errorf("failed to start %s session: %w", kind, err)
	}
	defer func() {
		if err := loader.Close(); err != nil {
			log.Warn("failed to close browser", "err", err)
		}
		fmt.Fprintln(out, "\nExecution finished and browser closed.")
	}()

	budget := ratelimit.NewBudget(cfg.MaxTranslationRequests, nil, logger.Component(log, "ratelimit"))
	providers, closeProviders := buildProviders(ctx, cfg, logger.Component(log, "translate"))
	defer closeProviders()

	translator := translate.NewClient(providers, translate.Options{
		Cache:    cache.New(),
		CacheTTL: cfg.TranslationCacheTTL,
		Budget:   budget,
	}, logger.Component(log, "translate"))

	var feed ArticleLister
	if cfg.FeedURL != "" {
		feed = rss.NewFeedSource(cfg.BaseURL, cfg.ArticleLinkSuffix, cfg.MaxArticles, cfg.HTTPTimeout, logger.Component(log, "rss"))
	}

	runner := NewRunner(Deps{
		Source:     scraper.NewSource(loader, cfg.ArticleLinkSuffix, cfg.MaxArticles, logger.Component(log, "source")),
		Feed:       feed,
		Extractor:  scraper.NewExtractor(loader, logger.Component(log, "extractor")),
		Translator: translator,
		Images:     images.NewFetcher(cfg.ImageDir, cfg.HTTPTimeout, logger.Component(log, "images")),
	}, SettingsFrom(cfg), out, logger.Component(log, "app"))

	m := metrics.NewRun()
	runner.Run(ctx, m)
	m.Finish()

	budget.LogStats()
	fmt.Fprintln(out)
	m.Render(out)
	return nil
}

// SettingsFrom extracts the runner settings from cfg.
func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		BaseURL:         cfg.BaseURL,
		FeedURL:         cfg.FeedURL,
		MaxArticles:     cfg.MaxArticles,
		SourceLang:      cfg.SourceLang,
		TargetLang:      cfg.TargetLang,
		MinWordCount:    cfg.MinWordCount,
		StopwordProfile: analyzer.ParseProfile(cfg.StopwordProfile),
	}
}

// buildProviders returns the configured translation providers in try
// order: RapidAPI, Gemini, OpenAI, then the free Google endpoint.
func buildProviders(ctx context.Context, cfg *config.Config, log *slog.Logger) ([]translate.Provider, func()) {
	var providers []translate.Provider
	closers := []func(){}

	if cfg.RapidAPIKey != "" {
		providers = append(providers, translate.NewRapidAPIProvider(cfg.RapidAPIHost, cfg.RapidAPIKey, cfg.HTTPTimeout))
	} else {
		log.Warn("RAPIDAPI_KEY not set, RapidAPI translation disabled")
	}

	if cfg.GeminiAPIKey != "" {
		g, err := gemini.NewProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Error("gemini provider unavailable", "err", err)
		} else {
			providers = append(providers, g)
			closers = append(closers, func() {
				if err := g.Close(); err != nil {
					log.Warn("failed to close gemini client", "err", err)
				}
			})
		}
	}

	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, translate.NewOpenAIProvider(cfg.OpenAIAPIKey, ""))
	}

	if cfg.GoogleFreeTranslate {
		providers = append(providers, translate.NewGoogleFreeProvider(cfg.HTTPTimeout))
	}

	if len(providers) == 0 {
		log.Warn("no translation provider configured, headlines will stay untranslated")
	}

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	log.Info("translation providers", "order", names)

	return providers, func() {
		for _, c := range closers {
			c()
		}
	}
}
