package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deusflow/opinions/internal/app"
	"github.com/deusflow/opinions/internal/browser"
	"github.com/deusflow/opinions/internal/config"
	"github.com/deusflow/opinions/internal/logger"
	"github.com/deusflow/opinions/internal/retry"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "opinions",
		Short:         "Scrape opinion articles, translate their headlines and report repeated words.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.Flags().String("browser", "chrome", "page loader: "+strings.Join(config.Browsers, "|"))
	cmd.Flags().Bool("headless", true, "run the browser without a window")
	cmd.Flags().Int("attempts", 1, "re-run the whole scrape this many times on failure")
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(".env", cmd.Flags())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Debug)
	log.Info("starting", "browser", cfg.Browser, "base_url", cfg.BaseURL, "max_articles", cfg.MaxArticles)

	return retry.WithRetry(cmd.Context(), retry.Config{
		MaxAttempts: cfg.RunAttempts,
		Delay:       cfg.RunRetryDelay,
		Retryable: func(err error) bool {
			return !errors.Is(err, browser.ErrUnsupportedBrowser) && !errors.Is(err, context.Canceled)
		},
	}, log, func(attempt int) error {
		if attempt > 1 {
			log.Info("re-running", "attempt", attempt)
		}
		return app.Run(cmd.Context(), cfg, log, cmd.OutOrStdout())
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
