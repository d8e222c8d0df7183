// Package translate translates short texts through a chain of providers,
// falling back to the original text when every provider fails.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sony/gobreaker"

	"github.com/deusflow/opinions/internal/cache"
	"github.com/deusflow/opinions/internal/ratelimit"
)

var (
	ErrMissingKey        = errors.New("API key not set")
	ErrEmptyTranslation  = errors.New("empty translation")
	ErrNoProviders       = errors.New("no translation providers configured")
	errTranslationFailed = errors.New("all translation providers failed")
)

const maxTextRunes = 4000

// Provider is one translation backend.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Result carries a translation, or the original text together with the
// reason translation failed.
type Result struct {
	Text     string // translated text, or Original when Err != nil
	Original string
	Provider string
	Cached   bool
	Err      error
}

// Failed reports whether Text is the untranslated original.
func (r Result) Failed() bool { return r.Err != nil }

type Options struct {
	Cache            *cache.Cache // nil disables memoization
	CacheTTL         time.Duration
	Budget           *ratelimit.Budget // nil means unlimited
	BreakerThreshold uint32            // consecutive failures that open a provider's breaker
	BreakerTimeout   time.Duration
}

type member struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
}

// Client tries providers in order, first non-empty answer wins.
type Client struct {
	members []member
	opts    Options
	log     *slog.Logger
}

func NewClient(providers []Provider, opts Options, log *slog.Logger) *Client {
	if opts.BreakerThreshold == 0 {
		opts.BreakerThreshold = 3
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = time.Minute
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}

	c := &Client{opts: opts, log: log}
	for _, p := range providers {
		threshold := opts.BreakerThreshold
		c.members = append(c.members, member{
			provider: p,
			breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:    p.Name(),
				Timeout: opts.BreakerTimeout,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures >= threshold
				},
				OnStateChange: func(name string, from, to gobreaker.State) {
					log.Warn("translation provider state changed", "provider", name, "from", from.String(), "to", to.String())
				},
			}),
		})
	}
	return c
}

// Providers returns provider names in try order.
func (c *Client) Providers() []string {
	names := make([]string, len(c.members))
	for i, m := range c.members {
		names[i] = m.provider.Name()
	}
	return names
}

// Translate never fails outright: on error the Result holds the original
// text and the reason.
func (c *Client) Translate(ctx context.Context, text, from, to string) Result {
	res := Result{Text: text, Original: text}
	if strings.TrimSpace(text) == "" {
		return res
	}

	key := cache.Key(from, to, text)
	if c.opts.Cache != nil {
		if v, ok := c.opts.Cache.Get(key); ok {
			res.Text, res.Cached = v, true
			return res
		}
	}

	if len(c.members) == 0 {
		res.Err = ErrNoProviders
		c.log.Warn("translation failed, using original", "err", res.Err)
		return res
	}

	input := truncateRunes(text, maxTextRunes)

	var errs []error
	for _, m := range c.members {
		name := m.provider.Name()

		if c.opts.Budget != nil {
			if err := c.opts.Budget.Use(name); err != nil {
				errs = append(errs, err)
				continue
			}
		}

		out, err := m.breaker.Execute(func() (interface{}, error) {
			s, err := m.provider.Translate(ctx, input, from, to)
			if err != nil {
				return nil, err
			}
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, ErrEmptyTranslation
			}
			return s, nil
		})
		if err != nil {
			c.log.Warn("translation provider failed", "provider", name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		res.Text = out.(string)
		res.Provider = name
		if c.opts.Cache != nil {
			c.opts.Cache.Set(key, res.Text, c.opts.CacheTTL)
		}
		c.log.Debug("translated", "provider", name, "from", from, "to", to)
		return res
	}

	res.Err = fmt.Errorf("%w: %w", errTranslationFailed, errors.Join(errs...))
	c.log.Warn("all translation services failed, using original", "from", from, "to", to, "err", res.Err)
	return res
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
