package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Kind names a way of loading pages.
type Kind string

const (
	Chrome  Kind = "chrome"
	Firefox Kind = "firefox"
	Edge    Kind = "edge"
	HTTP    Kind = "http"
)

// ErrUnsupportedBrowser is returned for browsers that cannot be driven
// over the DevTools protocol.
var ErrUnsupportedBrowser = errors.New("unsupported browser")

// ParseKind maps a --browser value to a Kind.
func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case Chrome, Firefox, Edge, HTTP:
		return k, nil
	case "":
		return Chrome, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBrowser, name)
	}
}

var edgeBinaries = []string{
	"microsoft-edge",
	"microsoft-edge-stable",
	"msedge",
	"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
}

// Options configures New.
type Options struct {
	Kind               Kind
	Bin                string // explicit browser binary, overrides lookup
	Headless           bool
	PageLoadTimeout    time.Duration
	ElementWaitTimeout time.Duration
	ConsentXPath       string // clicked once, after the first navigation
}

// DefaultConsentXPath matches the cookie-consent button on Spanish and
// English front pages.
const DefaultConsentXPath = "//button[contains(., 'Accept') or contains(., 'Aceptar')]"

// New starts the loader selected by opts.Kind. A failure here is the only
// fatal error of a run.
func New(ctx context.Context, opts Options, log *slog.Logger) (Loader, error) {
	switch opts.Kind {
	case HTTP:
		return NewHTTPLoader(opts.PageLoadTimeout, log), nil
	case Firefox:
		return nil, fmt.Errorf("%w: firefox has no DevTools protocol support", ErrUnsupportedBrowser)
	case Chrome, Edge, "":
		return Launch(ctx, opts, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBrowser, opts.Kind)
	}
}

// Session is a single browser tab reused for the whole run.
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	pageLoadTimeout    time.Duration
	elementWaitTimeout time.Duration
	consentXPath       string
	consentTried       bool
	log                *slog.Logger
}

// Launch starts a Chromium-family browser and opens one tab.
func Launch(ctx context.Context, opts Options, log *slog.Logger) (*Session, error) {
	bin, err := resolveBin(opts)
	if err != nil {
		return nil, err
	}

	l := launcher.New().Context(ctx).Headless(opts.Headless)
	if bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch %s: %w", opts.Kind, err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to %s: %w", opts.Kind, err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	log.Info("browser session started", "browser", opts.Kind, "headless", opts.Headless)
	return &Session{
		launcher:           l,
		browser:            b,
		page:               page,
		pageLoadTimeout:    opts.PageLoadTimeout,
		elementWaitTimeout: opts.ElementWaitTimeout,
		consentXPath:       opts.ConsentXPath,
		log:                log,
	}, nil
}

func resolveBin(opts Options) (string, error) {
	if opts.Bin != "" {
		return opts.Bin, nil
	}
	switch opts.Kind {
	case Edge:
		for _, name := range edgeBinaries {
			if path, err := exec.LookPath(name); err == nil {
				return path, nil
			}
		}
		return "", fmt.Errorf("%w: edge binary not found, set BROWSER_BIN", ErrUnsupportedBrowser)
	default:
		// Empty lets the launcher download a Chromium build.
		if path, ok := launcher.LookPath(); ok {
			return path, nil
		}
		return "", nil
	}
}

func (s *Session) Open(ctx context.Context, rawURL, waitSelector string) (*Page, error) {
	s.log.Debug("navigating", "url", rawURL)

	p := s.page.Context(ctx).Timeout(s.pageLoadTimeout)
	defer p.CancelTimeout()

	if err := p.Navigate(rawURL); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load %s: %w", rawURL, err)
	}

	if s.consentXPath != "" && !s.consentTried {
		s.consentTried = true
		s.DismissConsent(ctx, s.consentXPath)
	}

	if waitSelector != "" {
		w := s.page.Context(ctx).Timeout(s.elementWaitTimeout)
		_, err := w.Element(waitSelector)
		w.CancelTimeout()
		if err != nil {
			return nil, fmt.Errorf("wait for %q: %w: %v", waitSelector, ErrElementNotFound, err)
		}
	}

	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}

	final := rawURL
	if info, err := s.page.Context(ctx).Info(); err == nil && info.URL != "" {
		final = info.URL
	}
	return NewPage(final, html)
}

// DismissConsent clicks the first element matching xpath, if one shows
// up within the element wait timeout.
func (s *Session) DismissConsent(ctx context.Context, xpath string) bool {
	w := s.page.Context(ctx).Timeout(s.elementWaitTimeout)
	defer w.CancelTimeout()

	el, err := w.ElementX(xpath)
	if err != nil {
		s.log.Info("no cookie popup was detected or it timed out")
		return false
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		s.log.Warn("cookie popup click failed", "err", err)
		return false
	}
	s.log.Info("cookie popup handled")
	return true
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() error {
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.launcher.Cleanup()
	s.browser = nil
	return err
}
