// Package images downloads article images to a local directory.
package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/deusflow/opinions/internal/scraper"
)

// ErrNoImage marks a save request without an image reference.
var ErrNoImage = errors.New("no image URL provided")

const (
	fallbackName = "article_image"
	extension    = ".jpg"
	maxSizeBytes = 10 * 1024 * 1024
)

var (
	nonWord      = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	repeatedSeps = regexp.MustCompile(`_+`)
)

// Result of one save. Skipped is set when there was nothing to download.
type Result struct {
	Path    string
	Skipped bool
	Err     error
}

func (r Result) Saved() bool { return !r.Skipped && r.Err == nil }

type Fetcher struct {
	client *resty.Client
	dir    string
	log    *slog.Logger
}

func NewFetcher(dir string, timeout time.Duration, log *slog.Logger) *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "Mozilla/5.0 (compatible; opinions/1.0)"),
		dir: dir,
		log: log,
	}
}

// Save downloads imageRef to <dir>/<SanitizeLabel(label)>.jpg. The file
// keeps the .jpg extension whatever the source format is.
func (f *Fetcher) Save(ctx context.Context, imageRef, label string) Result {
	if strings.TrimSpace(imageRef) == "" {
		f.log.Info("Skipping download, no image URL provided.", "label", label)
		return Result{Skipped: true, Err: ErrNoImage}
	}

	path := filepath.Join(f.dir, SanitizeLabel(label)+extension)
	if err := f.download(ctx, imageRef, path); err != nil {
		f.log.Warn("failed to download image", "url", imageRef, "err", err)
		return Result{Path: path, Err: err}
	}

	f.log.Info("image saved", "path", path)
	return Result{Path: path}
}

func (f *Fetcher) download(ctx context.Context, imageRef, path string) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	resp, err := f.client.R().SetContext(ctx).Get(imageRef)
	if err != nil {
		return fmt.Errorf("HTTP error: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("image request returned status: %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) == 0 {
		return errors.New("empty image body")
	}
	if len(body) > maxSizeBytes {
		return fmt.Errorf("image exceeds maximum size of %d bytes", maxSizeBytes)
	}

	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// SanitizeLabel turns a headline into a file name: lower-cased, every run
// of characters other than letters, digits and underscore replaced by a
// single underscore, edges trimmed.
func SanitizeLabel(label string) string {
	if label == scraper.TitleNotFound {
		return fallbackName
	}
	s := nonWord.ReplaceAllString(strings.ToLower(label), "_")
	s = repeatedSeps.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return fallbackName
	}
	return s
}
