// Package config loads run settings from defaults, an optional .env file,
// the environment and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Browser choices accepted by BROWSER / --browser.
var Browsers = []string{"chrome", "firefox", "edge", "http"}

type Config struct {
	// Translation settings
	RapidAPIKey            string
	RapidAPIHost           string
	GeminiAPIKey           string
	GeminiModel            string
	OpenAIAPIKey           string
	GoogleFreeTranslate    bool
	SourceLang             string
	TargetLang             string
	MaxTranslationRequests int // per provider, 0 = unlimited
	TranslationCacheTTL    time.Duration

	// Scraper settings
	BaseURL           string
	FeedURL           string // fallback source; empty disables it
	MaxArticles       int
	ArticleLinkSuffix string

	// Browser settings
	Browser            string // chrome | firefox | edge | http
	BrowserBin         string
	Headless           bool
	PageLoadTimeout    time.Duration
	ElementWaitTimeout time.Duration
	HTTPTimeout        time.Duration

	// Output settings
	ImageDir        string
	MinWordCount    int
	StopwordProfile string

	// App settings
	Debug         bool
	RunAttempts   int
	RunRetryDelay time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rapidapi_host", "google-translate113.p.rapidapi.com")
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("google_free_translate", false)
	v.SetDefault("source_lang", "es")
	v.SetDefault("target_lang", "en")
	v.SetDefault("max_translation_requests", 0)
	v.SetDefault("translation_cache_ttl", time.Hour)

	v.SetDefault("base_url", "https://elpais.com/opinion/")
	v.SetDefault("feed_url", "https://feeds.elpais.com/mrss-s/pages/ep/site/elpais.com/section/opinion/portada")
	v.SetDefault("max_articles", 5)
	v.SetDefault("article_link_suffix", ".html")

	v.SetDefault("browser", "chrome")
	v.SetDefault("browser_bin", "")
	v.SetDefault("headless", true)
	v.SetDefault("page_load_timeout", 60*time.Second)
	v.SetDefault("element_wait_timeout", 15*time.Second)
	v.SetDefault("http_timeout", 10*time.Second)

	v.SetDefault("image_dir", "images")
	v.SetDefault("min_word_count", 3)
	v.SetDefault("stopword_profile", "en")

	v.SetDefault("debug", false)
	v.SetDefault("run_attempts", 1)
	v.SetDefault("run_retry_delay", 2*time.Second)
}

// Load builds a Config. dotenvPath names an optional dotenv file (missing
// is fine); flags, when non-nil, override everything else for the keys
// they define (browser, headless, attempts).
func Load(dotenvPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if dotenvPath != "" {
		v.SetConfigFile(dotenvPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", dotenvPath, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range map[string]string{
			"browser":      "browser",
			"headless":     "headless",
			"run_attempts": "attempts",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		RapidAPIKey:            v.GetString("rapidapi_key"),
		RapidAPIHost:           v.GetString("rapidapi_host"),
		GeminiAPIKey:           v.GetString("gemini_api_key"),
		GeminiModel:            v.GetString("gemini_model"),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		GoogleFreeTranslate:    v.GetBool("google_free_translate"),
		SourceLang:             v.GetString("source_lang"),
		TargetLang:             v.GetString("target_lang"),
		MaxTranslationRequests: v.GetInt("max_translation_requests"),
		TranslationCacheTTL:    v.GetDuration("translation_cache_ttl"),

		BaseURL:           v.GetString("base_url"),
		FeedURL:           v.GetString("feed_url"),
		MaxArticles:       v.GetInt("max_articles"),
		ArticleLinkSuffix: v.GetString("article_link_suffix"),

		Browser:            strings.ToLower(strings.TrimSpace(v.GetString("browser"))),
		BrowserBin:         v.GetString("browser_bin"),
		Headless:           v.GetBool("headless"),
		PageLoadTimeout:    v.GetDuration("page_load_timeout"),
		ElementWaitTimeout: v.GetDuration("element_wait_timeout"),
		HTTPTimeout:        v.GetDuration("http_timeout"),

		ImageDir:        v.GetString("image_dir"),
		MinWordCount:    v.GetInt("min_word_count"),
		StopwordProfile: v.GetString("stopword_profile"),

		Debug:         v.GetBool("debug"),
		RunAttempts:   v.GetInt("run_attempts"),
		RunRetryDelay: v.GetDuration("run_retry_delay"),
	}

	return cfg, cfg.Validate()
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err)
}

// Validate checks value ranges. A missing translation key is not an
// error: translation then degrades to the original text.
func (c *Config) Validate() error {
	if !isKnownBrowser(c.Browser) {
		return fmt.Errorf("BROWSER must be one of %s, got %q", strings.Join(Browsers, ", "), c.Browser)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if c.MaxArticles < 1 {
		return fmt.Errorf("MAX_ARTICLES must be at least 1")
	}
	if c.MinWordCount < 1 {
		return fmt.Errorf("MIN_WORD_COUNT must be at least 1")
	}
	if c.PageLoadTimeout <= 0 || c.ElementWaitTimeout <= 0 || c.HTTPTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.RunAttempts < 1 {
		return fmt.Errorf("RUN_ATTEMPTS must be at least 1")
	}
	return nil
}

func isKnownBrowser(name string) bool {
	for _, b := range Browsers {
		if b == name {
			return true
		}
	}
	return false
}
