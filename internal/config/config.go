package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
)

// Source modes supported by the extraction pipeline.
const (
	ModeNewsSitemap  = "news-sitemap"
	ModeSitemapIndex = "sitemap-index"
	ModeHomepage     = "homepage"
)

// Config is the full runtime configuration for one feed build.
type Config struct {
	Site      SiteConfig     `mapstructure:"site"`
	Source    SourceConfig   `mapstructure:"source"`
	HTTP      HTTPConfig     `mapstructure:"http"`
	Feed      FeedConfig     `mapstructure:"feed"`
	Resolver  ResolverConfig `mapstructure:"resolver"`
	SinksFile string         `mapstructure:"sinks_file"`
	Log       LogConfig      `mapstructure:"log"`
}

// SiteConfig describes the scraped site and the channel metadata of the
// generated feed.
type SiteConfig struct {
	URL         string `mapstructure:"url"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Language    string `mapstructure:"language"`
	TTLMinutes  int    `mapstructure:"ttl_minutes"`
}

// SourceConfig selects how candidates are discovered. FallbackMode and
// FallbackURL are tried once when the primary source fails outright.
type SourceConfig struct {
	Mode            string `mapstructure:"mode"`
	URL             string `mapstructure:"url"`
	FallbackMode    string `mapstructure:"fallback_mode"`
	FallbackURL     string `mapstructure:"fallback_url"`
	ImageSitemapURL string `mapstructure:"image_sitemap_url"`
}

// HTTPConfig tunes outbound requests.
type HTTPConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RequestDelayMS int    `mapstructure:"request_delay_ms"`
}

// FeedConfig controls selection and output.
type FeedConfig struct {
	MaxItems   int    `mapstructure:"max_items"`
	OutputPath string `mapstructure:"output_path"`
}

// ResolverConfig bounds the image-resolution stage.
type ResolverConfig struct {
	PageFetch bool   `mapstructure:"page_fetch"`
	MaxScan   int    `mapstructure:"max_scan"`
	CachePath string `mapstructure:"cache_path"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Timeout returns the per-request timeout.
func (c HTTPConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RequestDelay returns the polite delay between article-page fetches.
func (c HTTPConfig) RequestDelay() time.Duration {
	if c.RequestDelayMS <= 0 {
		return 0
	}
	return time.Duration(c.RequestDelayMS) * time.Millisecond
}

// Load reads configuration from the given YAML file (optional) plus
// PRESSFEED_* environment variables, applies defaults, and validates.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("site.language", "en")
	v.SetDefault("site.ttl_minutes", 60)
	v.SetDefault("source.mode", ModeNewsSitemap)
	v.SetDefault("http.user_agent", "pressfeed/1.0 (+https://github.com/pressfeed-hq/pressfeed)")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.request_delay_ms", 1200)
	v.SetDefault("feed.max_items", 5)
	v.SetDefault("feed.output_path", "feed.xml")
	v.SetDefault("resolver.page_fetch", true)
	v.SetDefault("resolver.max_scan", 25)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("PRESSFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.sanitize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) sanitize() {
	c.Site.URL = strings.TrimSpace(c.Site.URL)
	c.Site.Title = strings.TrimSpace(c.Site.Title)
	c.Source.Mode = strings.ToLower(strings.TrimSpace(c.Source.Mode))
	c.Source.URL = strings.TrimSpace(c.Source.URL)
	c.Source.FallbackMode = strings.ToLower(strings.TrimSpace(c.Source.FallbackMode))
	c.Source.FallbackURL = strings.TrimSpace(c.Source.FallbackURL)
	c.Source.ImageSitemapURL = strings.TrimSpace(c.Source.ImageSitemapURL)
	c.SinksFile = strings.TrimSpace(c.SinksFile)
	c.Feed.OutputPath = strings.TrimSpace(c.Feed.OutputPath)
}

// Validate checks required fields and mode names.
func (c *Config) Validate() error {
	if c.Site.URL == "" {
		return errors.New("site.url is required")
	}
	if c.Site.Title == "" {
		return errors.New("site.title is required")
	}
	if c.Source.URL == "" {
		return errors.New("source.url is required")
	}
	if !validMode(c.Source.Mode) {
		return fmt.Errorf("source.mode %q is not supported", c.Source.Mode)
	}
	if c.Source.FallbackMode != "" && !validMode(c.Source.FallbackMode) {
		return fmt.Errorf("source.fallback_mode %q is not supported", c.Source.FallbackMode)
	}
	if c.Source.FallbackMode != "" && c.Source.FallbackURL == "" {
		return errors.New("source.fallback_url is required when fallback_mode is set")
	}
	if c.Feed.MaxItems <= 0 {
		return errors.New("feed.max_items must be positive")
	}
	if c.Feed.OutputPath == "" {
		return errors.New("feed.output_path is required")
	}
	return nil
}

// FeedMeta assembles channel metadata from the site section.
func (c *Config) FeedMeta() domain.FeedMeta {
	return domain.FeedMeta{
		Title:       c.Site.Title,
		Link:        c.Site.URL,
		Description: c.Site.Description,
		Language:    c.Site.Language,
		TTLMinutes:  c.Site.TTLMinutes,
	}
}

func validMode(mode string) bool {
	switch mode {
	case ModeNewsSitemap, ModeSitemapIndex, ModeHomepage:
		return true
	}
	return false
}
