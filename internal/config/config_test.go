package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalYAML = `
site:
  url: https://example.com
  title: Example News
source:
  url: https://example.com/news-sitemap.xml
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ModeNewsSitemap, cfg.Source.Mode)
	assert.Equal(t, "en", cfg.Site.Language)
	assert.Equal(t, 60, cfg.Site.TTLMinutes)
	assert.Equal(t, 5, cfg.Feed.MaxItems)
	assert.Equal(t, "feed.xml", cfg.Feed.OutputPath)
	assert.True(t, cfg.Resolver.PageFetch)
	assert.Equal(t, 25, cfg.Resolver.MaxScan)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout())
	assert.Equal(t, 1200*time.Millisecond, cfg.HTTP.RequestDelay())
}

func TestLoad_NormalizesModeCase(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, minimalYAML+`  mode: "  Sitemap-Index  "
`))
	require.NoError(t, err)
	assert.Equal(t, ModeSitemapIndex, cfg.Source.Mode)
}

func TestLoad_RejectsUnknownMode(t *testing.T) {
	_, err := Load(writeConfigFile(t, minimalYAML+`  mode: rss
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.mode")
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Site:   SiteConfig{URL: "https://example.com", Title: "Example"},
			Source: SourceConfig{Mode: ModeNewsSitemap, URL: "https://example.com/sitemap.xml"},
			Feed:   FeedConfig{MaxItems: 5, OutputPath: "feed.xml"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"complete", func(*Config) {}, true},
		{"missing site url", func(c *Config) { c.Site.URL = "" }, false},
		{"missing site title", func(c *Config) { c.Site.Title = "" }, false},
		{"missing source url", func(c *Config) { c.Source.URL = "" }, false},
		{"bad mode", func(c *Config) { c.Source.Mode = "scrape" }, false},
		{"fallback mode without url", func(c *Config) { c.Source.FallbackMode = ModeHomepage }, false},
		{"fallback mode with url", func(c *Config) {
			c.Source.FallbackMode = ModeHomepage
			c.Source.FallbackURL = "https://example.com"
		}, true},
		{"bad fallback mode", func(c *Config) {
			c.Source.FallbackMode = "rss"
			c.Source.FallbackURL = "https://example.com"
		}, false},
		{"zero max items", func(c *Config) { c.Feed.MaxItems = 0 }, false},
		{"missing output path", func(c *Config) { c.Feed.OutputPath = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFeedMeta(t *testing.T) {
	cfg := Config{Site: SiteConfig{
		URL:         "https://example.com",
		Title:       "Example News",
		Description: "Top stories",
		Language:    "en",
		TTLMinutes:  30,
	}}

	meta := cfg.FeedMeta()
	assert.Equal(t, "Example News", meta.Title)
	assert.Equal(t, "https://example.com", meta.Link)
	assert.Equal(t, "Top stories", meta.Description)
	assert.Equal(t, "en", meta.Language)
	assert.Equal(t, 30, meta.TTLMinutes)
}
