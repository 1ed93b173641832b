package sources_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressfeed-hq/pressfeed/pkg/sources"
)

const homepageHTML = `<!DOCTYPE html>
<html>
<body>
  <nav><a href="/about">About</a> <a href="/news/2024/01/05/short">short</a></nav>
  <main>
    <article><a href="/news/2024/01/05/alpha-story">Alpha story makes headlines</a></article>
    <article><a href="https://example.com/news/2024/01/05/beta-story">Beta story runs even longer</a></article>
    <article><a href="/news/2024/01/05/alpha-story">Alpha story makes headlines</a></article>
    <article><a href="https://other.example.net/news/2024/01/05/offsite">Offsite story should be skipped</a></article>
    <a href="/tag/politics">politics tag page</a>
    <a href="/news/2024/01/04/gamma-story#comments">Gamma story with a fragment</a>
  </main>
</body>
</html>`

func TestHomepageSource_ExtractsStoryAnchors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, homepageHTML)
	}))
	defer srv.Close()

	src := sources.NewHomepageSource(testClient())
	cands, err := src.Fetch(context.Background(), sources.Params{
		URL:       srv.URL,
		SiteURL:   "https://example.com",
		UserAgent: "test",
	})
	require.NoError(t, err)

	require.Len(t, cands, 3)
	assert.Equal(t, "https://example.com/news/2024/01/05/alpha-story", cands[0].URL)
	assert.Equal(t, "Alpha story makes headlines", cands[0].Title)
	assert.Equal(t, "https://example.com/news/2024/01/05/beta-story", cands[1].URL)
	assert.Equal(t, "https://example.com/news/2024/01/04/gamma-story", cands[2].URL)

	for _, c := range cands {
		assert.Empty(t, c.ImageURL)
	}
}

func TestHomepageSource_NoStoriesIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/about">About this site</a></body></html>`)
	}))
	defer srv.Close()

	src := sources.NewHomepageSource(testClient())
	_, err := src.Fetch(context.Background(), sources.Params{URL: srv.URL, SiteURL: "https://example.com", UserAgent: "test"})
	assert.Error(t, err)
}

func TestResolveURL(t *testing.T) {
	base, _ := url.Parse("https://example.com")

	tests := []struct {
		name string
		href string
		want string
	}{
		{"relative", "/news/2024/01/05/x", "https://example.com/news/2024/01/05/x"},
		{"absolute", "https://example.com/news/a", "https://example.com/news/a"},
		{"fragment only", "#top", ""},
		{"javascript", "javascript:void(0)", ""},
		{"mailto", "mailto:tips@example.com", ""},
		{"strips fragment", "/news/a#comments", "https://example.com/news/a"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sources.ResolveURL(tt.href, base))
		})
	}
}

func TestStoryShaped(t *testing.T) {
	base, _ := url.Parse("https://example.com")

	tests := []struct {
		name string
		abs  string
		want bool
	}{
		{"dated path", "https://example.com/2024/01/05/story-slug", true},
		{"dated under section", "https://example.com/news/2024/01/05/story", true},
		{"category path", "https://example.com/news/story-slug", true},
		{"sports path", "https://example.com/sports/match-report", true},
		{"nav page", "https://example.com/about", false},
		{"tag page", "https://example.com/tag/politics", false},
		{"other host", "https://other.example.net/news/2024/01/05/x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sources.StoryShaped(tt.abs, base))
		})
	}
}
