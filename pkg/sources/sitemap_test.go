package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newsSitemapXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"
        xmlns:news="http://www.google.com/schemas/sitemap-news/0.9"
        xmlns:image="http://www.google.com/schemas/sitemap-image/1.1">
  <url>
    <loc>https://example.com/news/2024/01/05/first-story</loc>
    <news:news>
      <news:publication_date>2024-01-05T08:30:00Z</news:publication_date>
      <news:title>First story headline</news:title>
    </news:news>
    <image:image>
      <image:loc>https://cdn.example.com/first.jpg</image:loc>
    </image:image>
  </url>
  <url>
    <loc>https://example.com/news/2024/01/05/no-title</loc>
  </url>
  <url>
    <loc>https://example.com/news/2024/01/04/second-story</loc>
    <news:news>
      <news:title><span>Second story headline</span></news:title>
    </news:news>
  </url>
  <url>
    <news:news>
      <news:title>Entry without a location</news:title>
    </news:news>
  </url>
</urlset>`

const sitemapIndexXML = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap>
    <loc>https://example.com/sitemap-old.xml</loc>
    <lastmod>2024-01-01</lastmod>
  </sitemap>
  <sitemap>
    <loc>https://example.com/sitemap-new.xml</loc>
    <lastmod>2024-01-02</lastmod>
  </sitemap>
  <sitemap>
    <loc>https://example.com/sitemap-undated.xml</loc>
  </sitemap>
</sitemapindex>`

func TestParseNewsSitemap(t *testing.T) {
	urls, err := parseNewsSitemap([]byte(newsSitemapXML))
	require.NoError(t, err)
	require.Len(t, urls, 4)

	assert.Equal(t, "https://example.com/news/2024/01/05/first-story", urls[0].Loc)
	assert.Equal(t, "First story headline", string(urls[0].News.Title))
	require.Len(t, urls[0].Images, 1)
	assert.Equal(t, "https://cdn.example.com/first.jpg", urls[0].Images[0].Loc)

	// The wrapped title normalizes to a plain scalar.
	assert.Equal(t, "Second story headline", string(urls[2].News.Title))
}

func TestBuildCandidates_RequireTitleDropsIncompleteEntries(t *testing.T) {
	urls, err := parseNewsSitemap([]byte(newsSitemapXML))
	require.NoError(t, err)

	cands := buildCandidates(urls, true)
	require.Len(t, cands, 2)

	assert.Equal(t, "First story headline", cands[0].Title)
	assert.Equal(t, "https://cdn.example.com/first.jpg", cands[0].ImageURL)
	assert.Equal(t, time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC), cands[0].PublishedAt)

	assert.Equal(t, "Second story headline", cands[1].Title)
	assert.Empty(t, cands[1].ImageURL)
	assert.True(t, cands[1].PublishedAt.IsZero())
}

func TestBuildCandidates_OptionalTitleKeepsEntries(t *testing.T) {
	urls, err := parseNewsSitemap([]byte(newsSitemapXML))
	require.NoError(t, err)

	cands := buildCandidates(urls, false)
	require.Len(t, cands, 3)
	assert.Empty(t, cands[1].Title)
}

func TestParseSitemapIndex(t *testing.T) {
	refs, err := parseSitemapIndex([]byte(sitemapIndexXML))
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "https://example.com/sitemap-old.xml", refs[0].Loc)
	assert.Equal(t, "2024-01-01", refs[0].LastMod)
}

func TestMostRecent_OrdersByLastModDescending(t *testing.T) {
	refs := []SitemapRef{
		{Loc: "a", LastMod: "2024-01-01"},
		{Loc: "b", LastMod: "2024-01-02"},
		{Loc: "c"},
		{Loc: "d", LastMod: "2024-01-02"},
	}

	got := mostRecent(refs, 0)
	require.Len(t, got, 4)
	assert.Equal(t, "b", got[0].Loc)
	assert.Equal(t, "d", got[1].Loc) // tie keeps original order
	assert.Equal(t, "a", got[2].Loc)
	assert.Equal(t, "c", got[3].Loc) // missing lastmod sorts last
}

func TestMostRecent_Truncates(t *testing.T) {
	refs := []SitemapRef{
		{Loc: "a", LastMod: "2024-01-01"},
		{Loc: "b", LastMod: "2024-01-02"},
		{Loc: "c", LastMod: "2024-01-03"},
	}

	got := mostRecent(refs, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Loc)
	assert.Equal(t, "b", got[1].Loc)
}

func TestMostRecent_DoesNotMutateInput(t *testing.T) {
	refs := []SitemapRef{
		{Loc: "a", LastMod: "2024-01-01"},
		{Loc: "b", LastMod: "2024-01-02"},
	}
	_ = mostRecent(refs, 1)
	assert.Equal(t, "a", refs[0].Loc)
}
