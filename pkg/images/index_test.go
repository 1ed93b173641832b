package images_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
	"github.com/pressfeed-hq/pressfeed/pkg/httpclient"
	"github.com/pressfeed-hq/pressfeed/pkg/images"
)

func testClient() httpclient.Client {
	return httpclient.NewRestyClient(2 * time.Second)
}

const imageSitemapXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"
        xmlns:image="http://www.google.com/schemas/sitemap-image/1.1">
  <url>
    <loc>https://example.com/news/a</loc>
    <image:image><image:loc>https://cdn.example.com/a1.jpg</image:loc></image:image>
    <image:image><image:loc>https://cdn.example.com/a2.jpg</image:loc></image:image>
  </url>
  <url>
    <loc>https://example.com/news/a</loc>
    <image:image><image:loc>https://cdn.example.com/dupe.jpg</image:loc></image:image>
  </url>
  <url>
    <loc>https://example.com/news/b</loc>
    <image:image><image:loc>//cdn.example.com/b.jpg</image:loc></image:image>
  </url>
  <url>
    <loc>https://example.com/news/c</loc>
  </url>
</urlset>`

func TestBuildIndex_FirstImageWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, imageSitemapXML)
	}))
	defer srv.Close()

	idx, err := images.BuildIndex(context.Background(), testClient(), srv.URL, "test")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/a1.jpg", idx["https://example.com/news/a"])
	assert.Equal(t, "https://cdn.example.com/b.jpg", idx["https://example.com/news/b"])
	_, ok := idx["https://example.com/news/c"]
	assert.False(t, ok)
}

func TestBuildIndex_FollowsSitemapIndex(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/image-index.xml", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>%s/images.xml</loc></sitemap>
</sitemapindex>`, srv.URL)
	})
	mux.HandleFunc("/images.xml", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, imageSitemapXML)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	idx, err := images.BuildIndex(context.Background(), testClient(), srv.URL+"/image-index.xml", "test")
	require.NoError(t, err)
	assert.Len(t, idx, 2)
}

func TestBuildIndex_FetchErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := images.BuildIndex(context.Background(), testClient(), srv.URL, "test")
	require.Error(t, err)

	var fetchErr *httpclient.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestIndexLookup_AnswersFromIndex(t *testing.T) {
	idx := images.Index{"https://example.com/news/a": "https://cdn.example.com/a.jpg"}
	strat := images.NewIndexLookup(idx)

	img, err := strat.Resolve(context.Background(), domain.Candidate{URL: "https://example.com/news/a"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", img)

	img, err = strat.Resolve(context.Background(), domain.Candidate{URL: "https://example.com/news/z"})
	require.NoError(t, err)
	assert.Empty(t, img)
}
