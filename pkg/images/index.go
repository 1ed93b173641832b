package images

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
	"github.com/pressfeed-hq/pressfeed/pkg/httpclient"
	"github.com/pressfeed-hq/pressfeed/pkg/sources"
)

// Index maps a story URL to the first image discovered for it in an image
// sitemap. Later duplicates for the same story are ignored.
type Index map[string]string

type imageSitemap struct {
	URLs []imageSitemapURL `xml:"url"`
}

// Namespaced children are matched by local name, same as the news sitemap
// structs in pkg/sources.
type imageSitemapURL struct {
	Loc    string       `xml:"loc"`
	Images []imageEntry `xml:"image"`
}

type imageEntry struct {
	Loc string `xml:"loc"`
}

type imageSitemapIndex struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// BuildIndex crawls an image sitemap (following one level of sitemap
// indexes) into a story-URL-to-image-URL index. First-seen wins.
func BuildIndex(ctx context.Context, client httpclient.Client, sitemapURL, userAgent string) (Index, error) {
	idx := make(Index)
	if err := crawlImageSitemap(ctx, client, sitemapURL, userAgent, idx, make(map[string]struct{})); err != nil {
		return nil, err
	}
	return idx, nil
}

func crawlImageSitemap(ctx context.Context, client httpclient.Client, url, userAgent string, idx Index, visited map[string]struct{}) error {
	if _, seen := visited[url]; seen {
		return nil
	}
	visited[url] = struct{}{}

	raw, err := sources.FetchDocument(ctx, client, url, sources.Headers(userAgent, sources.AcceptXML))
	if err != nil {
		return err
	}

	var sm imageSitemap
	if err := xml.Unmarshal(raw, &sm); err != nil {
		return fmt.Errorf("decode image sitemap: %w", err)
	}
	if len(sm.URLs) > 0 {
		idx.add(sm.URLs)
		return nil
	}

	var index imageSitemapIndex
	if err := xml.Unmarshal(raw, &index); err != nil {
		return fmt.Errorf("decode image sitemap index: %w", err)
	}
	for _, entry := range index.Sitemaps {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}
		if err := crawlImageSitemap(ctx, client, loc, userAgent, idx, visited); err != nil {
			return err
		}
	}
	return nil
}

func (idx Index) add(urls []imageSitemapURL) {
	for _, entry := range urls {
		story := strings.TrimSpace(entry.Loc)
		if story == "" {
			continue
		}
		if _, exists := idx[story]; exists {
			continue
		}
		for _, img := range entry.Images {
			if loc := NormalizeImageURL(img.Loc); loc != "" {
				idx[story] = loc
				break
			}
		}
	}
}

type indexLookup struct {
	idx Index
}

// NewIndexLookup returns the strategy that answers from a pre-built Index.
func NewIndexLookup(idx Index) Strategy {
	return &indexLookup{idx: idx}
}

func (s *indexLookup) Name() string { return "image-sitemap-index" }

func (s *indexLookup) Resolve(_ context.Context, cand domain.Candidate) (string, error) {
	return s.idx[cand.URL], nil
}
