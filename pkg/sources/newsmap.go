package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
	"github.com/pressfeed-hq/pressfeed/pkg/httpclient"
)

const newsSitemapModeID = "news-sitemap"

// newsSitemapSource extracts candidates from a single article/news sitemap.
// Entries must carry both a location and a news title; anything else is
// dropped without counting toward the selection target.
type newsSitemapSource struct {
	client httpclient.Client
}

// NewNewsSitemapSource builds the news-sitemap source.
func NewNewsSitemapSource(client httpclient.Client) Source {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &newsSitemapSource{client: client}
}

func (s *newsSitemapSource) ID() string {
	return newsSitemapModeID
}

func (s *newsSitemapSource) Fetch(ctx context.Context, p Params) ([]domain.Candidate, error) {
	if strings.TrimSpace(p.URL) == "" {
		return nil, fmt.Errorf("news sitemap url is empty")
	}

	raw, err := FetchDocument(ctx, s.client, p.URL, Headers(p.UserAgent, AcceptXML))
	if err != nil {
		return nil, err
	}

	urls, err := parseNewsSitemap(raw)
	if err != nil {
		return nil, fmt.Errorf("decode news sitemap: %w", err)
	}

	cands := buildCandidates(urls, true)
	if len(cands) == 0 {
		return nil, fmt.Errorf("news sitemap %s yielded no usable entries", p.URL)
	}
	return cands, nil
}
