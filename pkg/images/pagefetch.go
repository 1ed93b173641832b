package images

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
	"github.com/pressfeed-hq/pressfeed/pkg/httpclient"
	"github.com/pressfeed-hq/pressfeed/pkg/sources"
)

// maxHTMLBodyBytes caps how much of an article page is parsed.
const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// pageFetch resolves an image by fetching the candidate's own page and
// scanning its preview meta tags. Fetches are paced with a fixed delay so
// the target host never sees a burst.
type pageFetch struct {
	client    httpclient.Client
	userAgent string
	delay     time.Duration
	fetched   bool
}

// NewPageFetch builds the secondary-page fetch strategy.
func NewPageFetch(client httpclient.Client, userAgent string, delay time.Duration) Strategy {
	return &pageFetch{
		client:    client,
		userAgent: userAgent,
		delay:     delay,
	}
}

func (s *pageFetch) Name() string { return "article-page-meta" }

func (s *pageFetch) Resolve(ctx context.Context, cand domain.Candidate) (string, error) {
	if s.fetched && s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}
	s.fetched = true

	body, err := sources.FetchDocument(ctx, s.client, cand.URL, sources.Headers(s.userAgent, sources.AcceptHTML))
	if err != nil {
		return "", err
	}
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse article html: %w", err)
	}

	return MetaImage(doc), nil
}

// MetaImage scans a parsed page for its preview image: Open Graph first,
// then the Twitter card, the secure OG variant, and finally the first <img>
// on the page.
func MetaImage(doc *goquery.Document) string {
	meta := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	candidates := []string{
		meta(`meta[property="og:image"]`),
		meta(`meta[name="twitter:image"]`),
		meta(`meta[property="twitter:image"]`),
		meta(`meta[property="og:image:secure_url"]`),
	}
	for _, c := range candidates {
		if img := NormalizeImageURL(c); img != "" {
			return img
		}
	}

	if src, ok := doc.Find("img[src]").First().Attr("src"); ok {
		return NormalizeImageURL(src)
	}
	return ""
}
