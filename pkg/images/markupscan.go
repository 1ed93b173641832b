package images

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
	"github.com/pressfeed-hq/pressfeed/pkg/httpclient"
	"github.com/pressfeed-hq/pressfeed/pkg/sources"
)

// markupScan finds an image in the homepage markup around a candidate's
// anchor: first an <img> nested in the anchor itself, then the first image
// under the nearest containing block. The homepage is fetched once, lazily,
// and reused for every candidate.
type markupScan struct {
	client      httpclient.Client
	homepageURL string
	siteURL     string
	userAgent   string

	once sync.Once
	doc  *goquery.Document
	base *url.URL
	err  error
}

// NewMarkupScan builds the homepage markup-scan strategy.
func NewMarkupScan(client httpclient.Client, homepageURL, siteURL, userAgent string) Strategy {
	return &markupScan{
		client:      client,
		homepageURL: homepageURL,
		siteURL:     siteURL,
		userAgent:   userAgent,
	}
}

func (s *markupScan) Name() string { return "homepage-markup" }

func (s *markupScan) Resolve(ctx context.Context, cand domain.Candidate) (string, error) {
	s.once.Do(func() { s.load(ctx) })
	if s.err != nil {
		return "", s.err
	}

	anchor := s.findAnchor(cand.URL)
	if anchor == nil {
		return "", nil
	}

	if img := imageFromSelection(anchor); img != "" {
		return img, nil
	}

	// Widen to the nearest containing block and take its first image.
	block := anchor.Closest("article, li, div")
	if block.Length() == 0 {
		return "", nil
	}
	return imageFromSelection(block), nil
}

func (s *markupScan) load(ctx context.Context) {
	base, err := url.Parse(s.siteURL)
	if err != nil {
		s.err = fmt.Errorf("parse site url: %w", err)
		return
	}

	body, err := sources.FetchDocument(ctx, s.client, s.homepageURL, sources.Headers(s.userAgent, sources.AcceptHTML))
	if err != nil {
		s.err = err
		return
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		s.err = fmt.Errorf("parse homepage html: %w", err)
		return
	}

	s.doc = doc
	s.base = base
}

// findAnchor locates the first anchor whose resolved href matches the
// candidate URL.
func (s *markupScan) findAnchor(candURL string) *goquery.Selection {
	var found *goquery.Selection
	s.doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if sources.ResolveURL(href, s.base) == candURL {
			found = a
			return false
		}
		return true
	})
	return found
}

// imageFromSelection pulls the first usable image URL out of the first
// <img> beneath sel, preferring the lazy-load attribute over src over the
// head of a srcset list.
func imageFromSelection(sel *goquery.Selection) string {
	img := sel.Find("img").First()
	if img.Length() == 0 {
		return ""
	}

	if v, ok := img.Attr("data-src"); ok {
		if u := NormalizeImageURL(v); u != "" {
			return u
		}
	}
	if v, ok := img.Attr("src"); ok {
		if u := NormalizeImageURL(v); u != "" {
			return u
		}
	}
	if v, ok := img.Attr("srcset"); ok {
		return NormalizeImageURL(firstSrcsetURL(v))
	}
	return ""
}

// firstSrcsetURL returns the URL part of the first srcset entry.
func firstSrcsetURL(srcset string) string {
	first := strings.Split(srcset, ",")[0]
	fields := strings.Fields(strings.TrimSpace(first))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
