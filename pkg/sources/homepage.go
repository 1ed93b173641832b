package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
	"github.com/pressfeed-hq/pressfeed/pkg/httpclient"
)

const (
	homepageModeID = "homepage"

	// minTitleRunes is the shortest anchor text accepted as a story title.
	// Shorter anchors are navigation labels, not headlines.
	minTitleRunes = 8
)

// storyPathPatterns decide whether an absolute URL looks like a story page.
// Date-segmented paths and common section prefixes qualify; everything else
// (navigation, tag pages, ads) is skipped.
var storyPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/\d{4}/\d{1,2}(?:/\d{1,2})?/`),
	regexp.MustCompile(`^/(?:news|story|article|video|politics|sports|business|world|entertainment)/.`),
}

// homepageSource extracts candidates by scanning homepage anchors.
type homepageSource struct {
	client httpclient.Client
}

// NewHomepageSource builds the homepage-scan source.
func NewHomepageSource(client httpclient.Client) Source {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &homepageSource{client: client}
}

func (s *homepageSource) ID() string {
	return homepageModeID
}

func (s *homepageSource) Fetch(ctx context.Context, p Params) ([]domain.Candidate, error) {
	if strings.TrimSpace(p.URL) == "" {
		return nil, fmt.Errorf("homepage url is empty")
	}

	base, err := url.Parse(firstNonEmpty(p.SiteURL, p.URL))
	if err != nil {
		return nil, fmt.Errorf("parse site url: %w", err)
	}

	raw, err := FetchDocument(ctx, s.client, p.URL, Headers(p.UserAgent, AcceptHTML))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse homepage html: %w", err)
	}

	seen := make(map[string]struct{})
	var cands []domain.Candidate

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs := ResolveURL(href, base)
		if abs == "" || !StoryShaped(abs, base) {
			return
		}

		title := strings.Join(strings.Fields(a.Text()), " ")
		if utf8.RuneCountInString(title) < minTitleRunes {
			return
		}

		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}

		cands = append(cands, domain.Candidate{
			URL:   abs,
			Title: title,
		})
	})

	if len(cands) == 0 {
		return nil, fmt.Errorf("homepage %s yielded no story links", p.URL)
	}
	return cands, nil
}

// ResolveURL resolves a possibly relative href against the site base,
// returning "" for unparseable or non-http results.
func ResolveURL(raw string, base *url.URL) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "javascript:") {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	abs := parsed
	if !parsed.IsAbs() && base != nil {
		abs = base.ResolveReference(parsed)
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}

	abs.Fragment = ""
	return abs.String()
}

// StoryShaped reports whether the absolute URL looks like a story on the
// same host as the base.
func StoryShaped(abs string, base *url.URL) bool {
	parsed, err := url.Parse(abs)
	if err != nil {
		return false
	}
	if base != nil && base.Hostname() != "" && parsed.Hostname() != base.Hostname() {
		return false
	}

	for _, re := range storyPathPatterns {
		if re.MatchString(parsed.Path) {
			return true
		}
	}
	return false
}

// firstNonEmpty returns the first non-blank value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
