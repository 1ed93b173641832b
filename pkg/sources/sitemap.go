package sources

import (
	"context"
	"encoding/xml"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
	"github.com/pressfeed-hq/pressfeed/pkg/httpclient"
)

// flexString accepts a field that upstream emits either as bare character
// data or as an element wrapping a text payload. Either way it decodes to a
// trimmed scalar, so the ambiguity stops here.
type flexString string

func (s *flexString) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(t)
		}
	}
	*s = flexString(strings.TrimSpace(sb.String()))
	return nil
}

type newsSitemap struct {
	URLs []newsSitemapURL `xml:"url"`
}

type newsSitemapURL struct {
	// Namespaced children are matched by local name; encoding/xml resolves
	// prefixes to namespace URLs, which vary across sites.
	Loc     string      `xml:"loc"`
	LastMod string      `xml:"lastmod"`
	News    newsDetail  `xml:"news"`
	Images  []newsImage `xml:"image"`
}

type newsDetail struct {
	PublicationDate string     `xml:"publication_date"`
	Title           flexString `xml:"title"`
}

type newsImage struct {
	Loc   string `xml:"loc"`
	Title string `xml:"title"`
}

type sitemapIndex struct {
	Sitemaps []SitemapRef `xml:"sitemap"`
}

// SitemapRef is one entry of a sitemap index.
type SitemapRef struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// parseNewsSitemap parses article sitemap XML into its URL entries.
func parseNewsSitemap(data []byte) ([]newsSitemapURL, error) {
	var sm newsSitemap
	if err := xml.Unmarshal(data, &sm); err != nil {
		return nil, err
	}
	return sm.URLs, nil
}

// parseSitemapIndex parses a sitemap index into its entries, skipping ones
// with an empty location.
func parseSitemapIndex(data []byte) ([]SitemapRef, error) {
	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err != nil {
		return nil, err
	}

	refs := make([]SitemapRef, 0, len(index.Sitemaps))
	for _, entry := range index.Sitemaps {
		entry.Loc = strings.TrimSpace(entry.Loc)
		entry.LastMod = strings.TrimSpace(entry.LastMod)
		if entry.Loc == "" {
			continue
		}
		refs = append(refs, entry)
	}
	return refs, nil
}

// mostRecent orders refs newest-first by lastmod (lexicographic works for
// ISO-8601 stamps) and returns at most n. Entries without a lastmod sort
// last; ties keep their original order.
func mostRecent(refs []SitemapRef, n int) []SitemapRef {
	out := make([]SitemapRef, len(refs))
	copy(out, refs)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastMod == "" {
			return false
		}
		if out[j].LastMod == "" {
			return true
		}
		return out[i].LastMod > out[j].LastMod
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// buildCandidates converts sitemap URL entries to candidates in document
// order. With requireTitle set, entries missing the news title are dropped.
func buildCandidates(urls []newsSitemapURL, requireTitle bool) []domain.Candidate {
	cands := make([]domain.Candidate, 0, len(urls))
	for _, entry := range urls {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}

		title := string(entry.News.Title)
		if requireTitle && title == "" {
			continue
		}

		cands = append(cands, domain.Candidate{
			URL:         loc,
			Title:       title,
			ImageURL:    firstImageURL(entry.Images),
			PublishedAt: parsePublicationDate(entry.News.PublicationDate),
		})
	}
	return cands
}

// firstImageURL returns the first non-empty image location from the entry.
func firstImageURL(images []newsImage) string {
	for _, img := range images {
		if loc := strings.TrimSpace(img.Loc); loc != "" {
			return loc
		}
	}
	return ""
}

// parsePublicationDate parses an RFC3339 publication date, returning the
// zero time when absent or malformed.
func parsePublicationDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}

	return time.Time{}
}

// responseSnippet returns a truncated piece of the response body for errors.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// FetchDocument retrieves a remote document, failing with a FetchError on
// any non-2xx status.
func FetchDocument(ctx context.Context, client httpclient.Client, url string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, &httpclient.FetchError{
			URL:     url,
			Status:  resp.StatusCode(),
			Snippet: responseSnippet(body),
		}
	}

	return body, nil
}
