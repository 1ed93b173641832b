package sources

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
	"github.com/pressfeed-hq/pressfeed/pkg/httpclient"
)

// Accept headers sent with outbound requests, by expected content type.
const (
	AcceptXML  = "application/xml,text/xml;q=0.9,*/*;q=0.8"
	AcceptHTML = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
)

// Params carries the per-run inputs a source needs.
type Params struct {
	// URL is the document the source starts from: a sitemap, a sitemap
	// index, or the homepage itself.
	URL string
	// SiteURL is the site root used to resolve relative links.
	SiteURL string
	// UserAgent identifies outbound requests.
	UserAgent string
}

// Source discovers candidate stories from one kind of upstream document.
// Candidates come back in document order; that order is the ranking signal.
type Source interface {
	ID() string
	Fetch(ctx context.Context, p Params) ([]domain.Candidate, error)
}

// Registry selects a source by its mode id.
type Registry interface {
	SourceFor(mode string) (Source, error)
}

type sourceRegistry struct {
	sources map[string]Source
	mu      sync.RWMutex
}

// NewRegistry builds a registry for the provided source implementations.
func NewRegistry(sources ...Source) Registry {
	reg := &sourceRegistry{
		sources: make(map[string]Source, len(sources)),
	}

	for _, s := range sources {
		if s == nil {
			continue
		}
		reg.sources[strings.ToLower(strings.TrimSpace(s.ID()))] = s
	}

	return reg
}

// SourceFor returns the source registered under the given mode.
func (r *sourceRegistry) SourceFor(mode string) (Source, error) {
	if mode == "" {
		return nil, fmt.Errorf("source mode is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.sources[strings.ToLower(mode)]; ok {
		return s, nil
	}

	return nil, fmt.Errorf("no source registered for mode %q", mode)
}

// DefaultHTTPClient returns a tuned http client for sources.
func DefaultHTTPClient() httpclient.Client {
	return httpclient.NewRestyClient(15 * time.Second)
}

// DefaultRegistry wires up the known source modes.
func DefaultRegistry(client httpclient.Client) Registry {
	if client == nil {
		client = DefaultHTTPClient()
	}

	return NewRegistry(
		NewNewsSitemapSource(client),
		NewSitemapIndexSource(client),
		NewHomepageSource(client),
	)
}

// Headers builds the request headers for a fetch with the given accept type.
func Headers(userAgent, accept string) map[string]string {
	return map[string]string{
		"User-Agent": userAgent,
		"Accept":     accept,
	}
}
