package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/pressfeed-hq/pressfeed/internal/config"
	"github.com/pressfeed-hq/pressfeed/internal/domain"
	"github.com/pressfeed-hq/pressfeed/internal/logger"
	"github.com/pressfeed-hq/pressfeed/pkg/feed"
	"github.com/pressfeed-hq/pressfeed/pkg/httpclient"
	"github.com/pressfeed-hq/pressfeed/pkg/images"
	"github.com/pressfeed-hq/pressfeed/pkg/publish"
	"github.com/pressfeed-hq/pressfeed/pkg/sources"
)

// Pipeline runs one feed build end to end: discover candidates, resolve
// images, select the final items, write the feed, and notify sinks.
type Pipeline struct {
	cfg    *config.Config
	client httpclient.Client
	reg    sources.Registry
	cache  *images.Cache
	sinks  []publish.Sink
	log    logger.Logger
}

// New assembles a pipeline. cache and sinks may be nil; a nil client or
// registry gets the defaults.
func New(cfg *config.Config, client httpclient.Client, reg sources.Registry, cache *images.Cache, sinks []publish.Sink, log logger.Logger) *Pipeline {
	if client == nil {
		client = httpclient.NewRestyClient(cfg.HTTP.Timeout())
	}
	if reg == nil {
		reg = sources.DefaultRegistry(client)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Pipeline{
		cfg:    cfg,
		client: client,
		reg:    reg,
		cache:  cache,
		sinks:  sinks,
		log:    log,
	}
}

// Run executes the build. Any returned error means no feed was written.
func (p *Pipeline) Run(ctx context.Context) error {
	var (
		wg     sync.WaitGroup
		cands  []domain.Candidate
		srcErr error
		imgIdx images.Index
	)

	// The candidate fetch and the image-sitemap crawl hit different
	// resources, so they run side by side.
	wg.Add(1)
	go func() {
		defer wg.Done()
		cands, srcErr = p.fetchCandidates(ctx)
	}()

	if p.cfg.Source.ImageSitemapURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx, err := images.BuildIndex(ctx, p.client, p.cfg.Source.ImageSitemapURL, p.cfg.HTTP.UserAgent)
			if err != nil {
				p.log.WarnObj("image sitemap crawl failed", "image_index_error", map[string]any{
					"url":   p.cfg.Source.ImageSitemapURL,
					"error": err.Error(),
				})
				return
			}
			imgIdx = idx
		}()
	}

	wg.Wait()
	if srcErr != nil {
		return srcErr
	}

	p.log.InfoObj("candidates extracted", "candidates_extracted", map[string]any{
		"count":       len(cands),
		"image_index": len(imgIdx),
	})

	resolver := p.buildResolver(imgIdx)
	resolved := resolver.Resolve(ctx, cands)

	items, err := feed.Select(resolved, p.cfg.Feed.MaxItems)
	if err != nil {
		return err
	}

	meta := p.cfg.FeedMeta()
	document, err := feed.Write(meta, items)
	if err != nil {
		return err
	}
	if err := feed.WriteFile(p.cfg.Feed.OutputPath, document); err != nil {
		return err
	}

	p.log.InfoObj("feed written", "feed_written", map[string]any{
		"path":  p.cfg.Feed.OutputPath,
		"items": len(items),
	})

	p.notifySinks(ctx, meta, items)
	return nil
}

// fetchCandidates runs the configured source and, when it fails outright,
// the fallback source once.
func (p *Pipeline) fetchCandidates(ctx context.Context) ([]domain.Candidate, error) {
	cands, err := p.fetchFrom(ctx, p.cfg.Source.Mode, p.cfg.Source.URL)
	if err == nil {
		return cands, nil
	}

	if p.cfg.Source.FallbackMode == "" {
		return nil, err
	}

	p.log.WarnObj("primary source failed, trying fallback", "source_fallback", map[string]any{
		"mode":          p.cfg.Source.Mode,
		"fallback_mode": p.cfg.Source.FallbackMode,
		"error":         err.Error(),
	})

	cands, fbErr := p.fetchFrom(ctx, p.cfg.Source.FallbackMode, p.cfg.Source.FallbackURL)
	if fbErr != nil {
		return nil, fmt.Errorf("primary source: %w (fallback also failed: %v)", err, fbErr)
	}
	return cands, nil
}

func (p *Pipeline) fetchFrom(ctx context.Context, mode, sourceURL string) ([]domain.Candidate, error) {
	src, err := p.reg.SourceFor(mode)
	if err != nil {
		return nil, err
	}
	return src.Fetch(ctx, sources.Params{
		URL:       sourceURL,
		SiteURL:   p.cfg.Site.URL,
		UserAgent: p.cfg.HTTP.UserAgent,
	})
}

// buildResolver assembles the strategy chain in priority order: the
// image-sitemap index, the persistent cache, the article-page meta scan,
// and (for homepage runs) the surrounding-markup scan.
func (p *Pipeline) buildResolver(imgIdx images.Index) *images.Resolver {
	var strategies []images.Strategy

	if len(imgIdx) > 0 {
		strategies = append(strategies, images.NewIndexLookup(imgIdx))
	}
	if p.cache != nil {
		strategies = append(strategies, p.cache)
	}

	maxScan := 0
	if p.cfg.Resolver.PageFetch {
		strategies = append(strategies, images.NewPageFetch(p.client, p.cfg.HTTP.UserAgent, p.cfg.HTTP.RequestDelay()))
		maxScan = p.cfg.Resolver.MaxScan
	}

	if homepageURL := p.homepageURL(); homepageURL != "" {
		strategies = append(strategies, images.NewMarkupScan(p.client, homepageURL, p.cfg.Site.URL, p.cfg.HTTP.UserAgent))
	}

	var store images.Store
	if p.cache != nil {
		store = p.cache
	}
	return images.NewResolver(strategies, store, maxScan, p.log)
}

func (p *Pipeline) homepageURL() string {
	if p.cfg.Source.Mode == config.ModeHomepage {
		return p.cfg.Source.URL
	}
	if p.cfg.Source.FallbackMode == config.ModeHomepage {
		return p.cfg.Source.FallbackURL
	}
	return ""
}

// notifySinks delivers the feed.built event. Sink failures are logged and
// never fail the run; the feed on disk is already the source of truth.
func (p *Pipeline) notifySinks(ctx context.Context, meta domain.FeedMeta, items []domain.Item) {
	if len(p.sinks) == 0 {
		return
	}

	evt := publish.NewEvent(p.feedID(), meta, items)
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, evt); err != nil {
			p.log.WarnObj("sink publish failed", "sink_error", map[string]any{
				"sink_id": sink.ID(),
				"type":    sink.Type(),
				"error":   err.Error(),
			})
			continue
		}
		p.log.InfoObj("sink notified", "sink_notified", map[string]any{
			"sink_id": sink.ID(),
		})
	}
}

func (p *Pipeline) feedID() string {
	if u, err := url.Parse(p.cfg.Site.URL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return p.cfg.Site.Title
}
