package images

import (
	"context"
	"strings"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
	"github.com/pressfeed-hq/pressfeed/internal/logger"
)

// Strategy is one way of finding an image for a candidate. It returns the
// empty string when it has nothing; errors are advisory and never abort a
// run.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, cand domain.Candidate) (string, error)
}

// Store receives successful resolutions so later runs can skip the work.
type Store interface {
	Put(storyURL, imageURL string) error
}

// Resolver fills in missing candidate images by trying strategies in order
// and stopping at the first hit. Candidates that already carry an image are
// left untouched.
type Resolver struct {
	strategies []Strategy
	store      Store
	maxScan    int
	log        logger.Logger
}

// NewResolver builds a resolver over the given strategy chain. maxScan
// bounds how many candidates are considered at all (0 means no bound);
// store may be nil.
func NewResolver(strategies []Strategy, store Store, maxScan int, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Resolver{
		strategies: strategies,
		store:      store,
		maxScan:    maxScan,
		log:        log,
	}
}

// Resolve returns the scanned slice of candidates with images filled in
// where a strategy succeeded. Candidates it could not resolve keep an empty
// ImageURL; the selector drops those. Order is preserved.
func (r *Resolver) Resolve(ctx context.Context, cands []domain.Candidate) []domain.Candidate {
	pool := cands
	if r.maxScan > 0 && len(pool) > r.maxScan {
		pool = pool[:r.maxScan]
	}

	out := make([]domain.Candidate, len(pool))
	copy(out, pool)

	for i := range out {
		if ctx.Err() != nil {
			break
		}
		if out[i].ImageURL != "" {
			continue
		}
		out[i].ImageURL = r.resolveOne(ctx, out[i])
	}

	return out
}

func (r *Resolver) resolveOne(ctx context.Context, cand domain.Candidate) string {
	for _, strat := range r.strategies {
		img, err := strat.Resolve(ctx, cand)
		if err != nil {
			r.log.WarnObj("image strategy failed", "image_strategy_error", map[string]any{
				"strategy": strat.Name(),
				"url":      cand.URL,
				"error":    err.Error(),
			})
			continue
		}

		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}

		r.log.DebugObj("image resolved", "image_resolved", map[string]any{
			"strategy": strat.Name(),
			"url":      cand.URL,
			"image":    img,
		})

		if r.store != nil {
			if err := r.store.Put(cand.URL, img); err != nil {
				r.log.WarnObj("image cache write failed", "image_cache_error", map[string]any{
					"url":   cand.URL,
					"error": err.Error(),
				})
			}
		}
		return img
	}

	r.log.DebugObj("no image found", "image_unresolved", map[string]any{"url": cand.URL})
	return ""
}

// NormalizeImageURL upgrades protocol-relative URLs and rejects anything
// that is not absolute http(s).
func NormalizeImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return ""
	}
	return raw
}
