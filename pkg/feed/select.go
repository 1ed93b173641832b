package feed

import (
	"fmt"
	"time"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
)

// InsufficientItemsError reports that the candidate pool could not fill the
// feed. The run must fail rather than emit a short feed.
type InsufficientItemsError struct {
	Got  int
	Want int
}

func (e *InsufficientItemsError) Error() string {
	return fmt.Sprintf("only %d of %d required feed items qualified", e.Got, e.Want)
}

// Select filters resolved candidates down to the final feed items: both a
// title and an image are required, duplicates by URL keep only the first
// occurrence, and the result is the first maxItems in candidate order.
// PublishedAt defaults to now when the source carried no date.
func Select(cands []domain.Candidate, maxItems int) ([]domain.Item, error) {
	now := time.Now()
	seen := make(map[string]struct{}, len(cands))
	items := make([]domain.Item, 0, maxItems)

	for _, cand := range cands {
		if len(items) == maxItems {
			break
		}
		if cand.URL == "" || cand.Title == "" || cand.ImageURL == "" {
			continue
		}
		if _, dup := seen[cand.URL]; dup {
			continue
		}
		seen[cand.URL] = struct{}{}

		publishedAt := cand.PublishedAt
		if publishedAt.IsZero() {
			publishedAt = now
		}

		items = append(items, domain.Item{
			URL:         cand.URL,
			Title:       cand.Title,
			ImageURL:    cand.ImageURL,
			PublishedAt: publishedAt,
		})
	}

	if len(items) < maxItems {
		return nil, &InsufficientItemsError{Got: len(items), Want: maxItems}
	}
	return items, nil
}
