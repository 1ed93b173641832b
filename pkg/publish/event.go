package publish

import (
	"time"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
)

// Event is the payload delivered to sinks after a successful feed build.
type Event struct {
	FeedID      string       `json:"feed_id"`
	SiteURL     string       `json:"site_url"`
	Title       string       `json:"title"`
	ItemCount   int          `json:"item_count"`
	GeneratedAt time.Time    `json:"generated_at"`
	Items       []ItemRecord `json:"items"`
}

// ItemRecord mirrors one feed item in sink payloads.
type ItemRecord struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url"`
	PublishedAt time.Time `json:"published_at"`
}

// NewEvent builds the feed.built event for the given channel and items.
func NewEvent(feedID string, meta domain.FeedMeta, items []domain.Item) Event {
	records := make([]ItemRecord, 0, len(items))
	for _, item := range items {
		records = append(records, ItemRecord{
			Title:       item.Title,
			URL:         item.URL,
			ImageURL:    item.ImageURL,
			PublishedAt: item.PublishedAt,
		})
	}

	return Event{
		FeedID:      feedID,
		SiteURL:     meta.Link,
		Title:       meta.Title,
		ItemCount:   len(records),
		GeneratedAt: time.Now(),
		Items:       records,
	}
}
