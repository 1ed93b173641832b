package domain

import "time"

// Domain contains core models shared across the pipeline.

// Candidate is a story discovered in a sitemap or on the homepage. ImageURL
// starts empty unless the source already carried one; the image resolver may
// fill it in later. Everything else is fixed at extraction time.
type Candidate struct {
	URL         string
	Title       string
	ImageURL    string
	PublishedAt time.Time
}

// Item is a fully resolved feed entry. Title and ImageURL are always
// non-empty; PublishedAt defaults to the build time when the source had none.
type Item struct {
	URL         string
	Title       string
	ImageURL    string
	PublishedAt time.Time
}

// FeedMeta describes the channel of the generated feed.
type FeedMeta struct {
	Title       string
	Link        string
	Description string
	Language    string
	TTLMinutes  int
}
