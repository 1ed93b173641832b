package feed

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
)

const mediaNamespace = "http://search.yahoo.com/mrss/"

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	MediaNS string     `xml:"xmlns:media,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	TTL           int       `xml:"ttl,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title     string         `xml:"title"`
	Link      string         `xml:"link"`
	GUID      rssGUID        `xml:"guid"`
	PubDate   string         `xml:"pubDate"`
	Enclosure rssEnclosure   `xml:"enclosure"`
	Content   mediaContent   `xml:"media:content"`
	Thumbnail mediaThumbnail `xml:"media:thumbnail"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int    `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type mediaContent struct {
	URL    string `xml:"url,attr"`
	Medium string `xml:"medium,attr"`
	Type   string `xml:"type,attr"`
}

type mediaThumbnail struct {
	URL string `xml:"url,attr"`
}

// Write serializes the channel and items into an RSS 2.0 document with
// Media RSS extensions, returned as a string.
func Write(meta domain.FeedMeta, items []domain.Item) (string, error) {
	doc := rssDoc{
		Version: "2.0",
		MediaNS: mediaNamespace,
		Channel: rssChannel{
			Title:         meta.Title,
			Link:          meta.Link,
			Description:   meta.Description,
			Language:      meta.Language,
			TTL:           meta.TTLMinutes,
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         make([]rssItem, 0, len(items)),
		},
	}

	for _, item := range items {
		mime := GuessMIME(item.ImageURL)
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:   item.Title,
			Link:    item.URL,
			GUID:    rssGUID{IsPermaLink: true, Value: item.URL},
			PubDate: item.PublishedAt.Format(time.RFC1123Z),
			Enclosure: rssEnclosure{
				URL:  item.ImageURL,
				Type: mime,
			},
			Content:   mediaContent{URL: item.ImageURL, Medium: "image", Type: mime},
			Thumbnail: mediaThumbnail{URL: item.ImageURL},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal feed: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}

// WriteFile writes the feed atomically: the document lands in a temp file
// that is renamed over the target, so a failed run leaves no partial feed.
func WriteFile(outputPath, document string) error {
	tmp := outputPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(document), 0o644); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	if err := os.Rename(tmp, outputPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace feed: %w", err)
	}
	return nil
}

// GuessMIME maps an image URL's extension to a MIME type. JPEG is the
// default for anything unrecognized.
func GuessMIME(imageURL string) string {
	ext := ""
	if u, err := url.Parse(imageURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	switch ext {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
