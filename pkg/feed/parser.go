package feed

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/rafaelamiranda/noticias-ia/pkg/feed/types"
	"github.com/rafaelamiranda/noticias-ia/pkg/fetch"
)

//go:generate moq -out mocks/feed_fetcher.go -pkg mocks -skip-ensure -fmt goimports . FeedFetcher

// FeedFetcher retrieves raw syndication documents
type FeedFetcher interface {
	FetchFeed(ctx context.Context, feedURL string) (fetch.Page, error)
}

var stripPolicy = bluemonday.StrictPolicy()

// Parser parses RSS/Atom feeds
type Parser struct {
	fetcher FeedFetcher
	now     func() time.Time
}

// NewParser creates a new feed parser
func NewParser(fetcher FeedFetcher) *Parser {
	return &Parser{fetcher: fetcher, now: time.Now}
}

// Parse fetches and parses a feed from the given URL. Missing fields are left empty, a missing or
// unparsable publication date is replaced by the current time.
func (p *Parser) Parse(ctx context.Context, feedURL, feedName string) ([]types.Item, error) {
	page, err := p.fetcher.FetchFeed(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	items := make([]types.Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		parsed := types.Item{
			FeedName:    feedName,
			Title:       plainTitle(item.Title),
			Link:        strings.TrimSpace(item.Link),
			Description: item.Description,
		}

		switch {
		case item.PublishedParsed != nil:
			parsed.Published = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			parsed.Published = item.UpdatedParsed.UTC()
		default:
			log.Printf("[WARN] no usable date %q for %q in %s, using current time", item.Published, parsed.Title, feedName)
			parsed.Published = p.now().UTC()
		}

		items = append(items, parsed)
	}

	return items, nil
}

// plainTitle strips any markup smuggled into a title, leaving literal characters
func plainTitle(title string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(title)))
}
