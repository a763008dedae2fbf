package types

import "time"

// Item represents a single article as read from an RSS/Atom feed
type Item struct {
	FeedName    string // name of the feed this item belongs to
	Title       string
	Link        string
	Description string    // raw description, may contain markup
	Published   time.Time // always set, "now" if the feed had no usable date
}

// Entry is a feed item after link resolution and content extraction. Entries live for one
// generation run and are not deduplicated.
type Entry struct {
	FeedName     string
	Title        string
	SourceLink   string // link as given by the feed
	ResolvedLink string // publisher URL, may equal SourceLink
	Description  string // extracted article text or the cleaned feed description
	Published    time.Time
}
