package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/rafaelamiranda/noticias-ia/pkg/config"
	"github.com/rafaelamiranda/noticias-ia/pkg/feed/types"
)

// rssDate is the RFC 1123 layout with a literal GMT zone, times are converted to UTC first
const rssDate = "Mon, 02 Jan 2006 15:04:05 GMT"

// Generator creates RSS and OPML documents
type Generator struct {
	channel ChannelInfo
}

// NewGenerator creates a new feed generator
func NewGenerator(channel ChannelInfo) *Generator {
	return &Generator{channel: channel}
}

// GenerateRSS creates an RSS 2.0 document with one item per entry, in the given order
func (g *Generator) GenerateRSS(entries []types.Entry, buildTime time.Time) (string, error) {
	rssItems := make([]*RSSItem, 0, len(entries))
	for _, e := range entries {
		rssItems = append(rssItems, &RSSItem{
			Title:       e.Title,
			Link:        e.ResolvedLink,
			Description: e.Description,
			PubDate:     e.Published.UTC().Format(rssDate),
			GUID:        e.ResolvedLink,
		})
	}

	feed := &RSS{
		Version: "2.0",
		Channel: &RSSChannel{
			Title:         g.channel.Title,
			Link:          g.channel.Link,
			Description:   g.channel.Description,
			LastBuildDate: buildTime.UTC().Format(rssDate),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}

// GenerateOPML creates an OPML file listing the source feeds
func (g *Generator) GenerateOPML(feeds []config.Feed, buildTime time.Time) (string, error) {
	type outline struct {
		XMLName xml.Name `xml:"outline"`
		Text    string   `xml:"text,attr"`
		Title   string   `xml:"title,attr"`
		Type    string   `xml:"type,attr"`
		XMLUrl  string   `xml:"xmlUrl,attr"`
	}

	type body struct {
		XMLName  xml.Name  `xml:"body"`
		Outlines []outline `xml:"outline"`
	}

	type head struct {
		XMLName     xml.Name `xml:"head"`
		Title       string   `xml:"title"`
		DateCreated string   `xml:"dateCreated"`
	}

	type opml struct {
		XMLName xml.Name `xml:"opml"`
		Version string   `xml:"version,attr"`
		Head    head     `xml:"head"`
		Body    body     `xml:"body"`
	}

	outlines := make([]outline, 0, len(feeds))
	for _, f := range feeds {
		outlines = append(outlines, outline{Text: f.Name, Title: f.Name, Type: "rss", XMLUrl: f.URL})
	}

	doc := opml{
		Version: "2.0",
		Head:    head{Title: g.channel.Title + " - sources", DateCreated: buildTime.UTC().Format(rssDate)},
		Body:    body{Outlines: outlines},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal OPML: %w", err)
	}

	return xml.Header + string(output), nil
}
