package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelamiranda/noticias-ia/pkg/feed/mocks"
	"github.com/rafaelamiranda/noticias-ia/pkg/fetch"
)

func pageFetcher(body string) *mocks.FeedFetcherMock {
	return &mocks.FeedFetcherMock{
		FetchFeedFunc: func(ctx context.Context, feedURL string) (fetch.Page, error) {
			return fetch.Page{URL: feedURL, ContentType: "application/rss+xml", Body: []byte(body)}, nil
		},
	}
}

func TestParser_Parse(t *testing.T) {
	rssContent := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Test Feed</title>
	<link>http://example.com</link>
	<description>Test Description</description>
	<item>
		<title>Test Article 1</title>
		<link>http://example.com/article1</link>
		<description>Article 1 description</description>
		<pubDate>Mon, 02 Jan 2006 15:04:05 -0700</pubDate>
		<guid>http://example.com/article1</guid>
	</item>
	<item>
		<title>Test Article 2</title>
		<link>  http://example.com/article2  </link>
		<description><![CDATA[<p>Article 2 <b>description</b></p>]]></description>
		<pubDate>Tue, 03 Jan 2006 15:04:05 +0000</pubDate>
	</item>
</channel>
</rss>`

	fetcher := pageFetcher(rssContent)
	parser := NewParser(fetcher)
	items, err := parser.Parse(context.Background(), "http://example.com/feed", "example")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "example", items[0].FeedName)
	assert.Equal(t, "Test Article 1", items[0].Title)
	assert.Equal(t, "http://example.com/article1", items[0].Link)
	assert.Equal(t, "Article 1 description", items[0].Description)
	assert.Equal(t, time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC), items[0].Published)
	assert.Equal(t, time.UTC, items[0].Published.Location())

	assert.Equal(t, "http://example.com/article2", items[1].Link)
	assert.Equal(t, "<p>Article 2 <b>description</b></p>", items[1].Description, "description kept raw for later cleaning")

	calls := fetcher.FetchFeedCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "http://example.com/feed", calls[0].FeedURL)
}

func TestParser_Atom(t *testing.T) {
	atomContent := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Atom Feed</title>
	<link href="http://example.com/"/>
	<updated>2024-01-01T00:00:00Z</updated>
	<entry>
		<title>Atom Entry</title>
		<link href="http://example.com/entry1"/>
		<id>urn:uuid:1</id>
		<updated>2024-01-01T10:00:00+02:00</updated>
		<summary>Atom summary</summary>
	</entry>
</feed>`

	items, err := NewParser(pageFetcher(atomContent)).Parse(context.Background(), "http://example.com/atom", "atom")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Atom Entry", items[0].Title)
	assert.Equal(t, "http://example.com/entry1", items[0].Link)
	assert.Equal(t, "Atom summary", items[0].Description)
	assert.Equal(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), items[0].Published)
}

func TestParser_MissingDateUsesNow(t *testing.T) {
	rssContent := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
	<item><title>No date</title><link>http://example.com/a</link></item>
	<item><title>Bad date</title><link>http://example.com/b</link><pubDate>not a date</pubDate></item>
</channel></rss>`

	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("X", 3600))
	parser := NewParser(pageFetcher(rssContent))
	parser.now = func() time.Time { return now }

	items, err := parser.Parse(context.Background(), "http://example.com/feed", "t")
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.True(t, now.Equal(item.Published), "item %q", item.Title)
		assert.Equal(t, time.UTC, item.Published.Location())
	}
}

func TestParser_TitleMarkup(t *testing.T) {
	rssContent := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
	<item>
		<title><![CDATA[<b>Bold</b> AI &amp; <script>alert(1)</script>robots]]></title>
		<link>http://example.com/a</link>
		<pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
	</item>
</channel></rss>`

	items, err := NewParser(pageFetcher(rssContent)).Parse(context.Background(), "http://example.com/feed", "t")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bold AI & robots", items[0].Title)
}

func TestParser_MissingFields(t *testing.T) {
	rssContent := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
	<item><description>only a description</description><pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate></item>
</channel></rss>`

	items, err := NewParser(pageFetcher(rssContent)).Parse(context.Background(), "http://example.com/feed", "t")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Title)
	assert.Empty(t, items[0].Link)
	assert.Equal(t, "only a description", items[0].Description)
}

func TestParser_Errors(t *testing.T) {
	t.Run("fetch error", func(t *testing.T) {
		fetcher := &mocks.FeedFetcherMock{
			FetchFeedFunc: func(ctx context.Context, feedURL string) (fetch.Page, error) {
				return fetch.Page{}, errors.New("connection refused")
			},
		}
		_, err := NewParser(fetcher).Parse(context.Background(), "http://example.com/feed", "t")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch feed")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("not a feed", func(t *testing.T) {
		_, err := NewParser(pageFetcher("<html><body>hello</body></html>")).Parse(context.Background(), "http://example.com/feed", "t")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse feed")
	})
}

func TestParser_WithHTTPClient(t *testing.T) {
	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
	<item><title>Over HTTP</title><link>http://example.com/a</link><pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate></item>
</channel></rss>`))
	}))
	defer server.Close()

	client := fetch.NewClient(fetch.Options{Timeout: 5 * time.Second})
	items, err := NewParser(client).Parse(context.Background(), server.URL, "http")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Over HTTP", items[0].Title)
	assert.Contains(t, gotAccept, "application/rss+xml")
}
