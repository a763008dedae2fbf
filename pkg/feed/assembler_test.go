package feed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelamiranda/noticias-ia/pkg/config"
	"github.com/rafaelamiranda/noticias-ia/pkg/content"
	"github.com/rafaelamiranda/noticias-ia/pkg/feed"
	"github.com/rafaelamiranda/noticias-ia/pkg/feed/mocks"
	"github.com/rafaelamiranda/noticias-ia/pkg/feed/types"
	"github.com/rafaelamiranda/noticias-ia/pkg/resolve"
)

var fixedNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func passthroughResolver() *mocks.ResolverMock {
	return &mocks.ResolverMock{
		ResolveFunc: func(ctx context.Context, link string) resolve.Resolution {
			return resolve.Resolution{URL: link, Method: resolve.MethodDirect}
		},
	}
}

func unavailableExtractor() *mocks.ExtractorMock {
	return &mocks.ExtractorMock{
		ExtractFunc: func(ctx context.Context, pageURL string) content.Result {
			return content.Unavailable
		},
	}
}

func staticSource(items map[string][]types.Item) *mocks.SourceMock {
	return &mocks.SourceMock{
		ParseFunc: func(ctx context.Context, feedURL, feedName string) ([]types.Item, error) {
			res, ok := items[feedURL]
			if !ok {
				return nil, errors.New("feed not found")
			}
			return res, nil
		},
	}
}

func TestAssembler_RecencyWindow(t *testing.T) {
	source := staticSource(map[string][]types.Item{
		"https://a.com/feed": {
			{FeedName: "a", Title: "fresh", Link: "https://a.com/1", Description: "fresh desc", Published: fixedNow.Add(-2 * time.Hour)},
			{FeedName: "a", Title: "stale", Link: "https://a.com/2", Description: "stale desc", Published: fixedNow.Add(-30 * time.Hour)},
		},
	})

	asm := feed.NewAssembler(source, passthroughResolver(), unavailableExtractor(),
		feed.AssemblerConfig{Window: 24 * time.Hour, Now: func() time.Time { return fixedNow }})

	entries := asm.Assemble(context.Background(), []config.Feed{{Name: "a", URL: "https://a.com/feed"}})
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].Title)
	assert.Equal(t, "fresh desc", entries[0].Description)
}

func TestAssembler_ZeroWindowKeepsEverything(t *testing.T) {
	source := staticSource(map[string][]types.Item{
		"https://a.com/feed": {
			{Title: "old", Link: "https://a.com/1", Published: fixedNow.AddDate(-1, 0, 0)},
		},
	})

	asm := feed.NewAssembler(source, passthroughResolver(), unavailableExtractor(),
		feed.AssemblerConfig{Now: func() time.Time { return fixedNow }})

	entries := asm.Assemble(context.Background(), []config.Feed{{Name: "a", URL: "https://a.com/feed"}})
	assert.Len(t, entries, 1)
}

func TestAssembler_OrderAcrossFeeds(t *testing.T) {
	same := fixedNow.Add(-5 * time.Hour)
	source := staticSource(map[string][]types.Item{
		"https://a.com/feed": {
			{Title: "a-old", Link: "https://a.com/1", Published: fixedNow.Add(-10 * time.Hour)},
			{Title: "a-tie", Link: "https://a.com/2", Published: same},
		},
		"https://b.com/feed": {
			{Title: "b-new", Link: "https://b.com/1", Published: fixedNow.Add(-1 * time.Hour)},
			{Title: "b-tie", Link: "https://b.com/2", Published: same},
		},
	})

	asm := feed.NewAssembler(source, passthroughResolver(), unavailableExtractor(),
		feed.AssemblerConfig{Window: 24 * time.Hour, Now: func() time.Time { return fixedNow }})

	entries := asm.Assemble(context.Background(), []config.Feed{
		{Name: "a", URL: "https://a.com/feed"},
		{Name: "b", URL: "https://b.com/feed"},
	})

	titles := make([]string, 0, len(entries))
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	// ties keep encounter order
	assert.Equal(t, []string{"b-new", "a-tie", "b-tie", "a-old"}, titles)

	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Published.After(entries[i-1].Published))
	}
}

func TestAssembler_PrefersExtractedText(t *testing.T) {
	source := staticSource(map[string][]types.Item{
		"https://news.google.com/rss": {
			{Title: "with text", Link: "https://news.google.com/rss/articles/abc", Description: "<b>feed</b> text", Published: fixedNow},
			{Title: "without text", Link: "https://news.google.com/rss/articles/def", Description: "<b>feed</b> &amp; summary", Published: fixedNow.Add(-time.Hour)},
		},
	})

	resolver := &mocks.ResolverMock{
		ResolveFunc: func(ctx context.Context, link string) resolve.Resolution {
			switch link {
			case "https://news.google.com/rss/articles/abc":
				return resolve.Resolution{URL: "https://publisher.com/abc", Method: resolve.MethodDecoded}
			default:
				return resolve.Resolution{URL: "https://other.com/def", Method: resolve.MethodRedirect}
			}
		},
	}
	extractor := &mocks.ExtractorMock{
		ExtractFunc: func(ctx context.Context, pageURL string) content.Result {
			if pageURL == "https://publisher.com/abc" {
				return content.Found("article body from the publisher")
			}
			return content.Unavailable
		},
	}

	asm := feed.NewAssembler(source, resolver, extractor,
		feed.AssemblerConfig{Window: 24 * time.Hour, Now: func() time.Time { return fixedNow }})
	entries := asm.Assemble(context.Background(), []config.Feed{{Name: "g", URL: "https://news.google.com/rss"}})
	require.Len(t, entries, 2)

	assert.Equal(t, "https://news.google.com/rss/articles/abc", entries[0].SourceLink)
	assert.Equal(t, "https://publisher.com/abc", entries[0].ResolvedLink)
	assert.Equal(t, "article body from the publisher", entries[0].Description)

	assert.Equal(t, "https://other.com/def", entries[1].ResolvedLink)
	assert.Equal(t, "feed & summary", entries[1].Description)

	// extraction always runs against the resolved link
	calls := extractor.ExtractCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "https://publisher.com/abc", calls[0].PageURL)
	assert.Equal(t, "https://other.com/def", calls[1].PageURL)
}

func TestAssembler_FeedFailureIsIsolated(t *testing.T) {
	source := staticSource(map[string][]types.Item{
		"https://ok.com/feed": {{Title: "ok", Link: "https://ok.com/1", Published: fixedNow}},
	})

	asm := feed.NewAssembler(source, passthroughResolver(), unavailableExtractor(),
		feed.AssemblerConfig{Window: 24 * time.Hour, Now: func() time.Time { return fixedNow }})
	entries := asm.Assemble(context.Background(), []config.Feed{
		{Name: "broken", URL: "https://broken.com/feed"},
		{Name: "ok", URL: "https://ok.com/feed"},
	})

	require.Len(t, entries, 1)
	assert.Equal(t, "ok", entries[0].Title)
	assert.Len(t, source.ParseCalls(), 2)
}

func TestAssembler_ItemWithoutLink(t *testing.T) {
	source := staticSource(map[string][]types.Item{
		"https://a.com/feed": {{Title: "no link", Description: "<p>just the summary</p>", Published: fixedNow}},
	})
	resolver := passthroughResolver()
	extractor := unavailableExtractor()

	asm := feed.NewAssembler(source, resolver, extractor,
		feed.AssemblerConfig{Window: 24 * time.Hour, Now: func() time.Time { return fixedNow }})
	entries := asm.Assemble(context.Background(), []config.Feed{{Name: "a", URL: "https://a.com/feed"}})

	require.Len(t, entries, 1)
	assert.Equal(t, "just the summary", entries[0].Description)
	assert.Empty(t, entries[0].ResolvedLink)
	assert.Empty(t, resolver.ResolveCalls())
	assert.Empty(t, extractor.ExtractCalls())
}

func TestAssembler_EmptyFeeds(t *testing.T) {
	asm := feed.NewAssembler(staticSource(nil), passthroughResolver(), unavailableExtractor(), feed.AssemblerConfig{})
	entries := asm.Assemble(context.Background(), nil)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestAssembler_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := staticSource(map[string][]types.Item{
		"https://a.com/feed": {
			{Title: "first", Link: "https://a.com/1", Published: fixedNow},
			{Title: "second", Link: "https://a.com/2", Published: fixedNow},
			{Title: "third", Link: "https://a.com/3", Published: fixedNow},
		},
	})
	extractor := &mocks.ExtractorMock{
		ExtractFunc: func(ctx context.Context, pageURL string) content.Result {
			cancel() // stop after the first entry
			return content.Unavailable
		},
	}

	asm := feed.NewAssembler(source, passthroughResolver(), extractor,
		feed.AssemblerConfig{Window: 24 * time.Hour, Pause: time.Minute, Now: func() time.Time { return fixedNow }})

	start := time.Now()
	entries := asm.Assemble(ctx, []config.Feed{{Name: "a", URL: "https://a.com/feed"}})
	assert.Less(t, time.Since(start), 10*time.Second)
	require.Len(t, entries, 1)
	assert.Equal(t, "first", entries[0].Title)
}

func TestAssembler_PauseBetweenEntries(t *testing.T) {
	source := staticSource(map[string][]types.Item{
		"https://a.com/feed": {
			{Title: "first", Link: "https://a.com/1", Published: fixedNow},
			{Title: "second", Link: "https://a.com/2", Published: fixedNow},
		},
	})

	pause := 50 * time.Millisecond
	asm := feed.NewAssembler(source, passthroughResolver(), unavailableExtractor(),
		feed.AssemblerConfig{Window: 24 * time.Hour, Pause: pause, Now: func() time.Time { return fixedNow }})

	start := time.Now()
	entries := asm.Assemble(context.Background(), []config.Feed{{Name: "a", URL: "https://a.com/feed"}})
	assert.Len(t, entries, 2)
	assert.GreaterOrEqual(t, time.Since(start), pause)
}
