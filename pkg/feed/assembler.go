package feed

import (
	"context"
	"log"
	"slices"
	"time"

	"github.com/rafaelamiranda/noticias-ia/pkg/config"
	"github.com/rafaelamiranda/noticias-ia/pkg/content"
	"github.com/rafaelamiranda/noticias-ia/pkg/feed/types"
	"github.com/rafaelamiranda/noticias-ia/pkg/resolve"
)

//go:generate moq -out mocks/source.go -pkg mocks -skip-ensure -fmt goimports . Source
//go:generate moq -out mocks/resolver.go -pkg mocks -skip-ensure -fmt goimports . Resolver
//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor

// Source retrieves and parses RSS/Atom feeds
type Source interface {
	Parse(ctx context.Context, feedURL, feedName string) ([]types.Item, error)
}

// Resolver finds the publisher URL behind a feed link
type Resolver interface {
	Resolve(ctx context.Context, link string) resolve.Resolution
}

// Extractor extracts article text from a page URL
type Extractor interface {
	Extract(ctx context.Context, pageURL string) content.Result
}

// AssemblerConfig holds the limits applied while assembling
type AssemblerConfig struct {
	Window time.Duration    // max age of an entry, zero keeps everything
	Pause  time.Duration    // politeness delay between per-entry network operations
	Now    func() time.Time // clock, time.Now if nil
}

// Assembler builds the entries of a generated feed. It works strictly sequentially: one feed, one
// resolution, one extraction at a time.
type Assembler struct {
	source    Source
	resolver  Resolver
	extractor Extractor
	cfg       AssemblerConfig
}

// NewAssembler creates a new feed assembler
func NewAssembler(source Source, resolver Resolver, extractor Extractor, cfg AssemblerConfig) *Assembler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Assembler{source: source, resolver: resolver, extractor: extractor, cfg: cfg}
}

// Assemble collects entries from all feeds, keeps those inside the recency window and orders them
// most recent first. A feed that fails contributes nothing, the others are still processed.
func (a *Assembler) Assemble(ctx context.Context, feeds []config.Feed) []types.Entry {
	entries := make([]types.Entry, 0)
	processed := 0

	for _, f := range feeds {
		log.Printf("[INFO] fetching feed: %s (%s)", f.Name, f.URL)
		items, err := a.source.Parse(ctx, f.URL, f.Name)
		if err != nil {
			log.Printf("[WARN] failed to fetch %s: %v", f.Name, err)
			continue
		}
		log.Printf("[INFO] fetched %d items from %s", len(items), f.Name)

		for _, item := range items {
			if processed > 0 && !a.wait(ctx) {
				log.Printf("[WARN] assembly interrupted: %v", ctx.Err())
				return a.finalize(entries)
			}
			entries = append(entries, a.buildEntry(ctx, item))
			processed++
		}
	}

	return a.finalize(entries)
}

// buildEntry resolves the item link and prefers extracted article text over the feed description
func (a *Assembler) buildEntry(ctx context.Context, item types.Item) types.Entry {
	entry := types.Entry{
		FeedName:     item.FeedName,
		Title:        item.Title,
		SourceLink:   item.Link,
		ResolvedLink: item.Link,
		Published:    item.Published,
	}

	if item.Link == "" {
		log.Printf("[WARN] item %q in %s has no link", item.Title, item.FeedName)
		entry.Description = content.Clean(item.Description)
		return entry
	}

	res := a.resolver.Resolve(ctx, item.Link)
	entry.ResolvedLink = res.URL
	log.Printf("[DEBUG] resolved %s -> %s (%s)", item.Link, res.URL, res.Method)

	extracted := a.extractor.Extract(ctx, entry.ResolvedLink)
	if extracted.Available() {
		entry.Description = extracted.Text()
		return entry
	}

	log.Printf("[INFO] content unavailable for %q, using feed description", item.Title)
	entry.Description = content.Clean(item.Description)
	return entry
}

// finalize filters by recency and sorts by publication time, newest first, ties in encounter order
func (a *Assembler) finalize(entries []types.Entry) []types.Entry {
	now := a.cfg.Now()
	recent := make([]types.Entry, 0, len(entries))
	for _, e := range entries {
		if a.cfg.Window > 0 && now.Sub(e.Published) > a.cfg.Window {
			continue
		}
		recent = append(recent, e)
	}

	slices.SortStableFunc(recent, func(x, y types.Entry) int {
		return y.Published.Compare(x.Published)
	})

	log.Printf("[INFO] %d of %d entries within %v", len(recent), len(entries), a.cfg.Window)
	return recent
}

// wait sleeps for the configured pause, returns false if the context is done
func (a *Assembler) wait(ctx context.Context) bool {
	if a.cfg.Pause <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(a.cfg.Pause):
		return true
	}
}
