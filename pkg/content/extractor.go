package content

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/markusmobius/go-trafilatura"

	"github.com/rafaelamiranda/noticias-ia/pkg/fetch"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher

// Fetcher retrieves html pages
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (fetch.Page, error)
}

// HTTPExtractor fetches article pages and extracts their text
type HTTPExtractor struct {
	fetcher  Fetcher
	opts     ExtractOptions
	fallback bool // run trafilatura when the heuristics find nothing
}

// NewHTTPExtractor creates a new content extractor
func NewHTTPExtractor(fetcher Fetcher, opts ExtractOptions, fallback bool) *HTTPExtractor {
	return &HTTPExtractor{fetcher: fetcher, opts: opts.withDefaults(), fallback: fallback}
}

// Extract retrieves the page and returns its article text. Failures are logged and reported as
// Unavailable, never as errors.
func (e *HTTPExtractor) Extract(ctx context.Context, pageURL string) Result {
	page, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		lgr.Printf("[WARN] failed to fetch article %s: %v", pageURL, err)
		return Unavailable
	}

	body := page.HTML()
	res := Extract(body, e.opts)
	if res.Available() {
		return res
	}
	if !e.fallback {
		lgr.Printf("[DEBUG] no article content recognised at %s", pageURL)
		return Unavailable
	}

	text, err := e.extractFallback(body, page.URL)
	if err != nil {
		lgr.Printf("[DEBUG] fallback extraction failed for %s: %v", pageURL, err)
		return Unavailable
	}
	return finish(text, e.opts)
}

// extractFallback runs trafilatura over the page
func (e *HTTPExtractor) extractFallback(body, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   true,
		IncludeImages:   false,
		IncludeLinks:    false,
		Deduplicate:     true,
		OriginalURL:     parsedURL,
	}

	result, err := trafilatura.Extract(strings.NewReader(body), opts)
	if err != nil {
		return "", fmt.Errorf("extract content from %s: %w", pageURL, err)
	}
	if result == nil || strings.TrimSpace(result.ContentText) == "" {
		return "", fmt.Errorf("no text content extracted from %s", pageURL)
	}
	return result.ContentText, nil
}
