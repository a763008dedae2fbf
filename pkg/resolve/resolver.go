// Package resolve turns aggregator indirection links into publisher URLs. Resolution is layered
// and fails open: the worst outcome is the input link itself, never an error.
package resolve

import (
	"context"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-pkgz/lgr"
	"golang.org/x/net/publicsuffix"

	"github.com/rafaelamiranda/noticias-ia/pkg/fetch"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher

// Fetcher retrieves html pages following redirects
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (fetch.Page, error)
}

// Method tells which layer produced a resolution
type Method string

// enum of resolution methods
const (
	MethodDecoded   Method = "decoded"   // publisher URL decoded from the link itself
	MethodRedirect  Method = "redirect"  // redirect chain left the link's domain
	MethodDirect    Method = "direct"    // not an aggregator link, final URL after redirects
	MethodCanonical Method = "canonical" // canonical link tag of the aggregator page
	MethodScript    Method = "script"    // client-side navigation in the aggregator page
	MethodFallback  Method = "fallback"  // last URL observed while fetching
	MethodOriginal  Method = "original"  // nothing worked, the input link
)

// Resolution is the result of resolving a link
type Resolution struct {
	URL    string
	Method Method
}

// DefaultAggregators lists hosts whose pages are scanned for canonical and script redirects
var DefaultAggregators = []string{"news.google.com"}

var canonicalRes = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<link[^>]+rel=["']canonical["'][^>]*href=["']([^"']+)["']`),
	regexp.MustCompile(`(?is)<link[^>]+href=["']([^"']+)["'][^>]*rel=["']canonical["']`),
}

var scriptRes = []*regexp.Regexp{
	regexp.MustCompile(`window\.location\.href\s*=\s*['"](https?://[^'"]+)['"]`),
	regexp.MustCompile(`window\.location\s*=\s*['"](https?://[^'"]+)['"]`),
	regexp.MustCompile(`document\.location(?:\.href)?\s*=\s*['"](https?://[^'"]+)['"]`),
	regexp.MustCompile(`location\.href\s*=\s*['"](https?://[^'"]+)['"]`),
	regexp.MustCompile(`(?i)<meta[^>]*http-equiv\s*=\s*["']refresh["'][^>]*content\s*=\s*["'][^;]*;\s*url\s*=\s*(https?://[^"']+)["']`),
}

// Resolver finds the publisher URL behind a feed link
type Resolver struct {
	fetcher     Fetcher
	aggregators []string
}

// NewResolver makes a resolver, empty aggregators means DefaultAggregators
func NewResolver(fetcher Fetcher, aggregators []string) *Resolver {
	if len(aggregators) == 0 {
		aggregators = DefaultAggregators
	}
	res := &Resolver{fetcher: fetcher}
	for _, a := range aggregators {
		res.aggregators = append(res.aggregators, strings.ToLower(strings.TrimSpace(a)))
	}
	return res
}

// Resolve returns the best publisher URL it can find for link
func (r *Resolver) Resolve(ctx context.Context, link string) Resolution {
	if target, ok := decodeLink(link); ok {
		lgr.Printf("[DEBUG] decoded %s -> %s", link, target)
		return Resolution{URL: target, Method: MethodDecoded}
	}

	page, err := r.fetcher.Fetch(ctx, link)
	if err != nil && page.URL == "" {
		lgr.Printf("[WARN] can't resolve %s, keeping original: %v", link, err)
		return Resolution{URL: link, Method: MethodOriginal}
	}

	finalURL := page.URL
	if finalURL == "" {
		finalURL = link
	}

	if !sameDomain(link, finalURL) {
		if err != nil {
			lgr.Printf("[DEBUG] %s redirected to %s, which failed: %v", link, finalURL, err)
		}
		return Resolution{URL: finalURL, Method: MethodRedirect}
	}

	// response came back but not usable, keep the last URL the redirect chain reached
	if err != nil {
		lgr.Printf("[WARN] can't read %s, using it as is: %v", finalURL, err)
		return Resolution{URL: finalURL, Method: MethodFallback}
	}

	if !r.isAggregator(link) {
		return Resolution{URL: finalURL, Method: MethodDirect}
	}

	body := page.HTML()
	if target, ok := r.scan(body, canonicalRes, link); ok {
		return Resolution{URL: target, Method: MethodCanonical}
	}
	if target, ok := r.scan(body, scriptRes, link); ok {
		return Resolution{URL: target, Method: MethodScript}
	}

	lgr.Printf("[WARN] no publisher URL found for %s, using %s", link, finalURL)
	return Resolution{URL: finalURL, Method: MethodFallback}
}

// scan returns the first absolute target found by patterns that points away from the link's domain
func (r *Resolver) scan(body string, patterns []*regexp.Regexp, link string) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		target := html.UnescapeString(strings.TrimSpace(m[1]))
		if isAbsoluteHTTP(target) && !sameDomain(link, target) {
			return target, true
		}
	}
	return "", false
}

func (r *Resolver) isAggregator(link string) bool {
	host := hostOf(link)
	for _, a := range r.aggregators {
		if host == a || strings.HasSuffix(host, "."+a) {
			return true
		}
	}
	return false
}

// sameDomain compares registrable domains, falling back to plain hosts for IPs and local names
func sameDomain(a, b string) bool {
	ha, hb := hostOf(a), hostOf(b)
	if ha == "" || hb == "" {
		return ha == hb
	}
	da, errA := publicsuffix.EffectiveTLDPlusOne(ha)
	db, errB := publicsuffix.EffectiveTLDPlusOne(hb)
	if errA != nil || errB != nil {
		return ha == hb
	}
	return da == db
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func isAbsoluteHTTP(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
