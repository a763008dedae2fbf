// Package fetch is the outbound HTTP transport shared by the feed parser, the link resolver and the
// article extractor. Every call is a single blocking GET bounded by a fixed timeout.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// defaultMaxBody limits how much of a response is read
const defaultMaxBody = 5 << 20

// Page is a fetched response
type Page struct {
	URL         string // final URL after redirects
	ContentType string
	Body        []byte
}

// HTML returns the page body decoded to UTF-8 using the declared or sniffed charset
func (p Page) HTML() string {
	enc, _, _ := charset.DetermineEncoding(p.Body, p.ContentType)
	decoded, err := enc.NewDecoder().Bytes(p.Body)
	if err != nil {
		return string(p.Body)
	}
	return string(decoded)
}

// StatusError reports a response other than 200 OK. URL is the last URL of the redirect chain.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for URL %s", e.Code, e.URL)
}

// Options defines client parameters
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBody   int64
}

// Client fetches pages and feeds over HTTP
type Client struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewClient creates a new fetch client
func NewClient(opts Options) *Client {
	res := &Client{
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBody,
	}
	if res.userAgent == "" {
		res.userAgent = DefaultUserAgent
	}
	if res.maxBody <= 0 {
		res.maxBody = defaultMaxBody
	}
	return res
}

// Fetch retrieves an HTML document, following redirects. On a non-200 response the returned page
// still carries the final URL, with a *StatusError.
func (c *Client) Fetch(ctx context.Context, pageURL string) (Page, error) {
	return c.get(ctx, pageURL, addDocumentHeaders)
}

// FetchFeed retrieves a syndication document
func (c *Client) FetchFeed(ctx context.Context, feedURL string) (Page, error) {
	return c.get(ctx, feedURL, addFeedHeaders)
}

func (c *Client) get(ctx context.Context, rawURL string, headers func(*http.Request)) (Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse URL: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Page{}, fmt.Errorf("invalid URL: %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return Page{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	headers(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch URL %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL.String()
	if resp.StatusCode != http.StatusOK {
		return Page{URL: finalURL}, &StatusError{URL: finalURL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return Page{}, fmt.Errorf("read body of %s: %w", rawURL, err)
	}

	return Page{
		URL:         finalURL,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
