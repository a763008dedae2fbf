package resolve

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// indirectionRe matches aggregator links that carry the publisher URL as an encoded path segment
var indirectionRe = regexp.MustCompile(`^https?://news\.google\.com/(?:rss/)?articles/([A-Za-z0-9_-]+)`)

// embeddedURLRe finds an absolute URL inside decoded bytes, stopping at the first non-URL byte
var embeddedURLRe = regexp.MustCompile(`https?://[A-Za-z0-9\-._~:/?#\[\]@!$&'()*+,;=%]+`)

// decodeLink extracts the publisher URL embedded in an aggregator indirection link.
// Returns false if the link is not an indirection link or carries no URL.
func decodeLink(link string) (string, bool) {
	m := indirectionRe.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}

	segment := m[1]
	if rem := len(segment) % 4; rem != 0 {
		segment += strings.Repeat("=", 4-rem)
	}

	decoded, err := base64.URLEncoding.DecodeString(segment)
	if err != nil {
		return "", false
	}

	found := embeddedURLRe.Find(decoded)
	if found == nil {
		return "", false
	}
	return string(found), true
}
