package content

import (
	"html"
	"regexp"
	"strings"
)

// tagRe matches anything between angle brackets on a single line. It is not a parser, malformed or
// multi-line markup may leak through or be over-stripped.
var tagRe = regexp.MustCompile(`<.*?>`)

// Clean decodes html entities, strips tags and trims the result
func Clean(fragment string) string {
	if fragment == "" {
		return ""
	}
	text := html.UnescapeString(fragment)
	text = tagRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
