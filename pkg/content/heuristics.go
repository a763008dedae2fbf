package content

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// UnavailableText is what an unavailable result prints as
const UnavailableText = "Conteúdo não disponível"

const ellipsis = "..."

// Result is the outcome of article extraction, either readable text or Unavailable
type Result struct {
	text string
}

// Unavailable is returned when no article text could be extracted
var Unavailable = Result{}

// Found wraps extracted text, empty text is Unavailable
func Found(text string) Result {
	return Result{text: strings.TrimSpace(text)}
}

// Available reports whether the result carries text
func (r Result) Available() bool { return r.text != "" }

// Text returns the extracted text, empty for Unavailable
func (r Result) Text() string { return r.text }

func (r Result) String() string {
	if !r.Available() {
		return UnavailableText
	}
	return r.text
}

// ExtractOptions bounds the heuristic extraction
type ExtractOptions struct {
	MaxChars        int // output budget in characters, including the ellipsis
	MinLineLen      int // shorter lines are dropped
	MinParagraphLen int // shorter paragraphs are ignored by the paragraph fallback
}

// DefaultExtractOptions returns the stock limits
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{MaxChars: 2300, MinLineLen: 20, MinParagraphLen: 50}
}

func (o ExtractOptions) withDefaults() ExtractOptions {
	def := DefaultExtractOptions()
	if o.MaxChars <= 0 {
		o.MaxChars = def.MaxChars
	}
	if o.MinLineLen <= 0 {
		o.MinLineLen = def.MinLineLen
	}
	if o.MinParagraphLen <= 0 {
		o.MinParagraphLen = def.MinParagraphLen
	}
	return o
}

// noiseBlocks are removed wholesale, inner content included
var noiseBlocks = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
	regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`),
	regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`),
	regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`),
	regexp.MustCompile(`(?is)<aside[^>]*>.*?</aside>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*sidebar[^"]*"[^>]*>.*?</div>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*menu[^"]*"[^>]*>.*?</div>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*\b(?:ad|ads|advert[a-z]*)\b[^"]*"[^>]*>.*?</div>`),
}

// containers are tried in order, most specific first
var containers = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*entry-content[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*post-content[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*article-body[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*story-body[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*content-body[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?is)<section[^>]*class="[^"]*article-content[^"]*"[^>]*>(.*?)</section>`),
	regexp.MustCompile(`(?is)<article[^>]*>(.*?)</article>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*text[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?is)<main[^>]*>(.*?)</main>`),
}

var (
	paragraphRe    = regexp.MustCompile(`(?is)<p(?:\s[^>]*)?>(.*?)</p>`)
	blockBreakRe   = regexp.MustCompile(`(?i)</p>|<br\s*/?>|</h[1-6]>|</li>|</div>`)
	linkOrMailRe   = regexp.MustCompile(`(?i)https?://|www\.|\S+@\S+\.[a-z]{2,}`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
	multiSpaceRe   = regexp.MustCompile(` {2,}`)
)

// denyKeywords mark metadata lines, matched against the lowercased line
var denyKeywords = []string{
	"compartilh", "share", "twitter", "facebook", "instagram",
	"por:", "by:", "fonte:", "source:", "publicado", "published",
	"atualizado", "updated", "tags:", "categoria:", "category:",
	"leia mais", "read more", "clique aqui", "click here",
	"assine", "subscribe", "newsletter", "comments", "comentários",
}

// Extract isolates the main editorial text of an html page. It is a best-effort regex scraper and
// returns Unavailable when nothing recognisable is found.
func Extract(body string, opts ExtractOptions) Result {
	opts = opts.withDefaults()

	for _, re := range noiseBlocks {
		body = re.ReplaceAllString(body, "")
	}

	var content string
	for _, re := range containers {
		matches := re.FindAllStringSubmatch(body, -1)
		if len(matches) == 0 {
			continue
		}
		for _, m := range matches {
			if len(m[1]) > len(content) {
				content = m[1]
			}
		}
		break
	}

	if strings.TrimSpace(content) == "" {
		var paragraphs []string
		for _, m := range paragraphRe.FindAllStringSubmatch(body, -1) {
			if utf8.RuneCountInString(Clean(m[1])) > opts.MinParagraphLen {
				paragraphs = append(paragraphs, m[1])
			}
		}
		content = strings.Join(paragraphs, "\n")
	}

	if strings.TrimSpace(content) == "" {
		return Unavailable
	}

	content = blockBreakRe.ReplaceAllString(content, "\n")
	return finish(Clean(content), opts)
}

// finish filters plain text line by line, joins the survivors into paragraphs and enforces the budget
func finish(text string, opts ExtractOptions) Result {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || utf8.RuneCountInString(line) < opts.MinLineLen {
			continue
		}
		if isMetadata(line) || linkOrMailRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}

	res := strings.Join(kept, "\n\n")
	res = multiNewlineRe.ReplaceAllString(res, "\n\n")
	res = multiSpaceRe.ReplaceAllString(res, " ")
	return Found(truncate(res, opts.MaxChars))
}

func isMetadata(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range denyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// truncate cuts s to limit characters, the ellipsis counts toward the limit
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	keep := limit - utf8.RuneCountInString(ellipsis)
	if keep < 0 {
		keep = 0
	}
	return strings.TrimRight(string(runes[:keep]), " \n") + ellipsis
}
