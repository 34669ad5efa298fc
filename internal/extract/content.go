package extract

import (
	"regexp"
	"strings"
)

const (
	// MinContentLen is the length a structural candidate must exceed.
	MinContentLen = 50
	// MaxContentLen caps structural content before the ellipsis.
	MaxContentLen = 500
)

var (
	scriptTag   = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleTag    = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	noscriptTag = regexp.MustCompile(`(?is)<noscript\b[^>]*>.*?</noscript>`)
	navTag      = regexp.MustCompile(`(?is)<nav\b[^>]*>.*?</nav>`)
	headerTag   = regexp.MustCompile(`(?is)<header\b[^>]*>.*?</header>`)
	footerTag   = regexp.MustCompile(`(?is)<footer\b[^>]*>.*?</footer>`)
	comments    = regexp.MustCompile(`(?s)<!--.*?-->`)

	// Start tags of the structural candidates, in preference order. Group 1
	// is the element name, used to find the matching close tag.
	candidates = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<(main)\b[^>]*>`),
		regexp.MustCompile(`(?is)<(article)\b[^>]*>`),
		regexp.MustCompile(`(?is)<([a-z][a-z0-9]*)\b[^>]*\bclass\s*=\s*["'][^"']*content[^"']*["'][^>]*>`),
		regexp.MustCompile(`(?is)<([a-z][a-z0-9]*)\b[^>]*\bid\s*=\s*["']content["'][^>]*>`),
		regexp.MustCompile(`(?is)<(body)\b[^>]*>`),
	}
)

// StructuralContent returns readable text from the main region of the page.
// Chrome (scripts, styles, navigation, header, footer) is removed first, then
// main, article, .content, #content and body are tried in that order. The
// first candidate longer than MinContentLen wins and is capped at
// MaxContentLen runes.
func StructuralContent(page string) (string, bool) {
	page = stripChrome(page)

	for _, start := range candidates {
		inner, ok := firstElement(page, start)
		if !ok {
			continue
		}
		text := CleanText(inner)
		if Len(text) > MinContentLen {
			return Truncate(text, MaxContentLen), true
		}
	}

	// Fragments without a <body> are treated as the body itself.
	text := CleanText(page)
	if Len(text) > MinContentLen {
		return Truncate(text, MaxContentLen), true
	}
	return "", false
}

func stripChrome(page string) string {
	for _, re := range []*regexp.Regexp{comments, scriptTag, styleTag, noscriptTag, navTag, headerTag, footerTag} {
		page = re.ReplaceAllString(page, " ")
	}
	return page
}

// firstElement finds the first start tag matched by start and returns the
// markup up to its balanced close tag, or to the end of the page when the
// element is never closed.
func firstElement(page string, start *regexp.Regexp) (string, bool) {
	loc := start.FindStringSubmatchIndex(page)
	if loc == nil {
		return "", false
	}
	name := strings.ToLower(page[loc[2]:loc[3]])
	body := page[loc[1]:]
	return body[:closingIndex(body, name)], true
}

// closingIndex returns the offset of the close tag that balances an already
// opened element called name.
func closingIndex(body, name string) int {
	lower := strings.ToLower(body)
	open := "<" + name
	closing := "</" + name
	depth := 1
	i := 0
	for i < len(lower) {
		next := strings.IndexByte(lower[i:], '<')
		if next == -1 {
			break
		}
		i += next
		switch {
		case strings.HasPrefix(lower[i:], closing) && boundary(lower, i+len(closing)):
			depth--
			if depth == 0 {
				return i
			}
			i += len(closing)
		case strings.HasPrefix(lower[i:], open) && boundary(lower, i+len(open)):
			depth++
			i += len(open)
		default:
			i++
		}
	}
	return len(body)
}

// boundary reports whether the tag name ends at offset i.
func boundary(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	switch s[i] {
	case '>', '/', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
