package extract

import (
	"regexp"
	"strings"
)

// SiteRule describes structured extraction for a site whose pages keep their
// copy in plain heading/paragraph elements and text-classed divs.
type SiteRule struct {
	// Host matches the page host exactly or as a parent domain.
	Host string `yaml:"host"`
	// Tags are the elements read first, one tag after the other. Default: h1, h2, h3, p.
	Tags []string `yaml:"tags"`
	// TextClasses select divs read after Tags. Default: text.
	TextClasses []string `yaml:"text_classes"`
	// MinFragment is the length a fragment must exceed to be kept. Default: 10.
	MinFragment int `yaml:"min_fragment"`
	// MaxChars caps the joined text before the ellipsis. Default: 800.
	MaxChars int `yaml:"max_chars"`
}

// WithDefaults fills unset fields.
func (r SiteRule) WithDefaults() SiteRule {
	if len(r.Tags) == 0 {
		r.Tags = []string{"h1", "h2", "h3", "p"}
	}
	if len(r.TextClasses) == 0 {
		r.TextClasses = []string{"text"}
	}
	if r.MinFragment <= 0 {
		r.MinFragment = 10
	}
	if r.MaxChars <= 0 {
		r.MaxChars = 800
	}
	return r
}

// Matches reports whether host is the rule's host or one of its subdomains.
func (r SiteRule) Matches(host string) bool {
	want := strings.ToLower(strings.TrimSpace(r.Host))
	if want == "" {
		return false
	}
	host = strings.ToLower(host)
	if i := strings.LastIndexByte(host, ':'); i != -1 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return host == want || strings.HasSuffix(host, "."+want)
}

// SiteContent reads the elements named by rule section by section: every
// match of the first tag, then of the next one, then the text-classed divs.
// Tag elements must hold plain text; divs may nest markup, which is stripped.
// Fragments longer than MinFragment are joined.
func SiteContent(page string, rule SiteRule) (string, bool) {
	rule = rule.WithDefaults()

	var parts []string
	keep := func(raw string) {
		text := CleanText(raw)
		if Len(text) > rule.MinFragment {
			parts = append(parts, text)
		}
	}

	for _, re := range textElements(rule.Tags) {
		for _, m := range re.FindAllStringSubmatch(page, -1) {
			keep(m[1])
		}
	}
	if re := textClassDivs(rule.TextClasses); re != nil {
		for _, m := range re.FindAllStringSubmatch(page, -1) {
			keep(m[1])
		}
	}

	if len(parts) == 0 {
		return "", false
	}
	return Truncate(strings.Join(parts, " "), rule.MaxChars), true
}

func textElements(tags []string) []*regexp.Regexp {
	names := quoteAll(tags)
	out := make([]*regexp.Regexp, 0, len(names))
	for _, name := range names {
		out = append(out, regexp.MustCompile(`(?is)<`+name+`\b[^>]*>([^<]+)</`+name+`\s*>`))
	}
	return out
}

func textClassDivs(classes []string) *regexp.Regexp {
	names := quoteAll(classes)
	if len(names) == 0 {
		return nil
	}
	alt := strings.Join(names, "|")
	return regexp.MustCompile(`(?is)<div\b[^>]*\bclass\s*=\s*["'][^"']*(?:` + alt + `)[^"']*["'][^>]*>(.*?)</div\s*>`)
}

func quoteAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, regexp.QuoteMeta(s))
		}
	}
	return out
}
