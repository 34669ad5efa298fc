package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MinDescriptionLen is the length a meta description must exceed to be used.
const MinDescriptionLen = 20

// Title returns the text of the first <title> element.
func Title(page string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(page))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) != atom.Title {
				continue
			}
			if z.Next() != html.TextToken {
				return "", false
			}
			t := CleanText(string(z.Raw()))
			return t, t != ""
		}
	}
}

// Favicon returns the absolute URL of the first icon declared by a <link>
// element. Absolute hrefs are returned unchanged, protocol-relative hrefs take
// the scheme of base, anything else is resolved against the origin of base.
func Favicon(page, base string) (string, bool) {
	var found string
	eachTag(page, atom.Link, func(attrs map[string]string) bool {
		if !isIconRel(attrs["rel"]) {
			return true
		}
		href := strings.TrimSpace(attrs["href"])
		if href == "" {
			return true
		}
		if abs, ok := ResolveAgainstOrigin(href, base); ok {
			found = abs
			return false
		}
		return true
	})
	return found, found != ""
}

// ResolveAgainstOrigin turns an icon href into an absolute URL.
func ResolveAgainstOrigin(href, base string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if ref.IsAbs() {
		return href, true
	}

	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" || b.Host == "" {
		return "", false
	}
	if strings.HasPrefix(href, "//") {
		return b.Scheme + ":" + href, true
	}

	origin := &url.URL{Scheme: b.Scheme, Host: b.Host, Path: "/"}
	return origin.ResolveReference(ref).String(), true
}

// MetaDescription returns the page's <meta name="description"> content when
// it is longer than MinDescriptionLen. An og:description is used when the
// plain description is missing.
func MetaDescription(page string) (string, bool) {
	var desc, og string
	eachTag(page, atom.Meta, func(attrs map[string]string) bool {
		content := CleanText(attrs["content"])
		switch {
		case strings.EqualFold(attrs["name"], "description"):
			if Len(content) > MinDescriptionLen {
				desc = content
				return false
			}
		case og == "" && strings.EqualFold(attrs["property"], "og:description"):
			og = content
		}
		return true
	})
	if desc != "" {
		return desc, true
	}
	if Len(og) > MinDescriptionLen {
		return og, true
	}
	return "", false
}

// eachTag calls fn with the attributes of every start tag named a, in
// document order, until fn returns false. Attribute names are lowercased and
// values entity-decoded. The first occurrence of a name wins.
func eachTag(page string, a atom.Atom, fn func(attrs map[string]string) bool) {
	z := html.NewTokenizer(strings.NewReader(page))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if atom.Lookup(name) != a {
			continue
		}

		attrs := make(map[string]string, 4)
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			k := string(key)
			if _, seen := attrs[k]; !seen {
				attrs[k] = string(val)
			}
		}
		if !fn(attrs) {
			return
		}
	}
}

func isIconRel(rel string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		if token == "icon" || token == "apple-touch-icon" {
			return true
		}
	}
	return false
}
