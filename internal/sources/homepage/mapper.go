package homepage

import (
	"sort"
	"strings"
)

// Entry is one link to import. The Homepage group becomes the only tag.
type Entry struct {
	Name string
	URL  string
	Tags []string
}

// MapBookmarks flattens a bookmarks.yaml document in file order. Items
// without an href and repeated URLs are dropped.
func MapBookmarks(config BookmarksConfig) []Entry {
	var entries []Entry
	seen := map[string]struct{}{}

	for _, group := range config {
		for _, groupName := range sortedKeys(group) {
			for _, item := range group[groupName] {
				for _, name := range sortedKeys(item) {
					list := item[name]
					if len(list) == 0 {
						continue
					}
					entries = appendEntry(entries, seen, groupName, name, list[0].Href)
				}
			}
		}
	}
	return entries
}

// MapServices flattens a services.yaml document in file order.
func MapServices(config ServicesConfig) []Entry {
	var entries []Entry
	seen := map[string]struct{}{}

	for _, group := range config {
		for _, groupName := range sortedKeys(group) {
			for _, item := range group[groupName] {
				for _, name := range sortedKeys(item) {
					entries = appendEntry(entries, seen, groupName, name, item[name].Href)
				}
			}
		}
	}
	return entries
}

func appendEntry(entries []Entry, seen map[string]struct{}, group, name, href string) []Entry {
	href = strings.TrimSpace(href)
	if href == "" {
		return entries
	}
	if _, dup := seen[href]; dup {
		return entries
	}
	seen[href] = struct{}{}

	var tags []string
	if g := strings.TrimSpace(group); g != "" {
		tags = []string{g}
	}
	return append(entries, Entry{Name: name, URL: href, Tags: tags})
}

// sortedKeys makes map iteration deterministic. Homepage maps have a single
// key in practice.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
