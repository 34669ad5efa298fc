// Package homepage reads Homepage dashboard files and turns their links into
// bookmark import entries.
package homepage

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ErrNoEntries is returned when a file parses but holds no usable link.
var ErrNoEntries = errors.New("no bookmarks found in homepage config")

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// LoadFile reads and parses a bookmarks.yaml or services.yaml file.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read homepage file: %w", err)
	}
	return Parse(data)
}

// Parse accepts either a bookmarks.yaml or a services.yaml document. The two
// layouts differ in the innermost value (a list for bookmarks, a map for
// services), so at most one of them decodes.
func Parse(data []byte) ([]Entry, error) {
	data = stripTemplateVariables(data)

	var bookmarks BookmarksConfig
	bookmarksErr := yaml.Unmarshal(data, &bookmarks)
	if bookmarksErr == nil {
		if entries := MapBookmarks(bookmarks); len(entries) > 0 {
			return entries, nil
		}
	}

	var services ServicesConfig
	if err := yaml.Unmarshal(data, &services); err != nil {
		if bookmarksErr != nil {
			return nil, fmt.Errorf("failed to parse homepage yaml: %w", bookmarksErr)
		}
		return nil, ErrNoEntries
	}
	entries := MapServices(services)
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return entries, nil
}

// stripTemplateVariables replaces Homepage template variables with an empty
// string. Example: {{HOMEPAGE_VAR_ADGUARD_URL}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
