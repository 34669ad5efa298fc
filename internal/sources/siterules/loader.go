package siterules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/linksaver/internal/extract"
)

// File is the root structure of the site rules yaml.
//
//	rules:
//	  - host: xpectrum-ai.com
//	    tags: [h1, h2, h3, p]
//	    text_classes: [text]
//	    min_fragment: 10
//	    max_chars: 800
type File struct {
	Rules []extract.SiteRule `yaml:"rules"`
}

// Loader reads site rules from a yaml file.
type Loader struct {
	filePath string
}

// NewLoader creates a new site rules loader.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Path returns the watched file.
func (l *Loader) Path() string { return l.filePath }

// Load reads and parses the rules file.
func (l *Loader) Load() ([]extract.SiteRule, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read site rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes rules from yaml and rejects entries without a host.
func Parse(data []byte) ([]extract.SiteRule, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse site rules yaml: %w", err)
	}

	rules := make([]extract.SiteRule, 0, len(file.Rules))
	for i, r := range file.Rules {
		if r.Host == "" {
			return nil, fmt.Errorf("site rule %d has no host", i)
		}
		rules = append(rules, r.WithDefaults())
	}
	return rules, nil
}
