package homepage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const bookmarksYAML = `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Go:
        - abbr: GO
          href: https://go.dev/
- Social:
    - Reddit:
        - abbr: RE
          href: https://reddit.com/
`

const servicesYAML = `---
- Infrastructure:
    - AdGuard Home:
        icon: adguard-home.svg
        href: https://adguard.domain.ext
        description: Network-wide ads & trackers blocking DNS server
        widget:
          type: adguard
          username: {{HOMEPAGE_VAR_ADGUARD_USER}}
`

func TestParseBookmarks(t *testing.T) {
	entries, err := Parse([]byte(bookmarksYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []Entry{
		{Name: "Github", URL: "https://github.com/", Tags: []string{"Developer"}},
		{Name: "Go", URL: "https://go.dev/", Tags: []string{"Developer"}},
		{Name: "Reddit", URL: "https://reddit.com/", Tags: []string{"Social"}},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("Parse() = %+v, want %+v", entries, want)
	}
}

func TestParseServices(t *testing.T) {
	entries, err := Parse([]byte(servicesYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Parse() returned %d entries, want 1", len(entries))
	}
	if entries[0].URL != "https://adguard.domain.ext" {
		t.Errorf("URL = %q", entries[0].URL)
	}
	if !reflect.DeepEqual(entries[0].Tags, []string{"Infrastructure"}) {
		t.Errorf("Tags = %v", entries[0].Tags)
	}
}

func TestParseTemplateHrefIsSkipped(t *testing.T) {
	data := `---
- Infra:
    - Secret:
        - href: {{HOMEPAGE_VAR_SECRET_URL}}
    - Public:
        - href: https://public.example.com
`
	entries, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 1 || entries[0].URL != "https://public.example.com" {
		t.Errorf("Parse() = %+v, want only the public entry", entries)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"empty document", "", ErrNoEntries},
		{"no hrefs", "- Group:\n    - Item:\n        - abbr: X\n", ErrNoEntries},
		{"not yaml list", "key: [unclosed", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.yaml")
	if err := os.WriteFile(path, []byte(bookmarksYAML), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	entries, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("LoadFile() returned %d entries, want 3", len(entries))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile() on a missing file should fail")
	}
}

func TestStripTemplateVariables(t *testing.T) {
	got := string(stripTemplateVariables([]byte("user: {{HOMEPAGE_VAR_USER}}\npass: {{HOMEPAGE_VAR_PASS}}")))
	want := "user: \"\"\npass: \"\""
	if got != want {
		t.Errorf("stripTemplateVariables() = %q, want %q", got, want)
	}
}
