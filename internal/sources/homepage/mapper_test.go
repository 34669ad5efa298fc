package homepage

import (
	"testing"
)

func TestMapBookmarksSkipsEmptyAndDuplicates(t *testing.T) {
	config := BookmarksConfig{
		{
			"Dev": []map[string][]BookmarkEntry{
				{"Github": {{Abbr: "GH", Href: "https://github.com/"}}},
				{"Empty": {}},
				{"NoHref": {{Abbr: "NH"}}},
			},
		},
		{
			"Again": []map[string][]BookmarkEntry{
				{"Github mirror": {{Href: " https://github.com/ "}}},
			},
		},
	}

	entries := MapBookmarks(config)
	if len(entries) != 1 {
		t.Fatalf("MapBookmarks() returned %d entries, want 1", len(entries))
	}
	if entries[0].Tags[0] != "Dev" {
		t.Errorf("first occurrence should win, got tags %v", entries[0].Tags)
	}
}

func TestMapServicesMultipleGroups(t *testing.T) {
	config := ServicesConfig{
		{"Group1": []map[string]ServiceProps{{"Service1": {Href: "https://service1.example.com"}}}},
		{"Group2": []map[string]ServiceProps{{"Service2": {Href: "https://service2.example.com"}}}},
	}

	entries := MapServices(config)
	if len(entries) != 2 {
		t.Fatalf("MapServices() returned %d entries, want 2", len(entries))
	}
	if entries[1].Name != "Service2" || entries[1].Tags[0] != "Group2" {
		t.Errorf("MapServices()[1] = %+v", entries[1])
	}
}

func TestMapServicesEmptyConfig(t *testing.T) {
	if entries := MapServices(ServicesConfig{}); len(entries) != 0 {
		t.Errorf("MapServices() with empty config = %v, want none", entries)
	}
}
