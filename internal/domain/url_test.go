package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"https", "https://example.com/a?b=c", false},
		{"http with spaces", "  http://example.com  ", false},
		{"empty", "", true},
		{"no scheme", "example.com/foo", true},
		{"ftp", "ftp://example.com", true},
		{"no host", "https:///path", true},
		{"garbage", "http://[::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("ParseURL(%q) error = %v, want ErrValidation", tt.raw, err)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"trim and dedupe", []string{" go ", "go", "", "web"}, []string{"go", "web"}},
		{"order kept", []string{"b", "a", "b"}, []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTags(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookmarkClone(t *testing.T) {
	b := &Bookmark{ID: "1", Tags: []string{"a"}, Position: IntPtr(3)}
	c := b.Clone()

	c.Tags[0] = "z"
	*c.Position = 9

	if b.Tags[0] != "a" {
		t.Errorf("Clone() shares tags: got %v", b.Tags)
	}
	if *b.Position != 3 {
		t.Errorf("Clone() shares position: got %d", *b.Position)
	}
	if !c.HasPosition() {
		t.Errorf("HasPosition() = false, want true")
	}
}
