package extract

import (
	"strings"
	"testing"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name   string
		page   string
		want   string
		wantOK bool
	}{
		{"plain", "<html><head><title>Hello</title></head></html>", "Hello", true},
		{"entities and whitespace", "<title>\n  Tom &amp; Jerry \n</title>", "Tom & Jerry", true},
		{"attributes", `<TITLE data-x="1">Upper</TITLE>`, "Upper", true},
		{"missing", "<html><body>no title</body></html>", "", false},
		{"empty", "<title>   </title>", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Title(tt.page)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Title() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFavicon(t *testing.T) {
	tests := []struct {
		name   string
		page   string
		base   string
		want   string
		wantOK bool
	}{
		{
			name:   "root relative",
			page:   `<link rel="icon" href="/f.ico">`,
			base:   "https://a.com/x",
			want:   "https://a.com/f.ico",
			wantOK: true,
		},
		{
			name:   "href before rel",
			page:   `<link href="/static/icon.png" rel="shortcut icon">`,
			base:   "https://a.com/deep/page?q=1",
			want:   "https://a.com/static/icon.png",
			wantOK: true,
		},
		{
			name:   "absolute kept",
			page:   `<link rel='icon' href='https://cdn.b.com/i.png'>`,
			base:   "https://a.com/",
			want:   "https://cdn.b.com/i.png",
			wantOK: true,
		},
		{
			name:   "protocol relative",
			page:   `<link rel="icon" href="//cdn.b.com/i.png">`,
			base:   "http://a.com/",
			want:   "http://cdn.b.com/i.png",
			wantOK: true,
		},
		{
			name:   "path relative resolved against origin",
			page:   `<link rel="icon" href="img/i.png">`,
			base:   "https://a.com/blog/post",
			want:   "https://a.com/img/i.png",
			wantOK: true,
		},
		{
			name:   "stylesheet ignored",
			page:   `<link rel="stylesheet" href="/s.css"><link rel="apple-touch-icon" href="/t.png">`,
			base:   "https://a.com",
			want:   "https://a.com/t.png",
			wantOK: true,
		},
		{
			name:   "none",
			page:   `<link rel="stylesheet" href="/s.css">`,
			base:   "https://a.com",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Favicon(tt.page, tt.base)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Favicon() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMetaDescription(t *testing.T) {
	long := "A description that is clearly longer than twenty characters"
	tests := []struct {
		name   string
		page   string
		want   string
		wantOK bool
	}{
		{"name first", `<meta name="description" content="` + long + `">`, long, true},
		{"content first", `<meta content="` + long + `" name="Description">`, long, true},
		{"too short", `<meta name="description" content="twenty chars exactly">`, "", false},
		{"og fallback", `<meta property="og:description" content="` + long + `">`, long, true},
		{"missing", `<meta charset="utf-8">`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MetaDescription(tt.page)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("MetaDescription() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStructuralContent(t *testing.T) {
	para := strings.Repeat("Readable sentence about the page. ", 4)

	tests := []struct {
		name     string
		page     string
		contains string
		excludes string
		wantOK   bool
	}{
		{
			name:     "main preferred",
			page:     "<body><nav>" + para + "</nav><main><p>" + para + "</p></main></body>",
			contains: "Readable sentence",
			wantOK:   true,
		},
		{
			name:     "scripts removed",
			page:     "<body><script>var secret = 1;</script><article>" + para + "</article></body>",
			contains: "Readable sentence",
			excludes: "secret",
			wantOK:   true,
		},
		{
			name:     "nested content div",
			page:     `<body><div class="page content wide"><div>inner</div><p>` + para + `</p></div></body>`,
			contains: "inner Readable",
			wantOK:   true,
		},
		{
			name:     "hyphenated content class",
			page:     `<body><div class="sidebar">Sidebar links and promotions</div><div class="post-content"><p>` + para + `</p></div></body>`,
			contains: "Readable sentence",
			excludes: "Sidebar",
			wantOK:   true,
		},
		{
			name:     "short main falls through to body",
			page:     "<body><main>tiny</main><p>" + para + "</p></body>",
			contains: "tiny Readable",
			wantOK:   true,
		},
		{
			name:   "too short everywhere",
			page:   "<body><p>short text</p></body>",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StructuralContent(tt.page)
			if ok != tt.wantOK {
				t.Fatalf("StructuralContent() ok = %v, want %v (got %q)", ok, tt.wantOK, got)
			}
			if tt.contains != "" && !strings.Contains(got, tt.contains) {
				t.Errorf("StructuralContent() = %q, want it to contain %q", got, tt.contains)
			}
			if tt.excludes != "" && strings.Contains(got, tt.excludes) {
				t.Errorf("StructuralContent() = %q, must not contain %q", got, tt.excludes)
			}
		})
	}
}

func TestStructuralContentTruncates(t *testing.T) {
	page := "<main>" + strings.Repeat("é", 700) + "</main>"

	got, ok := StructuralContent(page)
	if !ok {
		t.Fatal("StructuralContent() ok = false, want true")
	}
	if Len(got) != MaxContentLen+len(Ellipsis) {
		t.Errorf("len = %d, want %d", Len(got), MaxContentLen+len(Ellipsis))
	}
	if !strings.HasSuffix(got, Ellipsis) {
		t.Errorf("StructuralContent() = %q, want ellipsis suffix", got)
	}
}

func TestSiteContent(t *testing.T) {
	page := `<h1>Agents for enterprise</h1>
<nav><a>skip</a></nav>
<p>Short</p>
<h2>Automate support workflows end to end</h2>
<p>Nested <b>markup</b> is skipped here</p>
<div class="hero-text">Deploy in days rather than months</div>`

	got, ok := SiteContent(page, SiteRule{Host: "xpectrum-ai.com"})
	if !ok {
		t.Fatal("SiteContent() ok = false, want true")
	}
	want := "Agents for enterprise Automate support workflows end to end Deploy in days rather than months"
	if got != want {
		t.Errorf("SiteContent() = %q, want %q", got, want)
	}
}

func TestSiteContentSectionOrder(t *testing.T) {
	page := `<p>A paragraph placed first in the document</p>
<h1>The headline placed second</h1>
<div class="hero-text"><span>Nested copy inside a text div that is long</span></div>`

	got, ok := SiteContent(page, SiteRule{Host: "xpectrum-ai.com"})
	if !ok {
		t.Fatal("SiteContent() ok = false, want true")
	}
	want := "The headline placed second A paragraph placed first in the document Nested copy inside a text div that is long"
	if got != want {
		t.Errorf("SiteContent() = %q, want %q", got, want)
	}
}

func TestSiteContentCap(t *testing.T) {
	page := "<p>" + strings.Repeat("x", 50) + "</p>"
	got, ok := SiteContent(page, SiteRule{MaxChars: 20})
	if !ok || got != strings.Repeat("x", 20)+Ellipsis {
		t.Errorf("SiteContent() = (%q, %v), want 20 runes plus ellipsis", got, ok)
	}
}

func TestSiteRuleMatches(t *testing.T) {
	r := SiteRule{Host: "xpectrum-ai.com"}
	tests := []struct {
		host string
		want bool
	}{
		{"xpectrum-ai.com", true},
		{"WWW.Xpectrum-AI.com", true},
		{"xpectrum-ai.com:443", true},
		{"notxpectrum-ai.com", false},
		{"example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := r.Matches(tt.host); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hello..."},
		{"héllo wörld", 4, "héll..."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("<p>Fish &amp; <b>chips</b></p>\n\n<div>today</div>")
	if got != "Fish & chips today" {
		t.Errorf("CleanText() = %q, want %q", got, "Fish & chips today")
	}
}
