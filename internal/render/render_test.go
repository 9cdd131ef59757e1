package render

import (
	"strings"
	"testing"
)

func TestRender_Basic(t *testing.T) {
	r := New("")
	out, err := r.Render("# Hello\n\nSome *emphasis* here.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Hello") {
		t.Errorf("expected rendered h1, got %q", out)
	}
	if !strings.Contains(out, "<em>emphasis</em>") {
		t.Errorf("expected emphasis, got %q", out)
	}
}

func TestRender_HeadingAnchors(t *testing.T) {
	r := New("")
	out, err := r.Render("## Section Title")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `id="section-title"`) {
		t.Errorf("expected auto heading id, got %q", out)
	}
}

func TestRender_StripsScript(t *testing.T) {
	r := New("")
	out, err := r.Render("before\n\n<script>alert(1)</script>\n\nafter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "<script") || strings.Contains(out, "alert(1)") {
		t.Errorf("script survived sanitization: %q", out)
	}
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Errorf("surrounding content lost: %q", out)
	}
}

func TestRender_ExternalLinks(t *testing.T) {
	r := New("example.com")
	out, err := r.Render("[ext](https://other.org/page) and [int](https://example.com/page) and [rel](/local)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// External link gets new-tab attributes.
	extIdx := strings.Index(out, "other.org")
	if extIdx < 0 {
		t.Fatalf("external link missing: %q", out)
	}
	ext := linkTagAround(out, extIdx)
	if !strings.Contains(ext, `target="_blank"`) || !strings.Contains(ext, `rel="noopener noreferrer"`) {
		t.Errorf("external link missing new-tab attrs: %q", ext)
	}

	// Same-host link does not.
	intIdx := strings.Index(out, "example.com/page")
	if intIdx < 0 {
		t.Fatalf("internal link missing: %q", out)
	}
	in := linkTagAround(out, intIdx)
	if strings.Contains(in, `target="_blank"`) {
		t.Errorf("internal link should not open new tab: %q", in)
	}

	// Relative link does not.
	relIdx := strings.Index(out, `"/local"`)
	if relIdx < 0 {
		t.Fatalf("relative link missing: %q", out)
	}
	rel := linkTagAround(out, relIdx)
	if strings.Contains(rel, `target="_blank"`) {
		t.Errorf("relative link should not open new tab: %q", rel)
	}
}

func TestRender_PublicURLAsHost(t *testing.T) {
	// Constructed with a full base URL, the way main wires PUBLIC_URL.
	r := New("http://localhost:8090")
	out, err := r.Render("[home](http://localhost:8090/page) and [away](https://other.org/page)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	homeIdx := strings.Index(out, "localhost:8090/page")
	if homeIdx < 0 {
		t.Fatalf("same-host link missing: %q", out)
	}
	home := linkTagAround(out, homeIdx)
	if strings.Contains(home, `target="_blank"`) {
		t.Errorf("same-host link marked external: %q", home)
	}

	awayIdx := strings.Index(out, "other.org")
	if awayIdx < 0 {
		t.Fatalf("external link missing: %q", out)
	}
	away := linkTagAround(out, awayIdx)
	if !strings.Contains(away, `target="_blank"`) {
		t.Errorf("external link missing new-tab attrs: %q", away)
	}
}

func TestHostOnly(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:8090", "localhost:8090"},
		{"https://md.example.com/", "md.example.com"},
		{"example.com", "example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := hostOnly(tt.in); got != tt.want {
			t.Errorf("hostOnly(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// linkTagAround returns the <a ...> tag containing byte offset idx.
func linkTagAround(s string, idx int) string {
	start := strings.LastIndex(s[:idx], "<a ")
	end := strings.Index(s[idx:], ">")
	if start < 0 || end < 0 {
		return ""
	}
	return s[start : idx+end+1]
}

func TestRender_LazyImages(t *testing.T) {
	r := New("")
	out, err := r.Render("![alt text](https://example.com/pic.png)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `loading="lazy"`) {
		t.Errorf("expected lazy loading attr, got %q", out)
	}
	if !strings.Contains(out, `decoding="async"`) {
		t.Errorf("expected async decoding attr, got %q", out)
	}
}

func TestRender_TableWrapped(t *testing.T) {
	r := New("")
	src := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	out, err := r.Render(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `<div class="table-wrap"><table>`) {
		t.Errorf("expected wrapped table, got %q", out)
	}
}

func TestRender_CopyButtonOnCodeBlocks(t *testing.T) {
	r := New("")
	src := "```\nfmt.Println(42)\n```\n"
	out, err := r.Render(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `class="copy-code"`) {
		t.Errorf("expected copy button, got %q", out)
	}
	if !strings.Contains(out, "fmt.Println(42)") {
		t.Errorf("expected code content preserved, got %q", out)
	}
}

func TestRender_TaskList(t *testing.T) {
	r := New("")
	out, err := r.Render("- [x] done\n- [ ] todo\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "checkbox") {
		t.Errorf("expected task list checkboxes, got %q", out)
	}
}

func TestIsExternalLink(t *testing.T) {
	tests := []struct {
		href string
		host string
		want bool
	}{
		{"https://other.org/x", "example.com", true},
		{"http://other.org", "example.com", true},
		{"https://example.com/x", "example.com", false},
		{"https://EXAMPLE.com/x", "example.com", false},
		{"/relative/path", "example.com", false},
		{"#anchor", "example.com", false},
		{"mailto:a@b.c", "example.com", false},
		{"", "example.com", false},
		{"https://anything.org", "", true},
	}
	for _, tt := range tests {
		if got := isExternalLink(tt.href, tt.host); got != tt.want {
			t.Errorf("isExternalLink(%q, %q) = %v, want %v", tt.href, tt.host, got, tt.want)
		}
	}
}
