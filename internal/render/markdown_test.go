package render

import (
	"strings"
	"testing"
)

func TestMarkdownCell(t *testing.T) {
	r := NewRenderer("")
	source := []byte("# Hello World\n\nThis is a *test*.")

	out, toc, err := r.markdownCell(source, 4)
	if err != nil {
		t.Fatalf("markdownCell failed: %v", err)
	}

	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Hello World</h1>") {
		t.Error("expected H1 tag containing 'Hello World' in HTML")
	}
	if !strings.Contains(out, "<em>test</em>") {
		t.Error("expected italicized test in HTML")
	}
	if len(toc) != 1 || toc[0].Cell != 4 {
		t.Errorf("expected one heading tagged with cell 4, got %+v", toc)
	}
}

func TestHeadings(t *testing.T) {
	r := NewRenderer("")
	source := []byte("# Head 1\n## Head *2*\n### Head 3")

	toc := r.headings(source, 0)
	if len(toc) != 3 {
		t.Fatalf("expected 3 TOC items, got %d", len(toc))
	}

	if toc[0].Level != 1 || toc[0].Title != "Head 1" {
		t.Errorf("TOC item 0 mismatch: %+v", toc[0])
	}
	if toc[1].Level != 2 || toc[1].Title != "Head 2" {
		t.Errorf("TOC item 1 mismatch: %+v", toc[1])
	}
	if toc[2].Level != 3 || toc[2].Title != "Head 3" {
		t.Errorf("TOC item 2 mismatch: %+v", toc[2])
	}
}

func TestHeadings_TypographerPunctuation(t *testing.T) {
	r := NewRenderer("")
	toc := r.headings([]byte(`# Don't "panic" -- now`), 0)

	if len(toc) != 1 {
		t.Fatalf("expected 1 heading, got %d", len(toc))
	}
	if want := "Don’t “panic” – now"; toc[0].Title != want {
		t.Errorf("expected title %q, got %q", want, toc[0].Title)
	}
	if toc[0].Anchor != "dont-panic-now" {
		t.Errorf("unexpected anchor %q", toc[0].Anchor)
	}
}

func TestGenerateAnchor(t *testing.T) {
	tests := []struct {
		input  string
		output string
	}{
		{"Hello World", "hello-world"},
		{"Test! @# Content", "test-content"},
		{"Multiple   Spaces", "multiple-spaces"},
		{"-Start-and-End-", "start-and-end"},
		{"中文标题", "中文标题"},
	}

	for _, tt := range tests {
		got := generateAnchor(tt.input)
		if got != tt.output {
			t.Errorf("generateAnchor(%q) = %q, want %q", tt.input, got, tt.output)
		}
	}
}
