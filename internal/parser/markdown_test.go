package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", tree.Title)
	}
	if tree.Summary != "" {
		t.Errorf("expected empty summary, got %q", tree.Summary)
	}

	// Top-level: one h1 ("Title")
	if len(tree.Sections) != 1 {
		t.Fatalf("expected 1 top-level section (h1), got %d", len(tree.Sections))
	}

	h1 := tree.Sections[0]
	if h1.Heading != "Title" {
		t.Errorf("expected h1 heading %q, got %q", "Title", h1.Heading)
	}
	if h1.Body != "Intro text." {
		t.Errorf("expected h1 body %q, got %q", "Intro text.", h1.Body)
	}

	// h1 has two h2 children: "Section A" and "Section B"
	if len(h1.Children) != 2 {
		t.Fatalf("expected 2 h2 children, got %d", len(h1.Children))
	}

	secA := h1.Children[0]
	if secA.Heading != "Section A" {
		t.Errorf("expected %q, got %q", "Section A", secA.Heading)
	}
	if secA.Body != "Section A content." {
		t.Errorf("expected section A body %q, got %q", "Section A content.", secA.Body)
	}

	// Section A has one h3 child
	if len(secA.Children) != 1 {
		t.Fatalf("expected 1 h3 child under Section A, got %d", len(secA.Children))
	}
	if sub := secA.Children[0]; sub.Heading != "Subsection A1" {
		t.Errorf("expected %q, got %q", "Subsection A1", sub.Heading)
	}

	if secB := h1.Children[1]; secB.Heading != "Section B" {
		t.Errorf("expected %q, got %q", "Section B", secB.Heading)
	}
}

func TestMarkdownParser_LeadBecomesSummary(t *testing.T) {
	input := "Prime numbers are *interesting*.\n\nThey are infinite.\n\n## History\n\nEuclid.\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "primes.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Prime numbers are interesting.\n\nThey are infinite."
	if tree.Summary != want {
		t.Errorf("expected summary %q, got %q", want, tree.Summary)
	}
	if len(tree.Sections) != 1 || tree.Sections[0].Body != "Euclid." {
		t.Errorf("unexpected sections %+v", tree.Sections)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No headings: all text should be collected into a single untitled section.
	if len(tree.Sections) != 1 {
		t.Fatalf("expected 1 section for headingless markdown, got %d", len(tree.Sections))
	}
	if tree.Sections[0].Heading != "" {
		t.Errorf("expected untitled section, got %q", tree.Sections[0].Heading)
	}

	body := tree.Sections[0].Body
	if body != "Just some plain text.\n\nAnother paragraph here." {
		t.Errorf("unexpected body %q", body)
	}
	if tree.Summary != "Just some plain text." {
		t.Errorf("expected first paragraph as summary, got %q", tree.Summary)
	}
}

func TestMarkdownParser_MixedContentWithCodeBlocks(t *testing.T) {
	input := "# API Reference\n\nSome intro.\n\n## Endpoints\n\nList of endpoints:\n\n```\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"

	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tree.Sections) != 1 {
		t.Fatalf("expected 1 top-level section, got %d", len(tree.Sections))
	}

	h1 := tree.Sections[0]
	if h1.Heading != "API Reference" {
		t.Errorf("expected heading %q, got %q", "API Reference", h1.Heading)
	}
	if len(h1.Children) != 1 {
		t.Fatalf("expected 1 h2 child, got %d", len(h1.Children))
	}

	endpoints := h1.Children[0]
	if endpoints.Heading != "Endpoints" {
		t.Errorf("expected heading %q, got %q", "Endpoints", endpoints.Heading)
	}
	if !strings.Contains(endpoints.Body, "GET /api/users\nPOST /api/users") {
		t.Errorf("expected code block content in body, got %q", endpoints.Body)
	}
	if !strings.HasSuffix(endpoints.Body, "More text after code.") {
		t.Errorf("expected post-code text, got %q", endpoints.Body)
	}
	if strings.Count(endpoints.Body, "List of endpoints:") != 1 {
		t.Errorf("expected paragraph text exactly once, got %q", endpoints.Body)
	}
}

func TestMarkdownParser_Lists(t *testing.T) {
	input := "## Facts\n\n- two is prime\n- nine is not\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "facts.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tree.Sections[0].Body; got != "two is prime\nnine is not" {
		t.Errorf("unexpected list body %q", got)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Sections) != 0 {
		t.Errorf("expected 0 sections for empty input, got %d", len(tree.Sections))
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"dir/plain.md", "plain"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		tree, err := p.Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if tree.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, tree.Title)
		}
	}
}

func TestMarkdownParser_Tables(t *testing.T) {
	input := "## Small primes\n\n| n | prime |\n|---|---|\n| 2 | yes |\n| 4 | no |\n\n## See also\n\n- Sieve\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "primes.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Sections) != 1 {
		t.Fatalf("expected see-also to be dropped, got %d sections", len(tree.Sections))
	}
	want := "n | prime\n2 | yes\n4 | no"
	if got := tree.Sections[0].Body; got != want {
		t.Errorf("expected table body %q, got %q", want, got)
	}
}
