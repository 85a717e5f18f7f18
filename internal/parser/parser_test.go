package parser

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.txt", "*parser.TextParser"},
		{"a.MD", "*parser.MarkdownParser"},
		{"a.markdown", "*parser.MarkdownParser"},
		{"a.csv", "*parser.CSVParser"},
		{"a.htm", "*parser.HTMLParser"},
		{"a.pdf", "*parser.PDFParser"},
		{"a.docx", "*parser.DOCXParser"},
	}
	for _, tc := range tests {
		p, err := ForFile(tc.filename)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.filename, err)
			continue
		}
		if got := typeName(p); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.filename, tc.want, got)
		}
		if !IsSupportedExtension(tc.filename) {
			t.Errorf("%s: expected supported extension", tc.filename)
		}
	}

	if _, err := ForFile("a.exe"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if IsSupportedExtension("a.exe") {
		t.Error("expected .exe to be unsupported")
	}
}

func typeName(p Parser) string {
	switch p.(type) {
	case *TextParser:
		return "*parser.TextParser"
	case *MarkdownParser:
		return "*parser.MarkdownParser"
	case *CSVParser:
		return "*parser.CSVParser"
	case *HTMLParser:
		return "*parser.HTMLParser"
	case *PDFParser:
		return "*parser.PDFParser"
	case *DOCXParser:
		return "*parser.DOCXParser"
	}
	return "unknown"
}

func TestOutline_LevelJumpsAndLead(t *testing.T) {
	o := newOutline("T")
	o.paragraph("lead one")
	o.paragraph("  ")
	o.heading(1, "A")
	o.paragraph("a body")
	o.heading(3, "A deep")
	o.paragraph("deep body")
	o.heading(2, "A mid")
	o.heading(1, "B")
	o.paragraph("b1")
	o.paragraph("b2")
	tree := o.finish()

	if tree.Summary != "lead one" {
		t.Errorf("unexpected summary %q", tree.Summary)
	}
	if len(tree.Sections) != 2 {
		t.Fatalf("expected 2 top-level sections, got %d", len(tree.Sections))
	}
	a := tree.Sections[0]
	if len(a.Children) != 2 || a.Children[0].Heading != "A deep" || a.Children[1].Heading != "A mid" {
		t.Errorf("unexpected children of A: %+v", a.Children)
	}
	if a.Children[0].Body != "deep body" {
		t.Errorf("unexpected deep body %q", a.Children[0].Body)
	}
	if tree.Sections[1].Body != "b1\n\nb2" {
		t.Errorf("unexpected B body %q", tree.Sections[1].Body)
	}
}

func TestDOCXHeadingLevel(t *testing.T) {
	tests := map[string]int{
		"heading1": 1,
		"heading3": 3,
		"heading":  0,
		"title":    0,
		"":         0,
		"heading0": 0,
		"headingx": 0,
	}
	for style, want := range tests {
		if got := docxHeadingLevel(style); got != want {
			t.Errorf("docxHeadingLevel(%q) = %d, want %d", style, got, want)
		}
	}
}

func TestPDFParser_RejectsNonPDF(t *testing.T) {
	p := &PDFParser{}
	if _, err := p.Parse(strings.NewReader("plain text, not a pdf"), "notes.pdf"); err == nil {
		t.Error("expected error for non-pdf input")
	}
}
