package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/wikiqa/internal/doctree"
)

// Parser converts raw document bytes into a section tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.SectionTree, error)
}

// SupportedExtensions lists file extensions that can be uploaded.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// outline assembles a section tree from a flat stream of headings and
// paragraphs. Paragraphs before the first heading form the summary; a
// document without headings becomes one untitled section. Back-matter
// sections are left out together with their subsections.
type outline struct {
	tree    *doctree.SectionTree
	stack   []outlineEntry
	lead    []string
	pending []string
	skip    int // level of the back-matter heading being skipped, 0 if none
}

type outlineEntry struct {
	section *doctree.Section
	level   int
}

func newOutline(title string) *outline {
	return &outline{tree: &doctree.SectionTree{Title: title}}
}

func (o *outline) heading(level int, text string) {
	o.flush()
	if o.skip > 0 && level > o.skip {
		return
	}
	o.skip = 0
	for len(o.stack) > 0 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	if doctree.IsBackMatter(text) {
		o.skip = level
		return
	}
	s := &doctree.Section{Heading: text}
	if len(o.stack) == 0 {
		o.tree.Sections = append(o.tree.Sections, s)
	} else {
		parent := o.stack[len(o.stack)-1].section
		parent.Children = append(parent.Children, s)
	}
	o.stack = append(o.stack, outlineEntry{section: s, level: level})
}

func (o *outline) paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" || o.skip > 0 {
		return
	}
	if len(o.stack) == 0 {
		o.lead = append(o.lead, text)
		return
	}
	o.pending = append(o.pending, text)
}

func (o *outline) flush() {
	if len(o.pending) == 0 || len(o.stack) == 0 {
		return
	}
	top := o.stack[len(o.stack)-1].section
	body := strings.Join(o.pending, "\n\n")
	if top.Body != "" {
		top.Body += "\n\n" + body
	} else {
		top.Body = body
	}
	o.pending = o.pending[:0]
}

func (o *outline) finish() *doctree.SectionTree {
	o.flush()
	if len(o.tree.Sections) == 0 && len(o.lead) > 0 {
		o.tree.Summary = o.lead[0]
		o.tree.Sections = []*doctree.Section{{Body: strings.Join(o.lead, "\n\n")}}
		return o.tree
	}
	o.tree.Summary = strings.Join(o.lead, "\n\n")
	return o.tree
}
