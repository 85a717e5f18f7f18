package doctree

import (
	"errors"
	"strings"
)

// SectionTree is the root of a fetched document.
type SectionTree struct {
	Title    string     // Document title
	Source   string     // Canonical URL or identifier
	Language string     // Language code, e.g. "en"
	Summary  string     // Lead text before the first heading
	Sections []*Section // Top-level sections
}

// Section is a recursive heading-delimited region of the document.
type Section struct {
	Heading  string     // Section heading (empty for untitled text)
	Body     string     // Raw body text (may be empty for container sections)
	Children []*Section // Subsections
}

// Chunk is a bounded, heading-labeled piece of content used as model context.
type Chunk struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Content string `json:"content"`
}

var ErrInvalidChunk = errors.New("invalid chunk")

// NewChunk builds a Chunk, rejecting an empty heading or content and levels below 1.
func NewChunk(heading string, level int, content string) (Chunk, error) {
	switch {
	case strings.TrimSpace(heading) == "":
		return Chunk{}, errors.Join(ErrInvalidChunk, errors.New("heading is empty"))
	case level < 1:
		return Chunk{}, errors.Join(ErrInvalidChunk, errors.New("level must be >= 1"))
	case strings.TrimSpace(content) == "":
		return Chunk{}, errors.Join(ErrInvalidChunk, errors.New("content is empty"))
	}
	return Chunk{Heading: heading, Level: level, Content: content}, nil
}

// Walk visits every section in pre-order, passing its depth (top-level = 1).
// Returning false from fn skips the section's children.
func (t *SectionTree) Walk(fn func(s *Section, depth int) bool) {
	var walk func(sections []*Section, depth int)
	walk = func(sections []*Section, depth int) {
		for _, s := range sections {
			if s == nil {
				continue
			}
			if fn(s, depth) {
				walk(s.Children, depth+1)
			}
		}
	}
	walk(t.Sections, 1)
}

// backMatter holds lower-cased headings of reference and navigation
// sections in the languages articles are commonly fetched in.
var backMatter = map[string]bool{
	"references":           true,
	"notes":                true,
	"footnotes":            true,
	"citations":            true,
	"sources":              true,
	"bibliography":         true,
	"further reading":      true,
	"external links":       true,
	"see also":             true,
	"notes and references": true,
	"einzelnachweise":      true,
	"weblinks":             true,
	"literatur":            true,
	"siehe auch":           true,
	"références":           true,
	"notes et références":  true,
	"liens externes":       true,
	"voir aussi":           true,
	"bibliographie":        true,
	"referencias":          true,
	"enlaces externos":     true,
	"véase también":        true,
}

// IsBackMatter reports whether heading names a reference or navigation
// section such as "See also".
func IsBackMatter(heading string) bool {
	return backMatter[strings.ToLower(strings.TrimSpace(heading))]
}
