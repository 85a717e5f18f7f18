package parser

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/wikiqa/internal/doctree"
)

// HTMLParser handles HTML files. Article pages saved from a MediaWiki site
// are read from their content area with edit links, reference markers and
// navigation boxes removed; formulas keep their TeX source.
type HTMLParser struct{}

var (
	skippedTags = map[string]bool{
		"script": true, "style": true, "nav": true, "footer": true, "header": true,
		"head": true, "noscript": true, "template": true, "form": true,
	}
	skippedClasses = []string{
		"mw-editsection", "reference", "references", "reflist", "navbox",
		"infobox", "toc", "hatnote", "thumb", "metadata", "noprint", "mw-empty-elt",
	}
	paragraphTags = map[string]bool{
		"p": true, "li": true, "td": true, "th": true, "blockquote": true,
		"pre": true, "dd": true, "dt": true, "figcaption": true, "caption": true,
	}
)

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.SectionTree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := titleFromFilename(filename)
	if n := find(doc, hasID("firstHeading")); n != nil {
		title = textContent(n)
	} else if n := find(doc, isTag("title")); n != nil && textContent(n) != "" {
		title = textContent(n)
	}
	out := newOutline(title)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipped(n) {
				return
			}
			if level := headingLevel(n.Data); level > 0 {
				out.heading(level, textContent(n))
				return
			}
			if paragraphTags[n.Data] {
				out.paragraph(textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	root := find(doc, hasID("mw-content-text"))
	if root == nil {
		root = find(doc, isTag("main"))
	}
	if root == nil {
		root = find(doc, isTag("body"))
	}
	if root == nil {
		root = doc
	}
	walk(root)

	tree := out.finish()
	if n := find(doc, isTag("html")); n != nil {
		tree.Language = attr(n, "lang")
	}
	return tree, nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func skipped(n *html.Node) bool {
	if skippedTags[n.Data] {
		return true
	}
	for _, class := range strings.Fields(attr(n, "class")) {
		if slices.Contains(skippedClasses, class) {
			return true
		}
	}
	return false
}

// textContent collects the visible text under n. MathML elements contribute
// their alttext, which MediaWiki fills with the TeX source.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
			return
		case n.Type != html.ElementNode:
		case n.Data == "math":
			buf.WriteString(attr(n, "alttext"))
			return
		case n.Data == "br":
			buf.WriteByte('\n')
			return
		case skipped(n), hasClass(n, "mwe-math-fallback-image-inline"), hasClass(n, "mwe-math-fallback-image-display"):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(buf.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

func isTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == tag }
}

func hasID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && attr(n, "id") == id }
}

// find returns the first node in document order matching pred.
func find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := find(c, pred); m != nil {
			return m
		}
	}
	return nil
}
