package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/wikiqa/internal/doctree"
)

// DOCXParser handles .docx files. Paragraphs styled "Heading N" open
// sections; the first paragraph styled "Title" names the document.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.SectionTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	title := ""
	out := newOutline(titleFromFilename(filename))
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		style := docxStyle(para)
		switch {
		case text == "":
		case style == "title" && title == "":
			title = text
		case docxHeadingLevel(style) > 0:
			out.heading(docxHeadingLevel(style), text)
		default:
			out.paragraph(text)
		}
	}

	tree := out.finish()
	if title != "" {
		tree.Title = title
	}
	return tree, nil
}

// docxStyle returns the paragraph style id lower-cased without spaces, so
// "Heading1" and "heading 1" compare equal.
func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

func docxHeadingLevel(style string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if err != nil || !strings.HasPrefix(style, "heading") || n < 1 || n > 9 {
		return 0
	}
	return n
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
