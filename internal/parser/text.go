package parser

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/wikiqa/internal/doctree"
)

// TextParser handles plain text files. Lines of the form "== Heading ==",
// as in plain-text article extracts, open a section: two equals signs are
// level 1, three level 2 and so on.
type TextParser struct{}

var textHeadingRe = regexp.MustCompile(`^(={2,7})\s*(.+?)\s*={2,7}$`)

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.SectionTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	out := newOutline(titleFromFilename(filename))
	var para []string
	endParagraph := func() {
		if len(para) > 0 {
			out.paragraph(strings.Join(para, "\n"))
			para = para[:0]
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if m := textHeadingRe.FindStringSubmatch(line); m != nil {
			endParagraph()
			out.heading(len(m[1])-1, m[2])
			continue
		}
		if strings.TrimSpace(line) == "" {
			endParagraph()
			continue
		}
		para = append(para, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	endParagraph()
	return out.finish(), nil
}
