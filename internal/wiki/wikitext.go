package wiki

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/wikiqa/internal/doctree"
)

var (
	headingRe  = regexp.MustCompile(`^(={2,6})\s*(.+?)\s*={2,6}\s*$`)
	commentRe  = regexp.MustCompile(`(?s)<!--.*?-->`)
	mathRe     = regexp.MustCompile(`(?is)<math[^>]*>(.*?)</math>`)
	refPairRe  = regexp.MustCompile(`(?is)<ref[^>/]*>.*?</ref>`)
	refSelfRe  = regexp.MustCompile(`(?i)<ref[^>]*/>`)
	galleryRe  = regexp.MustCompile(`(?is)<gallery[^>]*>.*?</gallery>`)
	linkRe     = regexp.MustCompile(`\[\[(?:[^|\]]*\|)?([^\]]*)\]\]`)
	extLinkRe  = regexp.MustCompile(`\[(?:https?:)?//[^\s\]]+\s*([^\]]*)\]`)
	emphasisRe = regexp.MustCompile(`'{2,5}`)
	magicRe    = regexp.MustCompile(`__[A-Z]+__`)
	listMarkRe = regexp.MustCompile(`(?m)^[*#:;]+\s*`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

var fileLinkPrefixes = []string{
	"file:", "image:", "category:", "media:",
	"datei:", "bild:", "kategorie:",
	"fichier:", "catégorie:",
	"archivo:", "categoría:",
}

// ParseWikitext turns raw article wikitext into a section tree. Text before
// the first heading becomes the summary; "==H==" is level 1, "===H===" level
// 2 and so on. Reference and navigation sections are dropped with their
// subsections.
func ParseWikitext(title, wikitext string) *doctree.SectionTree {
	tree := &doctree.SectionTree{Title: title}

	type frame struct {
		level   int
		section *doctree.Section
		body    *strings.Builder
	}
	var (
		lead    strings.Builder
		stack   []frame
		all     []frame
		skipLvl int // >0 while inside a dropped section
	)
	current := &lead

	for _, line := range strings.Split(commentRe.ReplaceAllString(wikitext, ""), "\n") {
		m := headingRe.FindStringSubmatch(strings.TrimRight(line, " \t\r"))
		if m == nil {
			if skipLvl == 0 {
				current.WriteString(line)
				current.WriteByte('\n')
			}
			continue
		}

		level := len(m[1]) - 1
		heading := StripMarkup(m[2])
		if skipLvl > 0 && level > skipLvl {
			continue
		}
		skipLvl = 0
		if doctree.IsBackMatter(heading) {
			skipLvl = level
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		f := frame{level: level, section: &doctree.Section{Heading: heading}, body: &strings.Builder{}}
		if len(stack) == 0 {
			tree.Sections = append(tree.Sections, f.section)
		} else {
			parent := stack[len(stack)-1].section
			parent.Children = append(parent.Children, f.section)
		}
		stack = append(stack, f)
		all = append(all, f)
		current = f.body
	}

	tree.Summary = StripMarkup(lead.String())
	for _, f := range all {
		f.section.Body = StripMarkup(f.body.String())
	}
	return tree
}

// StripMarkup reduces a wikitext fragment to plain text. Formulas survive as
// {\displaystyle ...}.
func StripMarkup(s string) string {
	s = commentRe.ReplaceAllString(s, "")

	var formulas []string
	s = mathRe.ReplaceAllStringFunc(s, func(m string) string {
		inner := mathRe.FindStringSubmatch(m)[1]
		formulas = append(formulas, `{\displaystyle `+strings.TrimSpace(inner)+`}`)
		return formulaToken(len(formulas) - 1)
	})

	s = refPairRe.ReplaceAllString(s, "")
	s = refSelfRe.ReplaceAllString(s, "")
	s = galleryRe.ReplaceAllString(s, "")
	s = removeNested(s, "{{", "}}")
	s = removeNested(s, "{|", "|}")
	s = removeFileLinks(s)
	s = linkRe.ReplaceAllString(s, "$1")
	s = extLinkRe.ReplaceAllString(s, "$1")
	s = emphasisRe.ReplaceAllString(s, "")
	s = magicRe.ReplaceAllString(s, "")
	s = htmlText(s)
	s = listMarkRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\u00a0", " ")

	for i, f := range formulas {
		s = strings.Replace(s, formulaToken(i), f, 1)
	}
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// formulaToken is a private-use placeholder that no markup rule touches.
func formulaToken(i int) string {
	return fmt.Sprintf("\uE000%d\uE001", i)
}

// removeNested drops every balanced open...close span. An unclosed span is
// kept as text.
func removeNested(s, open, close string) string {
	var sb strings.Builder
	depth, start := 0, 0
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], open):
			if depth == 0 {
				start = i
			}
			depth++
			i += len(open)
		case depth > 0 && strings.HasPrefix(s[i:], close):
			depth--
			i += len(close)
		default:
			if depth == 0 {
				sb.WriteByte(s[i])
			}
			i++
		}
	}
	if depth > 0 {
		sb.WriteString(s[start:])
	}
	return sb.String()
}

// removeFileLinks drops [[File:...]] style links, including captions that
// contain nested links.
func removeFileLinks(s string) string {
	var sb strings.Builder
	for {
		idx := strings.Index(s, "[[")
		if idx < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:idx])
		rest := s[idx:]
		if !hasFilePrefix(strings.TrimSpace(rest[2:])) {
			sb.WriteString("[[")
			s = rest[2:]
			continue
		}
		depth, end := 0, -1
		for i := 0; i < len(rest)-1; i++ {
			if rest[i] == '[' && rest[i+1] == '[' {
				depth++
				i++
			} else if rest[i] == ']' && rest[i+1] == ']' {
				depth--
				i++
				if depth == 0 {
					end = i + 1
					break
				}
			}
		}
		if end < 0 {
			sb.WriteString(rest)
			return sb.String()
		}
		s = rest[end:]
	}
}

func hasFilePrefix(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range fileLinkPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// htmlText drops remaining HTML tags and decodes entities.
func htmlText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				sb.WriteByte('\n')
			}
		}
	}
}
