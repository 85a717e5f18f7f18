package chunker

import (
	"regexp"
	"strings"
)

var (
	invisibleRe   = regexp.MustCompile(`[\x{200B}\x{200C}\x{200D}\x{2060}]`)
	loneLetterRe  = regexp.MustCompile(`\n\s*([a-zA-Z])\s*\n`)
	displayMathRe = regexp.MustCompile(`\{\s*\\displaystyle\s*([^}]+)\}`)
	spaceRunRe    = regexp.MustCompile(`[ \t]+`)
	beforePunctRe = regexp.MustCompile(`\s+([,.!?;:])`)
	afterOpenRe   = regexp.MustCompile(`\(\s+`)
	beforeCloseRe = regexp.MustCompile(`\s+\)`)
)

// Normalize cleans formatting artifacts left by markup extraction. It only
// touches whitespace, invisible characters and the {\displaystyle ...} wrapper,
// never the words themselves. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = invisibleRe.ReplaceAllString(text, "")
	text = loneLetterRe.ReplaceAllString(text, " $1 ")
	text = displayMathRe.ReplaceAllStringFunc(text, func(m string) string {
		inner := displayMathRe.FindStringSubmatch(m)[1]
		return `{\displaystyle ` + strings.TrimSpace(inner) + `}`
	})
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = beforePunctRe.ReplaceAllString(text, "$1")
	text = afterOpenRe.ReplaceAllString(text, "(")
	text = beforeCloseRe.ReplaceAllString(text, ")")
	return strings.TrimSpace(text)
}
