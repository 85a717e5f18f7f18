package chunker

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ErrInvalidMaxSize = errors.New("max chunk size must be positive")

const paragraphSep = "\n\n"

// sentenceEndRe matches sentence-ending punctuation plus the whitespace after it.
var sentenceEndRe = regexp.MustCompile(`[.!?]\s+`)

// Split breaks text into pieces of at most maxSize runes, packing whole
// paragraphs first and falling back to sentences for paragraphs that are still
// too long. A single sentence longer than maxSize is emitted uncut.
func Split(text string, maxSize int) ([]string, error) {
	if maxSize <= 0 {
		return nil, ErrInvalidMaxSize
	}

	var result []string
	for _, piece := range packParagraphs(text, maxSize) {
		if runeLen(piece) <= maxSize {
			result = append(result, piece)
			continue
		}
		result = append(result, packSentences(piece, maxSize)...)
	}
	return result, nil
}

// packParagraphs greedily joins paragraphs with a blank line until the next
// one would overflow maxSize. Oversized paragraphs are left whole.
func packParagraphs(text string, maxSize int) []string {
	var result []string
	var current strings.Builder
	currentLen := 0

	for _, para := range strings.Split(text, paragraphSep) {
		paraLen := runeLen(para)
		if currentLen+paraLen+len(paragraphSep) > maxSize && current.Len() > 0 {
			result = appendTrimmed(result, current.String())
			current.Reset()
			currentLen = 0
		}
		if current.Len() > 0 {
			current.WriteString(paragraphSep)
			currentLen += len(paragraphSep)
		}
		current.WriteString(para)
		currentLen += paraLen
	}
	return appendTrimmed(result, current.String())
}

// packSentences greedily joins sentences with a single space.
func packSentences(text string, maxSize int) []string {
	var result []string
	var current strings.Builder
	currentLen := 0

	for _, sent := range splitSentences(text) {
		sentLen := runeLen(sent)
		if currentLen+sentLen+1 > maxSize && current.Len() > 0 {
			result = appendTrimmed(result, current.String())
			current.Reset()
			currentLen = 0
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(sent)
		currentLen += sentLen
	}
	return appendTrimmed(result, current.String())
}

// splitSentences cuts after every ". ", "! " or "? ", dropping the whitespace.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	return append(sentences, text[start:])
}

func appendTrimmed(result []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		result = append(result, s)
	}
	return result
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
