package chunker

import (
	"errors"
	"fmt"

	"github.com/dgallion1/wikiqa/internal/doctree"
)

// MaxDepth bounds section nesting; deeper trees are rejected.
const MaxDepth = 64

const untitled = "Untitled"

var (
	ErrNoTree      = errors.New("no section tree to decompose")
	ErrTreeTooDeep = fmt.Errorf("section tree deeper than %d levels", MaxDepth)
)

// Decompose walks a SectionTree in pre-order and produces heading-labeled
// chunks of at most maxChunkSize runes (except unsplittable sentences).
// A section's own chunks always precede those of its descendants.
func Decompose(tree *doctree.SectionTree, maxChunkSize int) ([]doctree.Chunk, error) {
	if tree == nil {
		return nil, ErrNoTree
	}
	if maxChunkSize <= 0 {
		return nil, ErrInvalidMaxSize
	}

	tooDeep := false
	tree.Walk(func(_ *doctree.Section, depth int) bool {
		if depth > MaxDepth {
			tooDeep = true
		}
		return !tooDeep
	})
	if tooDeep {
		return nil, ErrTreeTooDeep
	}

	root := Normalize(tree.Title)
	if root == "" {
		root = untitled
	}

	var chunks []doctree.Chunk
	for _, s := range tree.Sections {
		var err error
		chunks, err = walkSection(s, 1, root, maxChunkSize, chunks)
		if err != nil {
			return nil, err
		}
	}
	return chunks, nil
}

// walkSection emits the chunks of one section and then recurses into its
// children. Untitled sections inherit the heading of their parent.
func walkSection(s *doctree.Section, level int, inherited string, maxChunkSize int, chunks []doctree.Chunk) ([]doctree.Chunk, error) {
	if s == nil {
		return chunks, nil
	}

	heading := Normalize(s.Heading)
	if heading == "" {
		heading = inherited
	}

	if body := Normalize(s.Body); body != "" {
		pieces := []string{body}
		if runeLen(body) > maxChunkSize {
			var err error
			if pieces, err = Split(body, maxChunkSize); err != nil {
				return nil, err
			}
		}
		for _, piece := range pieces {
			c, err := doctree.NewChunk(heading, level, piece)
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", s.Heading, err)
			}
			chunks = append(chunks, c)
		}
	}

	for _, child := range s.Children {
		var err error
		if chunks, err = walkSection(child, level+1, heading, maxChunkSize, chunks); err != nil {
			return nil, err
		}
	}
	return chunks, nil
}
