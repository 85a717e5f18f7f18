// Package dataset holds the records a QA dataset is built from: fetched
// articles with their chunks, and confirmed question/answer pairs.
package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dgallion1/wikiqa/internal/doctree"
)

// ErrValidation wraps every reason NewQAPair refuses its input.
var ErrValidation = errors.New("invalid qa pair")

// Article is one fetched document in one language, decomposed into chunks.
// Chunk order is the pre-order walk of the source tree; QA pairs address
// chunks by their index in that order.
type Article struct {
	Title    string          `json:"title"`
	Source   string          `json:"source"`
	Language string          `json:"language"`
	Summary  string          `json:"summary"`
	Chunks   []doctree.Chunk `json:"chunks"`
}

// QAPair is a confirmed question/answer pair grounded in article chunks.
type QAPair struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Language     string `json:"language"`
	ArticleTitle string `json:"article_title"`
	ChunkIndices []int  `json:"chunk_indices"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
}

// NewQAPair validates a confirmed candidate against its article. Invalid
// input is rejected, never coerced; all problems are reported together.
func NewQAPair(article Article, qaType string, chunkIndices []int, question, answer string) (QAPair, error) {
	qaType = strings.TrimSpace(qaType)
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)

	var errs []error
	if qaType == "" {
		errs = append(errs, errors.New("type is empty"))
	}
	if question == "" {
		errs = append(errs, errors.New("question is empty"))
	}
	if answer == "" {
		errs = append(errs, errors.New("answer is empty"))
	}
	if len(chunkIndices) == 0 {
		errs = append(errs, errors.New("no chunk indices"))
	}
	seen := make(map[int]bool, len(chunkIndices))
	for _, idx := range chunkIndices {
		if idx < 0 || idx >= len(article.Chunks) {
			errs = append(errs, fmt.Errorf("chunk index %d out of range [0, %d)", idx, len(article.Chunks)))
			continue
		}
		if seen[idx] {
			errs = append(errs, fmt.Errorf("duplicate chunk index %d", idx))
		}
		seen[idx] = true
	}
	if len(errs) > 0 {
		return QAPair{}, fmt.Errorf("%w: %w", ErrValidation, errors.Join(errs...))
	}

	return QAPair{
		ID:           uuid.NewString(),
		Type:         qaType,
		Language:     article.Language,
		ArticleTitle: article.Title,
		ChunkIndices: append([]int(nil), chunkIndices...),
		Question:     question,
		Answer:       answer,
	}, nil
}

// SelectChunks returns the chunks at indices, in the given order.
func (a Article) SelectChunks(indices []int) ([]doctree.Chunk, error) {
	out := make([]doctree.Chunk, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(a.Chunks) {
			return nil, fmt.Errorf("chunk index %d out of range [0, %d)", idx, len(a.Chunks))
		}
		out = append(out, a.Chunks[idx])
	}
	return out, nil
}
