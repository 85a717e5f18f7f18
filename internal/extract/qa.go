package extract

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoStructuredQA is returned when a completion does not contain a usable
// question/answer pair. It is an expected outcome, not a fault.
var ErrNoStructuredQA = errors.New("no structured QA found")

// QA is a question/answer pair extracted from a model completion.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// qaPattern finds "Question:" followed, possibly across lines, by "Answer:".
// The question is the shortest run between the labels; the answer is the rest.
var qaPattern = regexp.MustCompile(`(?is)Question:\s*(.*?)\s*Answer:\s*(.*)`)

// ParseQA extracts a question/answer pair from free-text model output.
// Prefix and suffix noise is tolerated; trailing text belongs to the answer.
func ParseQA(raw string) (QA, error) {
	if raw == "" {
		return QA{}, ErrNoStructuredQA
	}
	m := qaPattern.FindStringSubmatch(raw)
	if m == nil {
		return QA{}, ErrNoStructuredQA
	}
	return newQA(m[1], m[2])
}

func newQA(question, answer string) (QA, error) {
	qa := QA{
		Question: strings.TrimSpace(question),
		Answer:   strings.TrimSpace(answer),
	}
	if qa.Question == "" || qa.Answer == "" {
		return QA{}, ErrNoStructuredQA
	}
	return qa, nil
}
