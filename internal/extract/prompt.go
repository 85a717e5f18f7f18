package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/wikiqa/internal/doctree"
)

// QuestionType tags the generation strategy of a QA pair.
type QuestionType string

const (
	Factual  QuestionType = "factual"
	Multihop QuestionType = "multihop" // declared, no template yet
)

var ErrUnsupportedQuestionType = errors.New("unsupported question type")

const factualPrompt = `Generate one factual question and answer in the text's language.
Use only information from this text:
%s

`

// OutputFormat tells the model how to label its answer so ParseQA can read it.
const OutputFormat = `Output format:
Question: [your question]
Answer: [your answer]`

var promptTemplates = map[QuestionType]string{
	Factual: factualPrompt,
}

// SupportedTypes lists the question types that have a prompt template.
func SupportedTypes() []QuestionType {
	return []QuestionType{Factual}
}

// FormatContext renders the selected chunks, in order, as a prompt context block.
func FormatContext(chunks []doctree.Chunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString("Heading: ")
		sb.WriteString(c.Heading)
		sb.WriteString("\n\n")
		sb.WriteString(c.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// BuildPrompt fills the template for qaType with the formatted chunks.
func BuildPrompt(qaType QuestionType, chunks []doctree.Chunk) (string, error) {
	tmpl, ok := promptTemplates[qaType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedQuestionType, qaType)
	}
	return fmt.Sprintf(tmpl, FormatContext(chunks)) + OutputFormat, nil
}
