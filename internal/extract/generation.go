package extract

// Generation is the result of one completion call. It is either free text
// that still needs parsing or an already structured question/answer pair.
type Generation interface {
	isGeneration()
}

// TextGeneration is raw completion text.
type TextGeneration struct {
	Text string
}

// StructuredGeneration is a completion decoded from a JSON-schema response.
type StructuredGeneration struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (TextGeneration) isGeneration()       {}
func (StructuredGeneration) isGeneration() {}

// Resolve turns a generation into a validated QA. Both variants fail with
// ErrNoStructuredQA when the question or answer is blank.
func Resolve(g Generation) (QA, error) {
	switch v := g.(type) {
	case TextGeneration:
		return ParseQA(v.Text)
	case StructuredGeneration:
		return newQA(v.Question, v.Answer)
	case *StructuredGeneration:
		if v == nil {
			return QA{}, ErrNoStructuredQA
		}
		return newQA(v.Question, v.Answer)
	default:
		return QA{}, ErrNoStructuredQA
	}
}
