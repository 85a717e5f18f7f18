package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/wikiqa/internal/dataset"
	"github.com/dgallion1/wikiqa/internal/extract"
)

// ErrInvalidSelection is returned for a chunk selection that cannot be used
// as prompt context.
var ErrInvalidSelection = errors.New("invalid chunk selection")

// Generator turns a chunk selection into a question/answer pair through a
// completion service.
type Generator struct {
	completer  extract.Completer
	stats      *extract.LLMStats
	log        *slog.Logger
	backoff    time.Duration
	maxRetries uint64
}

func NewGenerator(completer extract.Completer, stats *extract.LLMStats, log *slog.Logger, backoff time.Duration, maxRetries int) *Generator {
	if backoff <= 0 {
		backoff = time.Second
	}
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Generator{
		completer:  completer,
		stats:      stats,
		log:        log,
		backoff:    backoff,
		maxRetries: uint64(maxRetries),
	}
}

// Model names the model behind the completer.
func (g *Generator) Model() string { return g.completer.Model() }

// Stats returns the latency tracker, which may be nil.
func (g *Generator) Stats() *extract.LLMStats { return g.stats }

// ValidateSelection checks that indices name 1..maxPerQA distinct chunks of
// article.
func ValidateSelection(article dataset.Article, indices []int, maxPerQA int) error {
	if len(indices) == 0 {
		return fmt.Errorf("%w: no chunks selected", ErrInvalidSelection)
	}
	if maxPerQA > 0 && len(indices) > maxPerQA {
		return fmt.Errorf("%w: %d chunks selected, at most %d allowed", ErrInvalidSelection, len(indices), maxPerQA)
	}
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(article.Chunks) {
			return fmt.Errorf("%w: chunk index %d out of range [0, %d)", ErrInvalidSelection, idx, len(article.Chunks))
		}
		if seen[idx] {
			return fmt.Errorf("%w: duplicate chunk index %d", ErrInvalidSelection, idx)
		}
		seen[idx] = true
	}
	return nil
}

// Generate builds the prompt from the selected chunks, calls the completer
// with retries on transient failures, and resolves the output into a QA.
// A completion without a usable pair yields extract.ErrNoStructuredQA.
func (g *Generator) Generate(ctx context.Context, article dataset.Article, qaType extract.QuestionType, params extract.GenerationParams, indices []int) (extract.QA, error) {
	log := g.log.With("article", article.Title, "language", article.Language, "chunks", indices)

	chunks, err := article.SelectChunks(indices)
	if err != nil {
		return extract.QA{}, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	prompt, err := extract.BuildPrompt(qaType, chunks)
	if err != nil {
		return extract.QA{}, err
	}

	var gen extract.Generation
	err = withRetry(ctx, Backoff(g.backoff, g.maxRetries), func(ctx context.Context) error {
		start := time.Now()
		var callErr error
		gen, callErr = g.completer.Complete(ctx, prompt, params)
		if g.stats != nil {
			g.stats.Record(time.Since(start), callErr)
		}
		return callErr
	}, func(attempt int, err error) {
		log.Warn("retryable completion error", "attempt", attempt, "error", err)
	})
	if err != nil {
		return extract.QA{}, fmt.Errorf("completion: %w", err)
	}

	qa, err := extract.Resolve(gen)
	if err != nil {
		raw := ""
		if tg, ok := gen.(extract.TextGeneration); ok {
			raw = tg.Text
		}
		log.Warn("no structured qa in completion", "raw", truncate(raw, 300))
		if g.stats != nil {
			g.stats.RecordUnparsed()
		}
		return extract.QA{}, err
	}
	return qa, nil
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
