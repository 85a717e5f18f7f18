package extract

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Completer sends a prompt to a language model and returns its generation.
type Completer interface {
	Complete(ctx context.Context, prompt string, params GenerationParams) (Generation, error)
	Model() string
}

var (
	ErrPromptTooLarge  = errors.New("prompt exceeds context window")
	ErrEmptyCompletion = errors.New("empty completion")
)

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable reports whether err wraps a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

func checkPromptSize(prompt string, ctxWindow int) error {
	if ctxWindow <= 0 {
		return nil
	}
	if n := EstimateTokens(prompt); n >= ctxWindow {
		return fmt.Errorf("%w: ~%d tokens, window %d", ErrPromptTooLarge, n, ctxWindow)
	}
	return nil
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
