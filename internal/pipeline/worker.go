package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/wikiqa/internal/extract"
)

// Worker processes generation jobs.
type Worker struct {
	gen *Generator
	log *slog.Logger

	maxConcurrentGenerate int
}

func NewWorker(gen *Generator, log *slog.Logger, maxConcurrent int) *Worker {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Worker{
		gen:                   gen,
		log:                   log,
		maxConcurrentGenerate: maxConcurrent,
	}
}

// Process generates one candidate per selection with bounded concurrency.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "session_id", job.SessionID)
	job.SetStatus(StatusGenerating, "generating")

	article := job.Article()
	sem := make(chan struct{}, w.maxConcurrentGenerate)
	done := make(chan bool, len(job.Selections))

	for i, sel := range job.Selections {
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			c := Candidate{ChunkIndices: sel}
			qa, err := w.gen.Generate(ctx, article, job.Type, job.Params, sel)
			switch {
			case err == nil:
				c.Question, c.Answer = qa.Question, qa.Answer
			case errors.Is(err, extract.ErrNoStructuredQA):
				c.Error = "the model output did not contain a question and answer; retry or enter one manually"
			default:
				log.Error("generation failed", "selection", i, "error", err)
				c.Error = err.Error()
			}
			if c.Error != "" {
				job.AddError(fmt.Sprintf("selection %d: %s", i, c.Error))
			}
			job.SetCandidate(i, c)
			done <- c.Error == ""
		}()
	}

	ok := 0
	for range job.Selections {
		if <-done {
			ok++
		}
	}

	log.Info("generation complete", "generated", ok, "total", len(job.Selections))
	switch {
	case ok == len(job.Selections):
		job.SetStatus(StatusCompleted, "done")
	case ok > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "done")
	}
}
