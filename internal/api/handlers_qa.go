package api

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/wikiqa/internal/dataset"
	"github.com/dgallion1/wikiqa/internal/extract"
	"github.com/dgallion1/wikiqa/internal/pipeline"
)

type generateRequest struct {
	Article    *int                   `json:"article" validate:"required,min=0"`
	Type       string                 `json:"type"`
	Selections [][]int                `json:"selections" validate:"required,min=1,max=50,dive,required"`
	Params     extract.ParamsOverride `json:"params"`
}

type createQARequest struct {
	Article      *int   `json:"article" validate:"required,min=0"`
	Type         string `json:"type"`
	ChunkIndices []int  `json:"chunk_indices"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
}

// articleAt resolves an article index within sess, writing a 404 when it is
// out of range.
func articleAt(w http.ResponseWriter, sess *dataset.Session, idx int) (dataset.Article, bool) {
	a, ok := sess.Article(idx)
	if !ok {
		jsonError(w, fmt.Sprintf("article %d not found in session (have %d)", idx, len(sess.Articles())), http.StatusNotFound)
	}
	return a, ok
}

func questionType(raw string) (extract.QuestionType, error) {
	if raw == "" {
		return extract.Factual, nil
	}
	t := extract.QuestionType(raw)
	if !slices.Contains(extract.SupportedTypes(), t) {
		return "", fmt.Errorf("%w: %q (supported: %v)", extract.ErrUnsupportedQuestionType, raw, extract.SupportedTypes())
	}
	return t, nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req generateRequest
	if msg, ok := s.decodeJSON(w, r, &req); !ok {
		jsonError(w, msg, http.StatusBadRequest)
		return
	}
	article, ok := articleAt(w, sess, *req.Article)
	if !ok {
		return
	}
	qaType, err := questionType(req.Type)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err, http.StatusBadRequest))
		return
	}
	for i, sel := range req.Selections {
		if err := pipeline.ValidateSelection(article, sel, s.cfg.MaxChunksPerQA); err != nil {
			jsonError(w, fmt.Sprintf("selection %d: %v", i, err), statusFor(err, http.StatusBadRequest))
			return
		}
	}

	params := req.Params.Apply(extract.DefaultParams())
	job := pipeline.NewJob(sess.ID, *req.Article, article, qaType, params, req.Selections)
	if err := s.orchestrator.Submit(job); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrQueueFull) || errors.Is(err, pipeline.ErrStopped) {
			status = http.StatusServiceUnavailable
		}
		jsonError(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s/status", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleCreateQA(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req createQARequest
	if msg, ok := s.decodeJSON(w, r, &req); !ok {
		jsonError(w, msg, http.StatusBadRequest)
		return
	}
	article, ok := articleAt(w, sess, *req.Article)
	if !ok {
		return
	}
	if req.Type == "" {
		req.Type = string(extract.Factual)
	}

	pair, err := dataset.NewQAPair(article, req.Type, req.ChunkIndices, req.Question, req.Answer)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err, http.StatusUnprocessableEntity))
		return
	}
	sess.AddQA(pair)
	s.log.Info("qa pair added", "session_id", sess.ID, "qa_id", pair.ID, "article", article.Title)
	writeJSON(w, http.StatusCreated, pair)
}

func (s *Server) handleListQA(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sess.ID, "qa": sess.QAPairs()})
}

func (s *Server) handleDeleteQA(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	qaID := chi.URLParam(r, "qaID")
	if !sess.RemoveQA(qaID) {
		jsonError(w, "qa pair not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportArticles(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	articles := sess.Articles()
	if len(articles) == 0 {
		jsonError(w, "no articles to export; fetch or upload one first", http.StatusNotFound)
		return
	}
	s.writeAttachment(w, dataset.ArticlesPrefix, articles)
}

func (s *Server) handleExportQA(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	pairs := sess.QAPairs()
	if len(pairs) == 0 {
		jsonError(w, "no qa pairs to export; confirm at least one first", http.StatusNotFound)
		return
	}
	s.writeAttachment(w, dataset.QAPrefix, pairs)
}

func (s *Server) writeAttachment(w http.ResponseWriter, prefix string, v any) {
	name := prefix + time.Now().UTC().Format("20060102T150405") + ".json"
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := dataset.EncodeJSON(w, v); err != nil {
		s.log.Error("export failed", "file", name, "error", err)
	}
}
