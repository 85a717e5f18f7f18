package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/wikiqa/internal/dataset"
	"github.com/dgallion1/wikiqa/internal/parser"
	"github.com/dgallion1/wikiqa/internal/pipeline"
)

type fetchArticlesRequest struct {
	Source       string   `json:"source"`
	Title        string   `json:"title" validate:"required"`
	Languages    []string `json:"languages" validate:"omitempty,max=20,dive,required"`
	MaxChunkSize int      `json:"max_chunk_size" validate:"omitempty,min=1"`
}

type articlesResponse struct {
	SessionID  string            `json:"session_id"`
	FirstIndex int               `json:"first_index"`
	Articles   []dataset.Article `json:"articles"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	s.log.Info("session created", "session_id", sess.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"created_at": sess.CreatedAt,
	})
}

// session resolves the {sessionID} path parameter, writing a 404 when the
// session is unknown or expired.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *dataset.Session {
	id := chi.URLParam(r, "sessionID")
	sess := s.sessions.Get(id)
	if sess == nil {
		jsonError(w, fmt.Sprintf("session %q not found or expired; create one with POST /api/sessions", id), http.StatusNotFound)
	}
	return sess
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, articlesResponse{SessionID: sess.ID, Articles: sess.Articles()})
}

func (s *Server) handleFetchArticles(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req fetchArticlesRequest
	if msg, ok := s.decodeJSON(w, r, &req); !ok {
		jsonError(w, msg, http.StatusBadRequest)
		return
	}

	articles, err := s.fetcher.FetchArticles(r.Context(), pipeline.FetchRequest{
		Source:       req.Source,
		Title:        req.Title,
		Languages:    req.Languages,
		MaxChunkSize: req.MaxChunkSize,
	})
	if err != nil {
		code := statusFor(err, http.StatusBadGateway)
		s.log.Warn("fetch failed", "session_id", sess.ID, "title", req.Title, "status", code, "error", err)
		jsonError(w, err.Error(), code)
		return
	}

	first := sess.AddArticles(articles...)
	s.log.Info("articles fetched", "session_id", sess.ID, "title", req.Title, "count", len(articles))
	writeJSON(w, http.StatusCreated, articlesResponse{SessionID: sess.ID, FirstIndex: first, Articles: articles})
}

func (s *Server) handleUploadArticle(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	maxChunkSize := 0
	if v := r.FormValue("max_chunk_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "max_chunk_size must be a positive integer", http.StatusBadRequest)
			return
		}
		maxChunkSize = n
	}

	article, err := s.fetcher.ParseUpload(bytes.NewReader(data), filename, r.FormValue("title"), r.FormValue("language"), maxChunkSize)
	if err != nil {
		code := statusFor(err, http.StatusUnprocessableEntity)
		s.log.Warn("upload failed", "session_id", sess.ID, "filename", filename, "status", code, "error", err)
		jsonError(w, err.Error(), code)
		return
	}

	first := sess.AddArticles(article)
	s.log.Info("article uploaded", "session_id", sess.ID, "filename", filename, "chunks", len(article.Chunks))
	writeJSON(w, http.StatusCreated, articlesResponse{SessionID: sess.ID, FirstIndex: first, Articles: []dataset.Article{article}})
}
