package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/dgallion1/wikiqa/internal/config"
	"github.com/dgallion1/wikiqa/internal/dataset"
	"github.com/dgallion1/wikiqa/internal/pipeline"
)

// Server is the HTTP API server for wikiqa.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	sessions     *dataset.SessionStore
	fetcher      *pipeline.Fetcher
	validate     *validator.Validate
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, sessions *dataset.SessionStore, fetcher *pipeline.Fetcher, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		sessions:     sessions,
		fetcher:      fetcher,
		validate:     newValidator(),
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(requireAPIKey(s.cfg.APIKey, s.log))

		r.Post("/api/sessions", s.handleCreateSession)
		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/articles", s.handleListArticles)
			r.Post("/articles", s.handleFetchArticles)
			r.Post("/articles/upload", s.handleUploadArticle)

			r.Post("/generate", s.handleGenerate)

			r.Get("/qa", s.handleListQA)
			r.Post("/qa", s.handleCreateQA)
			r.Delete("/qa/{qaID}", s.handleDeleteQA)

			r.Get("/export/articles", s.handleExportArticles)
			r.Get("/export/qa", s.handleExportQA)
		})

		r.Get("/api/jobs/{jobID}/status", s.handleJobStatus)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"backend":     s.cfg.LLMBackend,
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
