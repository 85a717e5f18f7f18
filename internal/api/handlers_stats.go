package api

import (
	"net/http"

	"github.com/dgallion1/wikiqa/internal/extract"
)

type llmStatsResponse struct {
	Backend    string                `json:"backend"`
	Model      string                `json:"model"`
	QueueDepth int                   `json:"queue_depth"`
	Sessions   int                   `json:"sessions"`
	Stats      extract.StatsSnapshot `json:"stats"`
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	gen := s.orchestrator.Generator()
	if gen == nil || gen.Stats() == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, llmStatsResponse{
		Backend:    s.cfg.LLMBackend,
		Model:      gen.Model(),
		QueueDepth: s.orchestrator.QueueDepth(),
		Sessions:   s.sessions.Len(),
		Stats:      gen.Stats().Snapshot(),
	})
}
