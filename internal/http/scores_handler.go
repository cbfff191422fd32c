package httpapi

import (
	"net/http"

	"climate-sentinel/internal/models"

	"go.uber.org/zap"
)

// RefreshResponse body of POST /api/res/refresh
type RefreshResponse struct {
	Message string            `json:"message"`
	Scores  []models.ResScore `json:"scores"`
}

type ScoresHandler struct {
	scores ScoreService
	logger *zap.Logger
}

func NewScoresHandler(scores ScoreService, logger *zap.Logger) *ScoresHandler {
	return &ScoresHandler{scores: scores, logger: logger}
}

func (h *ScoresHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/res/scores":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListScores(w, r)
	case path == "/api/res/refresh":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Refresh(w, r)
	default:
		zoneID, ok := pathID(path, "/api/res/scores/")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetScore(w, r, zoneID)
	}
}

// ListScores serves cached scores, recomputing when the cache is stale
func (h *ScoresHandler) ListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.scores.Scores(r.Context())
	if err != nil {
		h.logger.Error("Failed to calculate RES scores", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to calculate RES scores")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(scores))
}

// GetScore looks the zone up in the cache only
func (h *ScoresHandler) GetScore(w http.ResponseWriter, _ *http.Request, zoneID string) {
	score, ok := h.scores.Score(zoneID)
	if !ok {
		writeError(w, http.StatusNotFound, "RES score not found for zone")
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// Refresh forces a full recompute
func (h *ScoresHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.scores.RecomputeAll(r.Context()); err != nil {
		h.logger.Error("Failed to refresh RES scores", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to refresh RES scores")
		return
	}
	writeJSON(w, http.StatusOK, RefreshResponse{
		Message: "RES scores and alerts updated",
		Scores:  orEmpty(h.scores.CachedScores()),
	})
}
