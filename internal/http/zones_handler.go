package httpapi

import (
	"context"
	"net/http"
	"time"

	"climate-sentinel/internal/models"
	"climate-sentinel/internal/repository"
	"climate-sentinel/internal/scoring"

	"go.uber.org/zap"
)

// ScoreService read and refresh side of the recompute orchestrator
type ScoreService interface {
	Scores(ctx context.Context) ([]models.ResScore, error)
	Score(zoneID string) (models.ResScore, bool)
	CachedScores() []models.ResScore
	RecomputeAll(ctx context.Context) error
	LastUpdate() time.Time
	IsFresh() bool
}

// ZoneDetail zone with its latest cached score
type ZoneDetail struct {
	models.Zone
	Score *models.ResScore `json:"score,omitempty"`
	Band  string           `json:"band,omitempty"`
}

type ZonesHandler struct {
	zones  repository.ZonesRepository
	scores ScoreService
	logger *zap.Logger
}

func NewZonesHandler(zones repository.ZonesRepository, scores ScoreService, logger *zap.Logger) *ZonesHandler {
	return &ZonesHandler{zones: zones, scores: scores, logger: logger}
}

func (h *ZonesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path == "/api/zones" {
		h.ListZones(w, r)
		return
	}
	id, ok := pathID(r.URL.Path, "/api/zones/")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.GetZone(w, r, id)
}

func (h *ZonesHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.zones.ListZones(r.Context())
	if err != nil {
		h.logger.Error("Failed to list zones", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch zones")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(zones))
}

func (h *ZonesHandler) GetZone(w http.ResponseWriter, r *http.Request, id string) {
	zone, err := h.zones.GetZone(r.Context(), id)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "Zone not found")
			return
		}
		h.logger.Error("Failed to get zone", zap.String("zone_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch zone")
		return
	}

	detail := ZoneDetail{Zone: *zone}
	if h.scores != nil {
		if score, ok := h.scores.Score(id); ok {
			detail.Score = &score
			detail.Band = scoring.Band(score.Score)
		}
	}
	writeJSON(w, http.StatusOK, detail)
}
