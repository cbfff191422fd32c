package httpapi

import (
	"net/http"
	"time"
)

// HealthStatus body of GET /healthz
type HealthStatus struct {
	Status     string     `json:"status"`
	Fresh      bool       `json:"fresh"`
	LastUpdate *time.Time `json:"lastUpdate,omitempty"`
}

type HealthHandler struct {
	scores ScoreService
}

func NewHealthHandler(scores ScoreService) *HealthHandler {
	return &HealthHandler{scores: scores}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	status := HealthStatus{Status: "ok"}
	if h.scores != nil {
		status.Fresh = h.scores.IsFresh()
		if last := h.scores.LastUpdate(); !last.IsZero() {
			status.LastUpdate = &last
		}
	}
	writeJSON(w, http.StatusOK, status)
}
