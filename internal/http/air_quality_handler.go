package httpapi

import (
	"net/http"

	"climate-sentinel/internal/models"
	"climate-sentinel/internal/repository"

	"go.uber.org/zap"
)

type AirQualityHandler struct {
	logs   repository.AirQualityRepository
	logger *zap.Logger
}

func NewAirQualityHandler(logs repository.AirQualityRepository, logger *zap.Logger) *AirQualityHandler {
	return &AirQualityHandler{logs: logs, logger: logger}
}

func (h *AirQualityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/air-quality" {
		switch r.Method {
		case http.MethodGet:
			h.ListLogs(w, r)
		case http.MethodPost:
			h.CreateLog(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	zoneID, ok := pathID(r.URL.Path, "/api/air-quality/")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.ListLogsByZone(w, r, zoneID)
}

func (h *AirQualityHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.logs.ListAirQualityLogs(r.Context())
	if err != nil {
		h.logger.Error("Failed to list air quality logs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch air quality logs")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(logs))
}

func (h *AirQualityHandler) ListLogsByZone(w http.ResponseWriter, r *http.Request, zoneID string) {
	logs, err := h.logs.ListAirQualityLogsByZone(r.Context(), zoneID)
	if err != nil {
		h.logger.Error("Failed to list air quality logs", zap.String("zone_id", zoneID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch air quality logs")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(logs))
}

func (h *AirQualityHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var payload models.NewAirQualityLog
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid air quality log data")
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.logs.CreateAirQualityLog(r.Context(), models.AirQualityLog{
		ZoneID:    payload.ZoneID,
		PM25:      *payload.PM25,
		Timestamp: payload.Timestamp,
	})
	if err != nil {
		h.logger.Error("Failed to create air quality log", zap.String("zone_id", payload.ZoneID), zap.Error(err))
		writeError(w, statusFor(err), "Failed to create air quality log")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
