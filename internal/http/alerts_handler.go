package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"climate-sentinel/internal/export"
	"climate-sentinel/internal/models"
	"climate-sentinel/internal/repository"

	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AlertsHandler struct {
	alerts repository.AlertsRepository
	scores ScoreService
	logger *zap.Logger
}

func NewAlertsHandler(alerts repository.AlertsRepository, scores ScoreService, logger *zap.Logger) *AlertsHandler {
	return &AlertsHandler{alerts: alerts, scores: scores, logger: logger}
}

func (h *AlertsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch path {
	case "/api/alerts":
		switch r.Method {
		case http.MethodGet:
			h.ListAlerts(w, r)
		case http.MethodPost:
			h.CreateAlert(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case "/api/alerts/active":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListActiveAlerts(w, r)
		return
	case "/api/alerts/export":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ExportAlerts(w, r)
		return
	}

	id, ok := pathID(path, "/api/alerts/")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.ListAlertsByZone(w, r, id)
	case http.MethodPatch:
		h.UpdateAlert(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *AlertsHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.ListAlerts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list alerts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch alerts")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(alerts))
}

func (h *AlertsHandler) ListActiveAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.ListActiveAlerts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list active alerts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch active alerts")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(alerts))
}

func (h *AlertsHandler) ListAlertsByZone(w http.ResponseWriter, r *http.Request, zoneID string) {
	alerts, err := h.alerts.ListAlertsByZone(r.Context(), zoneID)
	if err != nil {
		h.logger.Error("Failed to list alerts", zap.String("zone_id", zoneID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch alerts")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(alerts))
}

func (h *AlertsHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var payload models.NewAlert
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid alert data")
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.alerts.CreateAlert(r.Context(), payload.ToAlert())
	if err != nil {
		h.logger.Error("Failed to create alert", zap.String("zone_id", payload.ZoneID), zap.Error(err))
		writeError(w, statusFor(err), "Failed to create alert")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateAlert applies a patch; re-activating an inactive alert is a conflict
func (h *AlertsHandler) UpdateAlert(w http.ResponseWriter, r *http.Request, id string) {
	var patch models.AlertPatch
	if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid alert patch")
		return
	}

	updated, err := h.alerts.UpdateAlert(r.Context(), id, patch)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to update alert", zap.String("alert_id", id), zap.Error(err))
			writeError(w, status, "Failed to update alert")
			return
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ExportAlerts streams the alert history and latest cached scores as xlsx
func (h *AlertsHandler) ExportAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.ListAlerts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list alerts for export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to export alerts")
		return
	}

	var scores []models.ResScore
	if h.scores != nil {
		scores = h.scores.CachedScores()
	}

	data, err := export.AlertsWorkbook(alerts, scores)
	if err != nil {
		h.logger.Error("Failed to build alerts workbook", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to export alerts")
		return
	}

	filename := fmt.Sprintf("alerts_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)

	h.logger.Info("Exported alerts",
		zap.Int("alerts", len(alerts)),
		zap.Int("zones", len(scores)),
	)
}
