package httpapi

import (
	"net/http"
	"strings"

	"climate-sentinel/internal/models"
	"climate-sentinel/internal/repository"

	"go.uber.org/zap"
)

// ReportsHandler operator action reports and citizen community reports
type ReportsHandler struct {
	actions   repository.ActionReportsRepository
	community repository.CommunityReportsRepository
	logger    *zap.Logger
}

func NewReportsHandler(actions repository.ActionReportsRepository, community repository.CommunityReportsRepository, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{actions: actions, community: community, logger: logger}
}

// --- Action reports ---

func (h *ReportsHandler) ServeActionReports(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/action-reports" {
		switch r.Method {
		case http.MethodGet:
			h.ListActionReports(w, r)
		case http.MethodPost:
			h.CreateActionReport(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	alertID, ok := pathID(r.URL.Path, "/api/action-reports/")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.ListActionReportsByAlert(w, r, alertID)
}

func (h *ReportsHandler) ListActionReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.actions.ListActionReports(r.Context())
	if err != nil {
		h.logger.Error("Failed to list action reports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch action reports")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(reports))
}

func (h *ReportsHandler) ListActionReportsByAlert(w http.ResponseWriter, r *http.Request, alertID string) {
	reports, err := h.actions.ListActionReportsByAlert(r.Context(), alertID)
	if err != nil {
		h.logger.Error("Failed to list action reports", zap.String("alert_id", alertID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch action reports")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(reports))
}

func (h *ReportsHandler) CreateActionReport(w http.ResponseWriter, r *http.Request) {
	var payload models.NewActionReport
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid action report data")
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.actions.CreateActionReport(r.Context(), models.ActionReport{
		AlertID:     payload.AlertID,
		ActionTaken: payload.ActionTaken,
		UserID:      payload.UserID,
	})
	if err != nil {
		h.logger.Error("Failed to create action report", zap.String("alert_id", payload.AlertID), zap.Error(err))
		writeError(w, statusFor(err), "Failed to create action report")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// --- Community reports ---

func (h *ReportsHandler) ServeCommunityReports(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/community-reports":
		switch r.Method {
		case http.MethodGet:
			h.ListCommunityReports(w, r)
		case http.MethodPost:
			h.CreateCommunityReport(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case strings.HasSuffix(path, "/verify"):
		id, ok := pathID(strings.TrimSuffix(path, "/verify"), "/api/community-reports/")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.VerifyCommunityReport(w, r, id)
	default:
		zoneID, ok := pathID(path, "/api/community-reports/")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListCommunityReportsByZone(w, r, zoneID)
	}
}

func (h *ReportsHandler) ListCommunityReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.community.ListCommunityReports(r.Context())
	if err != nil {
		h.logger.Error("Failed to list community reports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch community reports")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(reports))
}

func (h *ReportsHandler) ListCommunityReportsByZone(w http.ResponseWriter, r *http.Request, zoneID string) {
	reports, err := h.community.ListCommunityReportsByZone(r.Context(), zoneID)
	if err != nil {
		h.logger.Error("Failed to list community reports", zap.String("zone_id", zoneID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch community reports")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(reports))
}

func (h *ReportsHandler) CreateCommunityReport(w http.ResponseWriter, r *http.Request) {
	var payload models.NewCommunityReport
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid community report data")
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.community.CreateCommunityReport(r.Context(), models.CommunityReport{
		ZoneID:     payload.ZoneID,
		ZoneName:   payload.ZoneName,
		ReportText: payload.ReportText,
		IsVerified: payload.IsVerified,
	})
	if err != nil {
		h.logger.Error("Failed to create community report", zap.String("zone_id", payload.ZoneID), zap.Error(err))
		writeError(w, statusFor(err), "Failed to create community report")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ReportsHandler) VerifyCommunityReport(w http.ResponseWriter, r *http.Request, id string) {
	report, err := h.community.VerifyCommunityReport(r.Context(), id)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "Community report not found")
			return
		}
		h.logger.Error("Failed to verify community report", zap.String("report_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to verify community report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
