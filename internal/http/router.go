package httpapi

import (
	"net/http"

	"climate-sentinel/internal/metrics"

	"go.uber.org/zap"
)

// Router net/http ServeMux with per-route metrics
type Router struct {
	mux     *http.ServeMux
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewRouter(m *metrics.Metrics, logger *zap.Logger) *Router {
	return &Router{
		mux:     http.NewServeMux(),
		metrics: m,
		logger:  logger,
	}
}

// Handle registers h under pattern; route is the metrics label
func (r *Router) Handle(pattern, route string, h http.HandlerFunc) {
	r.mux.Handle(pattern, r.metrics.WrapHandler(route, h))
}

// HandleHandler registers an unwrapped http.Handler (metrics endpoint)
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterZoneRoutes /api/zones
func (r *Router) RegisterZoneRoutes(h *ZonesHandler) {
	r.Handle("/api/zones", "zones", h.ServeHTTP)
	r.Handle("/api/zones/", "zones", h.ServeHTTP)
}

// RegisterScoreRoutes /api/res
func (r *Router) RegisterScoreRoutes(h *ScoresHandler) {
	r.Handle("/api/res/scores", "res_scores", h.ServeHTTP)
	r.Handle("/api/res/scores/", "res_scores", h.ServeHTTP)
	r.Handle("/api/res/refresh", "res_refresh", h.ServeHTTP)
}

// RegisterAirQualityRoutes /api/air-quality
func (r *Router) RegisterAirQualityRoutes(h *AirQualityHandler) {
	r.Handle("/api/air-quality", "air_quality", h.ServeHTTP)
	r.Handle("/api/air-quality/", "air_quality", h.ServeHTTP)
}

// RegisterAlertRoutes /api/alerts
func (r *Router) RegisterAlertRoutes(h *AlertsHandler) {
	r.Handle("/api/alerts", "alerts", h.ServeHTTP)
	r.Handle("/api/alerts/", "alerts", h.ServeHTTP)
}

// RegisterReportRoutes /api/action-reports and /api/community-reports
func (r *Router) RegisterReportRoutes(h *ReportsHandler) {
	r.Handle("/api/action-reports", "action_reports", h.ServeActionReports)
	r.Handle("/api/action-reports/", "action_reports", h.ServeActionReports)
	r.Handle("/api/community-reports", "community_reports", h.ServeCommunityReports)
	r.Handle("/api/community-reports/", "community_reports", h.ServeCommunityReports)
}

// RegisterOpsRoutes health and metrics endpoints
func (r *Router) RegisterOpsRoutes(h *HealthHandler) {
	r.mux.HandleFunc("/healthz", h.ServeHTTP)
	if r.metrics != nil {
		r.HandleHandler("/metrics", r.metrics.Handler())
	}
}
