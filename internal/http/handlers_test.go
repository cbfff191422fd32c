package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"climate-sentinel/internal/cache"
	"climate-sentinel/internal/export"
	"climate-sentinel/internal/metrics"
	"climate-sentinel/internal/models"
	"climate-sentinel/internal/repository"
	"climate-sentinel/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type constSource struct {
	pm25 float64
}

func (c constSource) GetZonePm25Data(_ context.Context, zones []models.Zone) map[string]float64 {
	out := make(map[string]float64, len(zones))
	for _, z := range zones {
		out[z.ID] = c.pm25
	}
	return out
}

type testAPI struct {
	router *Router
	store  *repository.MemoryStore
	orch   *service.Orchestrator
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()
	store := repository.NewSeededMemoryStore()
	m := metrics.New()
	orch := service.NewOrchestrator(store, constSource{pm25: 120}, cache.NewScoreCache(),
		service.DefaultOrchestratorConfig(), logger, service.WithMetrics(m))

	r := NewRouter(m, logger)
	r.RegisterZoneRoutes(NewZonesHandler(store, orch, logger))
	r.RegisterScoreRoutes(NewScoresHandler(orch, logger))
	r.RegisterAirQualityRoutes(NewAirQualityHandler(store, logger))
	r.RegisterAlertRoutes(NewAlertsHandler(store, orch, logger))
	r.RegisterReportRoutes(NewReportsHandler(store, store, logger))
	r.RegisterOpsRoutes(NewHealthHandler(orch))
	return &testAPI{router: r, store: store, orch: orch}
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) firstZone(t *testing.T) models.Zone {
	t.Helper()
	zones, err := a.store.ListZones(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, zones)
	return zones[0]
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestZones_ListAndDetail(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/zones", "")
	require.Equal(t, http.StatusOK, w.Code)
	zones := decode[[]models.Zone](t, w)
	assert.Len(t, zones, 8)

	zone := zones[0]
	w = api.do(http.MethodGet, "/api/zones/"+zone.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[ZoneDetail](t, w)
	assert.Equal(t, zone.Name, detail.Name)
	assert.Nil(t, detail.Score, "no score before the first cycle")

	require.NoError(t, api.orch.RecomputeAll(context.Background()))

	w = api.do(http.MethodGet, "/api/zones/"+zone.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	detail = decode[ZoneDetail](t, w)
	require.NotNil(t, detail.Score)
	assert.NotEmpty(t, detail.Band)

	w = api.do(http.MethodGet, "/api/zones/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Zone not found")

	w = api.do(http.MethodDelete, "/api/zones", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestScores_ReadRefreshAndLookup(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/res/scores/"+api.firstZone(t).ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code, "lookup never triggers a recompute")

	w = api.do(http.MethodGet, "/api/res/scores", "")
	require.Equal(t, http.StatusOK, w.Code)
	scores := decode[[]models.ResScore](t, w)
	require.Len(t, scores, 8)
	for _, s := range scores {
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 100.0)
		assert.Equal(t, 120.0, s.PM25)
	}

	w = api.do(http.MethodGet, "/api/res/scores/"+scores[0].ZoneID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, scores[0].ZoneID, decode[models.ResScore](t, w).ZoneID)

	w = api.do(http.MethodPost, "/api/res/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	refreshed := decode[RefreshResponse](t, w)
	assert.Equal(t, "RES scores and alerts updated", refreshed.Message)
	assert.Len(t, refreshed.Scores, 8)

	w = api.do(http.MethodGet, "/api/res/refresh", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = api.do(http.MethodGet, "/api/res/scores/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAirQuality_CreateAndList(t *testing.T) {
	api := newTestAPI(t)
	zone := api.firstZone(t)

	w := api.do(http.MethodGet, "/api/air-quality", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = api.do(http.MethodPost, "/api/air-quality", `{"zoneId":"`+zone.ID+`","pm25":-3,"timestamp":"2024-11-03T08:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Error, "pm25")

	w = api.do(http.MethodPost, "/api/air-quality", `{"zoneId":"`+zone.ID+`","pm25":88.5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "timestamp is required")

	w = api.do(http.MethodPost, "/api/air-quality", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/air-quality", `{"zoneId":"`+zone.ID+`","pm25":88.5,"timestamp":"2024-11-03T08:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.AirQualityLog](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 88.5, created.PM25)

	w = api.do(http.MethodGet, "/api/air-quality/"+zone.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.AirQualityLog](t, w), 1)

	w = api.do(http.MethodGet, "/api/air-quality/other", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.AirQualityLog](t, w))
}

func TestAlerts_CreatePatchAndFilter(t *testing.T) {
	api := newTestAPI(t)
	zone := api.firstZone(t)

	body := `{"zoneId":"` + zone.ID + `","zoneName":"` + zone.Name + `","resScore":35,"pm25":120,` +
		`"severity":"critical","message":"Manual escalation","timestamp":"2024-11-03T08:00:00Z"}`
	w := api.do(http.MethodPost, "/api/alerts", body)
	require.Equal(t, http.StatusCreated, w.Code)
	alert := decode[models.Alert](t, w)
	assert.True(t, alert.IsActive)
	assert.NotEmpty(t, alert.ID)

	w = api.do(http.MethodPost, "/api/alerts", strings.Replace(body, `"critical"`, `"low"`, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/alerts/active", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Alert](t, w), 1)

	w = api.do(http.MethodGet, "/api/alerts/"+zone.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Alert](t, w), 1)

	w = api.do(http.MethodPatch, "/api/alerts/"+alert.ID, `{"isActive":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.Alert](t, w).IsActive)

	w = api.do(http.MethodPatch, "/api/alerts/"+alert.ID, `{"isActive":true}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPatch, "/api/alerts/missing", `{"isActive":false}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/alerts/active", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = api.do(http.MethodGet, "/api/alerts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Alert](t, w), 1)
}

func TestAlerts_Export(t *testing.T) {
	api := newTestAPI(t)
	require.NoError(t, api.orch.RecomputeAll(context.Background()))

	alerts, err := api.store.ListAlerts(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, alerts, "pm25 120 raises alerts")

	w := api.do(http.MethodGet, "/api/alerts/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.AlertsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, len(alerts)+1)

	scoreRows, err := f.GetRows(export.ScoresSheet)
	require.NoError(t, err)
	assert.Len(t, scoreRows, 9)
}

func TestActionReports(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/action-reports", `{"alertId":"a1","actionTaken":"done"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/action-reports", `{"alertId":"a1","actionTaken":"Deployed anti-smog guns at the junction"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	report := decode[models.ActionReport](t, w)
	assert.Equal(t, models.DefaultUserID, report.UserID)
	assert.False(t, report.Timestamp.IsZero())

	w = api.do(http.MethodGet, "/api/action-reports/a1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.ActionReport](t, w), 1)

	w = api.do(http.MethodGet, "/api/action-reports", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.ActionReport](t, w), 1)
}

func TestCommunityReports_CreateAndVerify(t *testing.T) {
	api := newTestAPI(t)
	zone := api.firstZone(t)

	w := api.do(http.MethodPost, "/api/community-reports", `{"zoneId":"`+zone.ID+`","zoneName":"`+zone.Name+`","reportText":"smoggy"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/community-reports",
		`{"zoneId":"`+zone.ID+`","zoneName":"`+zone.Name+`","reportText":"Garbage burning near the market every evening"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	report := decode[models.CommunityReport](t, w)
	assert.False(t, report.IsVerified)

	w = api.do(http.MethodPost, "/api/community-reports/"+report.ID+"/verify", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.CommunityReport](t, w).IsVerified)

	w = api.do(http.MethodGet, "/api/community-reports/"+report.ID+"/verify", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = api.do(http.MethodPost, "/api/community-reports/missing/verify", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/community-reports/"+zone.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	reports := decode[[]models.CommunityReport](t, w)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].IsVerified)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[HealthStatus](t, w)
	assert.Equal(t, "ok", health.Status)
	assert.False(t, health.Fresh)
	assert.Nil(t, health.LastUpdate)

	require.NoError(t, api.orch.RecomputeAll(context.Background()))
	api.do(http.MethodGet, "/api/zones", "")

	health = decode[HealthStatus](t, api.do(http.MethodGet, "/healthz", ""))
	assert.True(t, health.Fresh)
	require.NotNil(t, health.LastUpdate)
	assert.WithinDuration(t, time.Now(), *health.LastUpdate, time.Minute)

	w = api.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `climate_sentinel_http_requests_total{route="zones",status="200"}`)
	assert.Contains(t, body, "climate_sentinel_recompute_runs_total")
}

func TestPathID(t *testing.T) {
	id, ok := pathID("/api/zones/abc", "/api/zones/")
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = pathID("/api/zones/", "/api/zones/")
	assert.False(t, ok)
	_, ok = pathID("/api/zones/a/b", "/api/zones/")
	assert.False(t, ok)
	_, ok = pathID("/api/alerts/a", "/api/zones/")
	assert.False(t, ok)
}
