package repository

import (
	"context"
	"sync"
	"time"

	"climate-sentinel/internal/models"

	"github.com/google/uuid"
)

// MemoryStore in-process Store used when no database is configured.
// Lists are returned in insertion order.
type MemoryStore struct {
	mu               sync.RWMutex
	zones            []models.Zone
	airQualityLogs   []models.AirQualityLog
	alerts           []models.Alert
	alertIndex       map[string]int
	actionReports    []models.ActionReport
	communityReports []models.CommunityReport
	reportIndex      map[string]int
	now              func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		alertIndex:  map[string]int{},
		reportIndex: map[string]int{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// NewSeededMemoryStore creates a store holding the Delhi zones
func NewSeededMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	for _, z := range DelhiZones() {
		zone := ZoneFrom(z)
		zone.ID = uuid.NewString()
		s.zones = append(s.zones, zone)
	}
	return s
}

// --- Zones ---

func (s *MemoryStore) ListZones(_ context.Context) ([]models.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Zone(nil), s.zones...), nil
}

func (s *MemoryStore) GetZone(_ context.Context, id string) (*models.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, z := range s.zones {
		if z.ID == id {
			zone := z
			return &zone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateZone(_ context.Context, zone models.Zone) (*models.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if zone.ID == "" {
		zone.ID = uuid.NewString()
	}
	s.zones = append(s.zones, zone)
	return &zone, nil
}

// --- Air quality logs ---

func (s *MemoryStore) ListAirQualityLogs(_ context.Context) ([]models.AirQualityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AirQualityLog(nil), s.airQualityLogs...), nil
}

func (s *MemoryStore) ListAirQualityLogsByZone(_ context.Context, zoneID string) ([]models.AirQualityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AirQualityLog, 0)
	for _, l := range s.airQualityLogs {
		if l.ZoneID == zoneID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateAirQualityLog(_ context.Context, log models.AirQualityLog) (*models.AirQualityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = s.now()
	}
	s.airQualityLogs = append(s.airQualityLogs, log)
	return &log, nil
}

// --- Alerts ---

func (s *MemoryStore) ListAlerts(_ context.Context) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Alert(nil), s.alerts...), nil
}

func (s *MemoryStore) ListAlertsByZone(_ context.Context, zoneID string) ([]models.Alert, error) {
	return s.filterAlerts(func(a models.Alert) bool { return a.ZoneID == zoneID }), nil
}

func (s *MemoryStore) ListActiveAlerts(_ context.Context) ([]models.Alert, error) {
	return s.filterAlerts(func(a models.Alert) bool { return a.IsActive }), nil
}

func (s *MemoryStore) filterAlerts(keep func(models.Alert) bool) []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Alert, 0)
	for _, a := range s.alerts {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s *MemoryStore) CreateAlert(_ context.Context, alert models.Alert) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = s.now()
	}
	s.alertIndex[alert.ID] = len(s.alerts)
	s.alerts = append(s.alerts, alert)
	return &alert, nil
}

func (s *MemoryStore) UpdateAlert(_ context.Context, id string, patch models.AlertPatch) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.alertIndex[id]
	if !ok {
		return nil, ErrNotFound
	}
	alert := s.alerts[idx]
	if err := checkAlertPatch(alert, patch); err != nil {
		return nil, err
	}
	if patch.IsActive != nil {
		alert.IsActive = *patch.IsActive
	}
	s.alerts[idx] = alert
	return &alert, nil
}

// --- Action reports ---

func (s *MemoryStore) ListActionReports(_ context.Context) ([]models.ActionReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ActionReport(nil), s.actionReports...), nil
}

func (s *MemoryStore) ListActionReportsByAlert(_ context.Context, alertID string) ([]models.ActionReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ActionReport, 0)
	for _, r := range s.actionReports {
		if r.AlertID == alertID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateActionReport(_ context.Context, report models.ActionReport) (*models.ActionReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = s.now()
	}
	if report.UserID == "" {
		report.UserID = models.DefaultUserID
	}
	s.actionReports = append(s.actionReports, report)
	return &report, nil
}

// --- Community reports ---

func (s *MemoryStore) ListCommunityReports(_ context.Context) ([]models.CommunityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CommunityReport(nil), s.communityReports...), nil
}

func (s *MemoryStore) ListCommunityReportsByZone(_ context.Context, zoneID string) ([]models.CommunityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CommunityReport, 0)
	for _, r := range s.communityReports {
		if r.ZoneID == zoneID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateCommunityReport(_ context.Context, report models.CommunityReport) (*models.CommunityReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = s.now()
	}
	s.reportIndex[report.ID] = len(s.communityReports)
	s.communityReports = append(s.communityReports, report)
	return &report, nil
}

func (s *MemoryStore) VerifyCommunityReport(_ context.Context, id string) (*models.CommunityReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.reportIndex[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.communityReports[idx].IsVerified = true
	report := s.communityReports[idx]
	return &report, nil
}
