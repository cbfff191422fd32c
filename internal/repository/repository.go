// Package repository persists zones, air quality logs, alerts and reports.
//
// Two implementations exist: MemoryStore for local runs and tests, PostgresStore for
// deployments. Alerts are never deleted and an inactive alert is never re-activated.
package repository

import (
	"context"
	"errors"

	"climate-sentinel/internal/models"
)

var (
	// ErrNotFound the requested record does not exist
	ErrNotFound = errors.New("not found")
	// ErrAlertReactivation an inactive alert cannot become active again
	ErrAlertReactivation = errors.New("inactive alert cannot be re-activated")
)

// ZonesRepository zone registry
type ZonesRepository interface {
	ListZones(ctx context.Context) ([]models.Zone, error)
	GetZone(ctx context.Context, id string) (*models.Zone, error)
	// CreateZone assigns a new ID when zone.ID is empty
	CreateZone(ctx context.Context, zone models.Zone) (*models.Zone, error)
}

// AirQualityRepository append-only PM2.5 log
type AirQualityRepository interface {
	ListAirQualityLogs(ctx context.Context) ([]models.AirQualityLog, error)
	ListAirQualityLogsByZone(ctx context.Context, zoneID string) ([]models.AirQualityLog, error)
	CreateAirQualityLog(ctx context.Context, log models.AirQualityLog) (*models.AirQualityLog, error)
}

// AlertsRepository alert history
type AlertsRepository interface {
	ListAlerts(ctx context.Context) ([]models.Alert, error)
	ListAlertsByZone(ctx context.Context, zoneID string) ([]models.Alert, error)
	ListActiveAlerts(ctx context.Context) ([]models.Alert, error)
	// CreateAlert keeps a caller-provided ID and assigns one otherwise
	CreateAlert(ctx context.Context, alert models.Alert) (*models.Alert, error)
	// UpdateAlert applies the patch; returns ErrNotFound or ErrAlertReactivation
	UpdateAlert(ctx context.Context, id string, patch models.AlertPatch) (*models.Alert, error)
}

// ActionReportsRepository operator responses to alerts
type ActionReportsRepository interface {
	ListActionReports(ctx context.Context) ([]models.ActionReport, error)
	ListActionReportsByAlert(ctx context.Context, alertID string) ([]models.ActionReport, error)
	// CreateActionReport stamps ID and timestamp when absent
	CreateActionReport(ctx context.Context, report models.ActionReport) (*models.ActionReport, error)
}

// CommunityReportsRepository citizen observations
type CommunityReportsRepository interface {
	ListCommunityReports(ctx context.Context) ([]models.CommunityReport, error)
	ListCommunityReportsByZone(ctx context.Context, zoneID string) ([]models.CommunityReport, error)
	// CreateCommunityReport stamps ID and timestamp when absent
	CreateCommunityReport(ctx context.Context, report models.CommunityReport) (*models.CommunityReport, error)
	// VerifyCommunityReport marks the report verified; returns ErrNotFound
	VerifyCommunityReport(ctx context.Context, id string) (*models.CommunityReport, error)
}

// Store the full persistence surface
type Store interface {
	ZonesRepository
	AirQualityRepository
	AlertsRepository
	ActionReportsRepository
	CommunityReportsRepository
}

// checkAlertPatch enforces the one-way isActive transition
func checkAlertPatch(current models.Alert, patch models.AlertPatch) error {
	if patch.IsActive != nil && *patch.IsActive && !current.IsActive {
		return ErrAlertReactivation
	}
	return nil
}
