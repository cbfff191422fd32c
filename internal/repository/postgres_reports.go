package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"climate-sentinel/internal/models"

	"github.com/google/uuid"
)

const (
	actionReportColumns    = `id, alert_id, action_taken, user_id, created_at`
	communityReportColumns = `id, zone_id, zone_name, report_text, is_verified, created_at`
)

// --- Action reports ---

func (s *PostgresStore) queryActionReports(ctx context.Context, query string, args ...any) ([]models.ActionReport, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list action reports: %w", err)
	}
	defer rows.Close()

	reports := make([]models.ActionReport, 0)
	for rows.Next() {
		var r models.ActionReport
		if err := rows.Scan(&r.ID, &r.AlertID, &r.ActionTaken, &r.UserID, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan action report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate action reports: %w", err)
	}
	return reports, nil
}

// ListActionReports all action reports, oldest first
func (s *PostgresStore) ListActionReports(ctx context.Context) ([]models.ActionReport, error) {
	return s.queryActionReports(ctx, `SELECT `+actionReportColumns+` FROM action_reports ORDER BY created_at, id`)
}

// ListActionReportsByAlert reports filed against one alert
func (s *PostgresStore) ListActionReportsByAlert(ctx context.Context, alertID string) ([]models.ActionReport, error) {
	return s.queryActionReports(ctx,
		`SELECT `+actionReportColumns+` FROM action_reports WHERE alert_id = $1 ORDER BY created_at, id`, alertID)
}

// CreateActionReport inserts an action report
func (s *PostgresStore) CreateActionReport(ctx context.Context, report models.ActionReport) (*models.ActionReport, error) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now().UTC()
	}
	if report.UserID == "" {
		report.UserID = models.DefaultUserID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO action_reports (`+actionReportColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		report.ID, report.AlertID, report.ActionTaken, report.UserID, report.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create action report: %w", err)
	}
	return &report, nil
}

// --- Community reports ---

func scanCommunityReport(row rowScanner) (models.CommunityReport, error) {
	var r models.CommunityReport
	err := row.Scan(&r.ID, &r.ZoneID, &r.ZoneName, &r.ReportText, &r.IsVerified, &r.Timestamp)
	return r, err
}

func (s *PostgresStore) queryCommunityReports(ctx context.Context, query string, args ...any) ([]models.CommunityReport, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list community reports: %w", err)
	}
	defer rows.Close()

	reports := make([]models.CommunityReport, 0)
	for rows.Next() {
		r, err := scanCommunityReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan community report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate community reports: %w", err)
	}
	return reports, nil
}

// ListCommunityReports all observations, oldest first
func (s *PostgresStore) ListCommunityReports(ctx context.Context) ([]models.CommunityReport, error) {
	return s.queryCommunityReports(ctx, `SELECT `+communityReportColumns+` FROM community_reports ORDER BY created_at, id`)
}

// ListCommunityReportsByZone observations of one zone
func (s *PostgresStore) ListCommunityReportsByZone(ctx context.Context, zoneID string) ([]models.CommunityReport, error) {
	return s.queryCommunityReports(ctx,
		`SELECT `+communityReportColumns+` FROM community_reports WHERE zone_id = $1 ORDER BY created_at, id`, zoneID)
}

// CreateCommunityReport inserts an observation
func (s *PostgresStore) CreateCommunityReport(ctx context.Context, report models.CommunityReport) (*models.CommunityReport, error) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO community_reports (`+communityReportColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		report.ID, report.ZoneID, report.ZoneName, report.ReportText, report.IsVerified, report.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create community report: %w", err)
	}
	return &report, nil
}

// VerifyCommunityReport flags the observation as verified
func (s *PostgresStore) VerifyCommunityReport(ctx context.Context, id string) (*models.CommunityReport, error) {
	r, err := scanCommunityReport(s.db.QueryRowContext(ctx,
		`UPDATE community_reports SET is_verified = TRUE WHERE id = $1 RETURNING `+communityReportColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("community report %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to verify community report: %w", err)
	}
	return &r, nil
}
