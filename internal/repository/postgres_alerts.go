package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"climate-sentinel/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const alertColumns = `id, zone_id, zone_name, res_score, pm25, severity, message, created_at, is_active`

func scanAlert(row rowScanner) (models.Alert, error) {
	var a models.Alert
	err := row.Scan(&a.ID, &a.ZoneID, &a.ZoneName, &a.ResScore, &a.PM25, &a.Severity, &a.Message, &a.Timestamp, &a.IsActive)
	return a, err
}

func (s *PostgresStore) queryAlerts(ctx context.Context, query string, args ...any) ([]models.Alert, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]models.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}
	return alerts, nil
}

// ListAlerts full alert history, oldest first
func (s *PostgresStore) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	return s.queryAlerts(ctx, `SELECT `+alertColumns+` FROM alerts ORDER BY created_at, id`)
}

// ListAlertsByZone alert history of one zone
func (s *PostgresStore) ListAlertsByZone(ctx context.Context, zoneID string) ([]models.Alert, error) {
	return s.queryAlerts(ctx, `SELECT `+alertColumns+` FROM alerts WHERE zone_id = $1 ORDER BY created_at, id`, zoneID)
}

// ListActiveAlerts alerts still signalling
func (s *PostgresStore) ListActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	return s.queryAlerts(ctx, `SELECT `+alertColumns+` FROM alerts WHERE is_active ORDER BY created_at, id`)
}

// CreateAlert inserts an alert record
func (s *PostgresStore) CreateAlert(ctx context.Context, alert models.Alert) (*models.Alert, error) {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (`+alertColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		alert.ID, alert.ZoneID, alert.ZoneName, alert.ResScore, alert.PM25,
		string(alert.Severity), alert.Message, alert.Timestamp, alert.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}
	return &alert, nil
}

// UpdateAlert applies the patch under a row lock
func (s *PostgresStore) UpdateAlert(ctx context.Context, id string, patch models.AlertPatch) (*models.Alert, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := scanAlert(tx.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("alert %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	if err := checkAlertPatch(current, patch); err != nil {
		return nil, err
	}

	if patch.IsActive != nil && *patch.IsActive != current.IsActive {
		if _, err := tx.ExecContext(ctx, `UPDATE alerts SET is_active = $2 WHERE id = $1`, id, *patch.IsActive); err != nil {
			return nil, fmt.Errorf("failed to update alert: %w", err)
		}
		current.IsActive = *patch.IsActive
		s.logger.Debug("Alert status changed",
			zap.String("alert_id", id),
			zap.Bool("is_active", current.IsActive),
		)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit alert update: %w", err)
	}
	return &current, nil
}
