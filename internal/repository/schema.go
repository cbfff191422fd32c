package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS zones (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		density_factor  DOUBLE PRECISION NOT NULL,
		water_deficit   DOUBLE PRECISION NOT NULL,
		industrial_zone BOOLEAN NOT NULL DEFAULT FALSE,
		latitude        DOUBLE PRECISION NOT NULL,
		longitude       DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS air_quality_logs (
		id          TEXT PRIMARY KEY,
		zone_id     TEXT NOT NULL,
		pm25        DOUBLE PRECISION NOT NULL CHECK (pm25 >= 0),
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_air_quality_logs_zone ON air_quality_logs (zone_id, recorded_at)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id         TEXT PRIMARY KEY,
		zone_id    TEXT NOT NULL,
		zone_name  TEXT NOT NULL,
		res_score  DOUBLE PRECISION NOT NULL,
		pm25       DOUBLE PRECISION NOT NULL,
		severity   TEXT NOT NULL CHECK (severity IN ('critical', 'high', 'medium')),
		message    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_zone ON alerts (zone_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts (is_active) WHERE is_active`,
	`CREATE TABLE IF NOT EXISTS action_reports (
		id           TEXT PRIMARY KEY,
		alert_id     TEXT NOT NULL,
		action_taken TEXT NOT NULL,
		user_id      TEXT NOT NULL DEFAULT 'system',
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_action_reports_alert ON action_reports (alert_id)`,
	`CREATE TABLE IF NOT EXISTS community_reports (
		id          TEXT PRIMARY KEY,
		zone_id     TEXT NOT NULL,
		zone_name   TEXT NOT NULL,
		report_text TEXT NOT NULL,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_community_reports_zone ON community_reports (zone_id)`,
}

// EnsureSchema creates the tables when missing
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// SeedZones inserts the Delhi zones when the zones table is empty.
// Returns the number of zones inserted.
func SeedZones(ctx context.Context, db *sql.DB, logger *zap.Logger) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM zones`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count zones: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	seeds := DelhiZones()
	for _, z := range seeds {
		_, err := tx.ExecContext(ctx, insertZoneSQL,
			uuid.NewString(), z.Name, z.DensityFactor, z.WaterDeficit, z.IndustrialZone, z.Latitude, z.Longitude,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to seed zone %s: %w", z.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit zone seed: %w", err)
	}

	if logger != nil {
		logger.Info("Seeded zones", zap.Int("count", len(seeds)))
	}
	return len(seeds), nil
}
