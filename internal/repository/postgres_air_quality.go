package repository

import (
	"context"
	"fmt"
	"time"

	"climate-sentinel/internal/models"

	"github.com/google/uuid"
)

const airQualityColumns = `id, zone_id, pm25, recorded_at`

func (s *PostgresStore) queryAirQualityLogs(ctx context.Context, query string, args ...any) ([]models.AirQualityLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list air quality logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.AirQualityLog, 0)
	for rows.Next() {
		var l models.AirQualityLog
		if err := rows.Scan(&l.ID, &l.ZoneID, &l.PM25, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan air quality log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate air quality logs: %w", err)
	}
	return logs, nil
}

// ListAirQualityLogs every reading, oldest first
func (s *PostgresStore) ListAirQualityLogs(ctx context.Context) ([]models.AirQualityLog, error) {
	return s.queryAirQualityLogs(ctx, `SELECT `+airQualityColumns+` FROM air_quality_logs ORDER BY recorded_at, id`)
}

// ListAirQualityLogsByZone readings of one zone, oldest first
func (s *PostgresStore) ListAirQualityLogsByZone(ctx context.Context, zoneID string) ([]models.AirQualityLog, error) {
	return s.queryAirQualityLogs(ctx,
		`SELECT `+airQualityColumns+` FROM air_quality_logs WHERE zone_id = $1 ORDER BY recorded_at, id`, zoneID)
}

// CreateAirQualityLog appends a reading
func (s *PostgresStore) CreateAirQualityLog(ctx context.Context, log models.AirQualityLog) (*models.AirQualityLog, error) {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO air_quality_logs (`+airQualityColumns+`) VALUES ($1, $2, $3, $4)`,
		log.ID, log.ZoneID, log.PM25, log.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create air quality log: %w", err)
	}
	return &log, nil
}
