package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"climate-sentinel/internal/models"

	"github.com/google/uuid"
)

const zoneColumns = `id, name, density_factor, water_deficit, industrial_zone, latitude, longitude`

const insertZoneSQL = `
	INSERT INTO zones (` + zoneColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func scanZone(row rowScanner) (models.Zone, error) {
	var z models.Zone
	err := row.Scan(&z.ID, &z.Name, &z.DensityFactor, &z.WaterDeficit, &z.IndustrialZone, &z.Latitude, &z.Longitude)
	return z, err
}

// ListZones all zones ordered by name
func (s *PostgresStore) ListZones(ctx context.Context) ([]models.Zone, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+zoneColumns+` FROM zones ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	defer rows.Close()

	zones := make([]models.Zone, 0)
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zones: %w", err)
	}
	return zones, nil
}

// GetZone returns ErrNotFound for an unknown id
func (s *PostgresStore) GetZone(ctx context.Context, id string) (*models.Zone, error) {
	z, err := scanZone(s.db.QueryRowContext(ctx, `SELECT `+zoneColumns+` FROM zones WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("zone %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}
	return &z, nil
}

// CreateZone inserts a zone
func (s *PostgresStore) CreateZone(ctx context.Context, zone models.Zone) (*models.Zone, error) {
	if zone.ID == "" {
		zone.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, insertZoneSQL,
		zone.ID, zone.Name, zone.DensityFactor, zone.WaterDeficit, zone.IndustrialZone, zone.Latitude, zone.Longitude,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}
	return &zone, nil
}
