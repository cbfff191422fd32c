package models

import (
	"fmt"
	"strings"
	"time"
)

// AirQualityLog one PM2.5 reading captured for a zone during a recompute cycle (append-only)
type AirQualityLog struct {
	ID        string    `json:"id" db:"id"`
	ZoneID    string    `json:"zoneId" db:"zone_id"`
	PM25      float64   `json:"pm25" db:"pm25"` // μg/m³
	Timestamp time.Time `json:"timestamp" db:"recorded_at"`
}

// NewAirQualityLog payload for POST /api/air-quality
type NewAirQualityLog struct {
	ZoneID    string    `json:"zoneId"`
	PM25      *float64  `json:"pm25"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks required fields and the pm25 lower bound
func (l NewAirQualityLog) Validate() error {
	if strings.TrimSpace(l.ZoneID) == "" {
		return fmt.Errorf("%w: zoneId is required", ErrValidation)
	}
	if l.PM25 == nil {
		return fmt.Errorf("%w: pm25 is required", ErrValidation)
	}
	if *l.PM25 < 0 {
		return fmt.Errorf("%w: pm25 must be >= 0", ErrValidation)
	}
	if l.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrValidation)
	}
	return nil
}
