package models

import "time"

// ResScore derived resilience score of a zone for one recompute cycle (not persisted)
type ResScore struct {
	ZoneID            string    `json:"zoneId"`
	ZoneName          string    `json:"zoneName"`
	Score             float64   `json:"score"`             // 0-100, higher is healthier
	AirRisk           float64   `json:"airRisk"`           // 0-100
	WaterDeficit      float64   `json:"waterDeficit"`      // 0-100
	DensityFactor     float64   `json:"densityFactor"`     // 0-100
	IndustrialPenalty float64   `json:"industrialPenalty"` // 0 or 10
	PM25              float64   `json:"pm25"`
	Timestamp         time.Time `json:"timestamp"`
}
