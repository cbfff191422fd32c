// Package scoring computes the Environmental Resilience Score (RES) of a zone.
//
//	RES = 100 - [W1*AirRisk + W2*WaterDeficit + W3*Density + IndustrialPenalty]
//
// The industrial term is a flat 10-point penalty. Weights.IndustrialZone is carried as
// configuration only and does not enter the formula.
package scoring

import (
	"time"

	"climate-sentinel/internal/models"
)

// IndustrialPenalty fixed penalty applied to industrial zones
const IndustrialPenalty = 10.0

// Weights RES component weights
type Weights struct {
	AirQuality        float64 `json:"airQuality"`
	WaterDeficit      float64 `json:"waterDeficit"`
	PopulationDensity float64 `json:"populationDensity"`
	IndustrialZone    float64 `json:"industrialZone"`
}

// DefaultWeights 40% air, 30% water, 20% density, 10% industrial
func DefaultWeights() Weights {
	return Weights{
		AirQuality:        0.4,
		WaterDeficit:      0.3,
		PopulationDensity: 0.2,
		IndustrialZone:    0.1,
	}
}

// CalculateAirRisk maps a PM2.5 concentration to a 0-100 risk.
//
//	0-50     good       -> 0-25
//	50-100   moderate   -> 25-50
//	100-150  unhealthy  -> 50-75
//	150+     hazardous  -> 75-100 (capped)
//
// The bands are continuous at 50, 100 and 150.
func CalculateAirRisk(pm25 float64) float64 {
	if pm25 < 0 {
		pm25 = 0
	}
	switch {
	case pm25 <= 50:
		return pm25 / 50 * 25
	case pm25 <= 100:
		return 25 + (pm25-50)/50*25
	case pm25 <= 150:
		return 50 + (pm25-100)/50*25
	default:
		risk := 75 + (pm25-150)/150*25
		if risk > 100 {
			return 100
		}
		return risk
	}
}

// CalculateResScore scores one zone stamped with the current time
func CalculateResScore(zone models.Zone, pm25 float64, weights Weights) models.ResScore {
	return CalculateResScoreAt(zone, pm25, weights, time.Now().UTC())
}

// CalculateResScoreAt scores one zone with an explicit timestamp
func CalculateResScoreAt(zone models.Zone, pm25 float64, weights Weights, ts time.Time) models.ResScore {
	airRisk := CalculateAirRisk(pm25)
	waterDeficit := zone.WaterDeficit
	densityFactor := zone.DensityFactor

	penalty := 0.0
	if zone.IndustrialZone {
		penalty = IndustrialPenalty
	}

	totalRisk := weights.AirQuality*airRisk +
		weights.WaterDeficit*waterDeficit +
		weights.PopulationDensity*densityFactor +
		penalty

	return models.ResScore{
		ZoneID:            zone.ID,
		ZoneName:          zone.Name,
		Score:             clamp(100-totalRisk, 0, 100),
		AirRisk:           airRisk,
		WaterDeficit:      waterDeficit,
		DensityFactor:     densityFactor,
		IndustrialPenalty: penalty,
		PM25:              pm25,
		Timestamp:         ts,
	}
}

// CalculateAllResScores scores every zone; nil weights mean DefaultWeights.
// A zone without a reading is scored as pm25 = 0.
func CalculateAllResScores(zones []models.Zone, pm25ByZone map[string]float64, weights *Weights) []models.ResScore {
	w := DefaultWeights()
	if weights != nil {
		w = *weights
	}

	now := time.Now().UTC()
	scores := make([]models.ResScore, 0, len(zones))
	for _, zone := range zones {
		scores = append(scores, CalculateResScoreAt(zone, pm25ByZone[zone.ID], w, now))
	}
	return scores
}

// Band coarse label for a RES score
func Band(score float64) string {
	switch {
	case score < 40:
		return "critical"
	case score < 60:
		return "high"
	case score < 80:
		return "medium"
	default:
		return "good"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
