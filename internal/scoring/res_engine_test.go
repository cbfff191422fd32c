package scoring

import (
	"math"
	"testing"
	"time"

	"climate-sentinel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateAirRisk_GoodBandIsLinear(t *testing.T) {
	for pm := 0.0; pm <= 50; pm += 2.5 {
		assert.InDelta(t, pm/50*25, CalculateAirRisk(pm), 1e-12, "pm25=%v", pm)
	}
}

func TestCalculateAirRisk_ContinuousAtBandEdges(t *testing.T) {
	const eps = 1e-9
	for _, edge := range []float64{50, 100, 150} {
		below := CalculateAirRisk(edge - eps)
		at := CalculateAirRisk(edge)
		above := CalculateAirRisk(edge + eps)
		assert.Less(t, math.Abs(at-below), 1e-6, "edge %v", edge)
		assert.Less(t, math.Abs(above-at), 1e-6, "edge %v", edge)
	}
}

func TestCalculateAirRisk_KnownValues(t *testing.T) {
	assert.Equal(t, 0.0, CalculateAirRisk(0))
	assert.Equal(t, 25.0, CalculateAirRisk(50))
	assert.Equal(t, 50.0, CalculateAirRisk(100))
	assert.Equal(t, 75.0, CalculateAirRisk(150))
	assert.Equal(t, 100.0, CalculateAirRisk(300))
	assert.Equal(t, 100.0, CalculateAirRisk(1000))
	assert.Equal(t, 0.0, CalculateAirRisk(-20))
}

func TestCalculateResScore_ScoreAlwaysInRange(t *testing.T) {
	zones := []models.Zone{
		{ID: "a"},
		{ID: "b", DensityFactor: 100, WaterDeficit: 100, IndustrialZone: true},
		{ID: "c", DensityFactor: 55, WaterDeficit: 35},
	}
	for _, z := range zones {
		for pm := 0.0; pm <= 600; pm += 7.5 {
			s := CalculateResScore(z, pm, DefaultWeights())
			assert.GreaterOrEqual(t, s.Score, 0.0)
			assert.LessOrEqual(t, s.Score, 100.0)
		}
	}
}

func TestCalculateResScore_PristineZoneScores100(t *testing.T) {
	s := CalculateResScore(models.Zone{ID: "z"}, 0, DefaultWeights())
	assert.Equal(t, 100.0, s.Score)
	assert.Equal(t, 0.0, s.IndustrialPenalty)
}

func TestCalculateResScore_WorstZoneScoresZero(t *testing.T) {
	zone := models.Zone{ID: "z", Name: "Worst", DensityFactor: 100, WaterDeficit: 100, IndustrialZone: true}
	s := CalculateResScore(zone, 300, DefaultWeights())

	// 0.4*100 + 0.3*100 + 0.2*100 + 10 = 100
	assert.InDelta(t, 0.0, s.Score, 1e-9)
	assert.Equal(t, 100.0, s.AirRisk)
	assert.Equal(t, IndustrialPenalty, s.IndustrialPenalty)
	assert.Equal(t, "Worst", s.ZoneName)
}

func TestCalculateResScore_IndustrialPenaltyIsFlat(t *testing.T) {
	w := DefaultWeights()
	w.IndustrialZone = 0.9

	plain := CalculateResScore(models.Zone{ID: "p", DensityFactor: 50}, 80, w)
	industrial := CalculateResScore(models.Zone{ID: "i", DensityFactor: 50, IndustrialZone: true}, 80, w)

	assert.InDelta(t, 10.0, plain.Score-industrial.Score, 1e-9)
}

func TestCalculateResScoreAt_PassThroughAndTimestamp(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	zone := models.Zone{ID: "central", Name: "Central Delhi", DensityFactor: 85, WaterDeficit: 45}

	s := CalculateResScoreAt(zone, 85, DefaultWeights(), ts)

	assert.Equal(t, ts, s.Timestamp)
	assert.Equal(t, 85.0, s.DensityFactor)
	assert.Equal(t, 45.0, s.WaterDeficit)
	assert.Equal(t, 85.0, s.PM25)
	// airRisk(85) = 42.5 ; total = 17 + 13.5 + 17 = 47.5
	assert.InDelta(t, 42.5, s.AirRisk, 1e-9)
	assert.InDelta(t, 52.5, s.Score, 1e-9)
}

func TestCalculateAllResScores_MissingReadingScoresAsZero(t *testing.T) {
	zones := []models.Zone{
		{ID: "with", Name: "With"},
		{ID: "without", Name: "Without"},
	}
	scores := CalculateAllResScores(zones, map[string]float64{"with": 120}, nil)

	require.Len(t, scores, 2)
	assert.Equal(t, 120.0, scores[0].PM25)
	assert.Equal(t, 0.0, scores[1].PM25)
	assert.Equal(t, 0.0, scores[1].AirRisk)
	assert.Equal(t, 100.0, scores[1].Score)
	assert.Equal(t, scores[0].Timestamp, scores[1].Timestamp)
}

func TestCalculateAllResScores_CustomWeights(t *testing.T) {
	w := Weights{AirQuality: 1}
	scores := CalculateAllResScores([]models.Zone{{ID: "z", DensityFactor: 100}}, map[string]float64{"z": 100}, &w)
	assert.InDelta(t, 50.0, scores[0].Score, 1e-9)
}

func TestBand(t *testing.T) {
	assert.Equal(t, "critical", Band(39.9))
	assert.Equal(t, "high", Band(40))
	assert.Equal(t, "medium", Band(60))
	assert.Equal(t, "good", Band(80))
}
