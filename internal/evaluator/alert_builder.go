package evaluator

import (
	"time"

	"climate-sentinel/internal/models"

	"github.com/google/uuid"
)

// BuildAlert creates an active alert snapshotting the score that triggered it
func BuildAlert(score models.ResScore, d Decision) models.Alert {
	return models.Alert{
		ID:        uuid.New().String(),
		ZoneID:    score.ZoneID,
		ZoneName:  score.ZoneName,
		ResScore:  score.Score,
		PM25:      score.PM25,
		Severity:  d.Severity,
		Message:   d.Message,
		Timestamp: time.Now().UTC(),
		IsActive:  true,
	}
}
