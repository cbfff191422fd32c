// Package cache holds the latest RES scores in process and mirrors them to Redis.
package cache

import (
	"sync"
	"time"

	"climate-sentinel/internal/models"
)

// DefaultFreshnessWindow age after which cached scores are recomputed on read
const DefaultFreshnessWindow = 60 * time.Second

// ScoreCache latest scores of a successful recompute cycle.
// Written only by the orchestrator; readers get copies.
type ScoreCache struct {
	mu         sync.RWMutex
	scores     []models.ResScore
	lastUpdate time.Time
}

// NewScoreCache creates an empty cache
func NewScoreCache() *ScoreCache {
	return &ScoreCache{}
}

// Update replaces the cached scores
func (c *ScoreCache) Update(scores []models.ResScore, at time.Time) {
	cp := append([]models.ResScore(nil), scores...)
	c.mu.Lock()
	c.scores = cp
	c.lastUpdate = at
	c.mu.Unlock()
}

// Scores copy of the cached scores (nil before the first successful cycle)
func (c *ScoreCache) Scores() []models.ResScore {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.scores == nil {
		return nil
	}
	return append([]models.ResScore(nil), c.scores...)
}

// LastUpdate time of the last Update, zero if never
func (c *ScoreCache) LastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdate
}

// Len number of cached scores
func (c *ScoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scores)
}

// Find cached score of one zone
func (c *ScoreCache) Find(zoneID string) (models.ResScore, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.scores {
		if s.ZoneID == zoneID {
			return s, true
		}
	}
	return models.ResScore{}, false
}

// Snapshot scores and update time read under one lock
func (c *ScoreCache) Snapshot() ([]models.ResScore, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.ResScore(nil), c.scores...), c.lastUpdate
}

// IsFresh reports whether lastUpdate lies within window of now.
// A zero lastUpdate is never fresh.
func IsFresh(now, lastUpdate time.Time, window time.Duration) bool {
	if lastUpdate.IsZero() {
		return false
	}
	return now.Sub(lastUpdate) < window
}
