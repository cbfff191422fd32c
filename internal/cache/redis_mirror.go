package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"climate-sentinel/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrMiss nothing mirrored under the key
var ErrMiss = errors.New("cache miss")

// RedisMirror publishes the latest scores to Redis for other processes.
//
//	{key}           JSON array of all scores
//	{key}:{zoneId}  JSON of one zone score
//
// Both expire after ttl so a stalled service does not serve stale data forever.
type RedisMirror struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisMirror creates a mirror writing under key
func NewRedisMirror(client *redis.Client, key string, ttl time.Duration, logger *zap.Logger) *RedisMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisMirror{client: client, key: key, ttl: ttl, logger: logger}
}

func (m *RedisMirror) zoneKey(zoneID string) string {
	return fmt.Sprintf("%s:%s", m.key, zoneID)
}

// Publish writes all scores in one transaction
func (m *RedisMirror) Publish(ctx context.Context, scores []models.ResScore) error {
	all, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	perZone := make(map[string][]byte, len(scores))
	for _, s := range scores {
		b, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal score of zone %s: %w", s.ZoneID, err)
		}
		perZone[s.ZoneID] = b
	}

	_, err = m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, m.key, all, m.ttl)
		for zoneID, b := range perZone {
			pipe.Set(ctx, m.zoneKey(zoneID), b, m.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mirror scores: %w", err)
	}

	m.logger.Debug("Mirrored scores to redis",
		zap.String("key", m.key),
		zap.Int("zone_count", len(scores)),
	)
	return nil
}

// Load reads back all mirrored scores
func (m *RedisMirror) Load(ctx context.Context) ([]models.ResScore, error) {
	val, err := m.client.Get(ctx, m.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get mirrored scores: %w", err)
	}
	var scores []models.ResScore
	if err := json.Unmarshal([]byte(val), &scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mirrored scores: %w", err)
	}
	return scores, nil
}

// LoadZone reads back one mirrored zone score
func (m *RedisMirror) LoadZone(ctx context.Context, zoneID string) (*models.ResScore, error) {
	val, err := m.client.Get(ctx, m.zoneKey(zoneID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get mirrored score: %w", err)
	}
	var score models.ResScore
	if err := json.Unmarshal([]byte(val), &score); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mirrored score: %w", err)
	}
	return &score, nil
}
