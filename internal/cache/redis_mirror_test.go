package cache

import (
	"context"
	"testing"
	"time"

	"climate-sentinel/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestMirror(t *testing.T) (*miniredis.Miniredis, *RedisMirror) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisMirror(client, "climate:res:scores", time.Minute, zap.NewNop())
}

func TestRedisMirror_PublishAndLoad(t *testing.T) {
	mr, mirror := setupTestMirror(t)
	ctx := context.Background()

	ts := time.Date(2024, 11, 3, 8, 0, 0, 0, time.UTC)
	scores := []models.ResScore{
		{ZoneID: "z1", ZoneName: "Central Delhi", Score: 52.5, PM25: 85, Timestamp: ts},
		{ZoneID: "z2", ZoneName: "North Delhi", Score: 31.2, PM25: 160, Timestamp: ts},
	}

	require.NoError(t, mirror.Publish(ctx, scores))

	assert.True(t, mr.Exists("climate:res:scores"))
	assert.True(t, mr.Exists("climate:res:scores:z2"))
	assert.Equal(t, time.Minute, mr.TTL("climate:res:scores"))

	loaded, err := mirror.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, scores, loaded)

	one, err := mirror.LoadZone(ctx, "z2")
	require.NoError(t, err)
	assert.Equal(t, "North Delhi", one.ZoneName)
}

func TestRedisMirror_Miss(t *testing.T) {
	_, mirror := setupTestMirror(t)

	_, err := mirror.Load(context.Background())
	assert.ErrorIs(t, err, ErrMiss)

	_, err = mirror.LoadZone(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisMirror_Expires(t *testing.T) {
	mr, mirror := setupTestMirror(t)
	ctx := context.Background()

	require.NoError(t, mirror.Publish(ctx, []models.ResScore{{ZoneID: "z1"}}))
	mr.FastForward(2 * time.Minute)

	_, err := mirror.Load(ctx)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisMirror_ServerDown(t *testing.T) {
	mr, mirror := setupTestMirror(t)
	mr.Close()

	err := mirror.Publish(context.Background(), []models.ResScore{{ZoneID: "z1"}})
	assert.Error(t, err)
}
