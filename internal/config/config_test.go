package config

import (
	"testing"
	"time"

	"climate-sentinel/internal/evaluator"
	"climate-sentinel/internal/scoring"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "Delhi", cfg.OpenAQ.City)
	assert.Equal(t, 10*time.Second, cfg.OpenAQ.Timeout)
	assert.Equal(t, 85.0, cfg.OpenAQ.DefaultBaseline)
	assert.Equal(t, "*/5 * * * *", cfg.Recompute.Cron)
	assert.Equal(t, 60*time.Second, cfg.Recompute.FreshnessWindow)
	assert.Equal(t, scoring.DefaultWeights(), cfg.Weights)
	assert.Equal(t, evaluator.DefaultThresholds(), cfg.Thresholds)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CACHE_FRESHNESS_SEC", "30")
	t.Setenv("RES_WEIGHT_AIR", "0.5")
	t.Setenv("ALERT_PM25_MEDIUM", "35")
	t.Setenv("DEFAULT_BASELINE_PM25", "not-a-number")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.Recompute.FreshnessWindow)
	assert.Equal(t, 0.5, cfg.Weights.AirQuality)
	assert.Equal(t, 0.3, cfg.Weights.WaterDeficit)
	assert.Equal(t, 35.0, cfg.Thresholds.PM25Medium)
	assert.Equal(t, 85.0, cfg.OpenAQ.DefaultBaseline)
}

func TestLoad_MQTTQoS(t *testing.T) {
	assert.Equal(t, byte(1), Load().MQTT.QoS)

	t.Setenv("MQTT_QOS", "2")
	assert.Equal(t, byte(2), Load().MQTT.QoS)

	t.Setenv("MQTT_QOS", "0")
	assert.Equal(t, byte(0), Load().MQTT.QoS)

	for _, bad := range []string{"300", "3", "-1", "high"} {
		t.Setenv("MQTT_QOS", bad)
		assert.Equal(t, byte(1), Load().MQTT.QoS, "MQTT_QOS=%s", bad)
	}
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", c.GetDSN())
}
