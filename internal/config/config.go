package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"climate-sentinel/internal/evaluator"
	"climate-sentinel/internal/scoring"
)

// DatabaseConfig PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN lib/pq connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig score mirror and alert stream
type RedisConfig struct {
	Enabled     bool
	Addr        string
	Password    string
	DB          int
	ScoresKey   string
	AlertStream string
}

// MQTTConfig alert notifications over MQTT (disabled by default)
type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// OpenAQConfig regional baseline provider
type OpenAQConfig struct {
	BaseURL         string
	City            string
	Timeout         time.Duration
	DefaultBaseline float64
	BreakerFailures int
	BreakerOpen     time.Duration
}

// Config climate-sentinel service configuration
type Config struct {
	HTTP struct {
		Addr string
	}
	// StoreDriver "memory" or "postgres"
	StoreDriver string
	Database    DatabaseConfig
	Redis       RedisConfig
	MQTT        MQTTConfig
	OpenAQ      OpenAQConfig
	Recompute   struct {
		Cron            string
		FreshnessWindow time.Duration
	}
	Weights    scoring.Weights
	Thresholds evaluator.Thresholds
	Log        struct {
		Level  string
		Format string
	}
}

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Load reads the configuration from the environment
func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", StoreMemory))
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "climate_sentinel")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)
	cfg.Redis.ScoresKey = getEnv("REDIS_SCORES_KEY", "climate:res:scores")
	cfg.Redis.AlertStream = getEnv("REDIS_ALERT_STREAM", "climate:alerts")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "climate-sentinel")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", "climate/alerts")
	cfg.MQTT.QoS = parseQoS(os.Getenv("MQTT_QOS"), 1)

	cfg.OpenAQ.BaseURL = getEnv("OPENAQ_BASE_URL", "https://api.openaq.org/v2")
	cfg.OpenAQ.City = getEnv("OPENAQ_CITY", "Delhi")
	cfg.OpenAQ.Timeout = time.Duration(parseInt(getEnv("OPENAQ_TIMEOUT_SEC", "10"), 10)) * time.Second
	cfg.OpenAQ.DefaultBaseline = parseFloat(getEnv("DEFAULT_BASELINE_PM25", "85"), 85)
	cfg.OpenAQ.BreakerFailures = parseInt(getEnv("OPENAQ_BREAKER_FAILURES", "3"), 3)
	cfg.OpenAQ.BreakerOpen = time.Duration(parseInt(getEnv("OPENAQ_BREAKER_OPEN_SEC", "120"), 120)) * time.Second

	cfg.Recompute.Cron = getEnv("RECOMPUTE_CRON", "*/5 * * * *")
	cfg.Recompute.FreshnessWindow = time.Duration(parseInt(getEnv("CACHE_FRESHNESS_SEC", "60"), 60)) * time.Second

	w := scoring.DefaultWeights()
	cfg.Weights = scoring.Weights{
		AirQuality:        parseFloat(os.Getenv("RES_WEIGHT_AIR"), w.AirQuality),
		WaterDeficit:      parseFloat(os.Getenv("RES_WEIGHT_WATER"), w.WaterDeficit),
		PopulationDensity: parseFloat(os.Getenv("RES_WEIGHT_DENSITY"), w.PopulationDensity),
		IndustrialZone:    parseFloat(os.Getenv("RES_WEIGHT_INDUSTRIAL"), w.IndustrialZone),
	}

	th := evaluator.DefaultThresholds()
	cfg.Thresholds = evaluator.Thresholds{
		ResCritical:  parseFloat(os.Getenv("ALERT_RES_CRITICAL"), th.ResCritical),
		ResHigh:      parseFloat(os.Getenv("ALERT_RES_HIGH"), th.ResHigh),
		PM25Critical: parseFloat(os.Getenv("ALERT_PM25_CRITICAL"), th.PM25Critical),
		PM25High:     parseFloat(os.Getenv("ALERT_PM25_HIGH"), th.PM25High),
		PM25Medium:   parseFloat(os.Getenv("ALERT_PM25_MEDIUM"), th.PM25Medium),
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// parseQoS accepts the MQTT levels 0, 1 and 2; anything else yields def
func parseQoS(s string, def byte) byte {
	q := parseInt(strings.TrimSpace(s), -1)
	if q < 0 || q > 2 {
		return def
	}
	return byte(q)
}

func parseFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}
