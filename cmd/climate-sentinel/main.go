package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"climate-sentinel/internal/airquality"
	"climate-sentinel/internal/cache"
	"climate-sentinel/internal/config"
	httpapi "climate-sentinel/internal/http"
	"climate-sentinel/internal/logger"
	"climate-sentinel/internal/metrics"
	"climate-sentinel/internal/notifier"
	"climate-sentinel/internal/repository"
	"climate-sentinel/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	alertStreamMaxLen = 10000
	scoreMirrorTTL    = 15 * time.Minute
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "climate-sentinel")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	m := metrics.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, db, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	// Optional Redis: score mirror + alert stream
	var redisClient *redis.Client
	var notifiers notifier.Multi
	opts := []service.Option{service.WithMetrics(m)}
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, mirror and stream writes will fail until it recovers",
				zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		opts = append(opts, service.WithMirror(cache.NewRedisMirror(redisClient, cfg.Redis.ScoresKey, scoreMirrorTTL, log)))
		notifiers = append(notifiers, notifier.NewStreamNotifier(redisClient, cfg.Redis.AlertStream, alertStreamMaxLen, log))
	}

	// Optional MQTT alert fan-out
	var mqttClient *notifier.MQTTClient
	if cfg.MQTT.Enabled {
		mqttClient, err = notifier.NewMQTTClient(&cfg.MQTT)
		if err != nil {
			log.Warn("MQTT connection failed, alerts will not be published over MQTT",
				zap.String("broker", cfg.MQTT.Broker), zap.Error(err))
		} else {
			notifiers = append(notifiers, notifier.NewMQTTNotifier(mqttClient, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS, log))
		}
	}
	if len(notifiers) > 0 {
		opts = append(opts, service.WithNotifier(notifiers))
	}

	openaq := airquality.NewOpenAQClient(cfg.OpenAQ.BaseURL, cfg.OpenAQ.City, airquality.BreakerSettings{
		MaxFailures: cfg.OpenAQ.BreakerFailures,
		OpenTimeout: cfg.OpenAQ.BreakerOpen,
		OnStateChange: func(to gobreaker.State) {
			m.BreakerStateChanged("openaq", to)
		},
	}, log)
	harvester := airquality.NewHarvester(openaq, log,
		airquality.WithFallbackBaseline(cfg.OpenAQ.DefaultBaseline),
		airquality.WithTimeout(cfg.OpenAQ.Timeout),
		airquality.WithFallbackHook(func(error) { m.BaselineFallback() }),
	)

	orch := service.NewOrchestrator(store, harvester, cache.NewScoreCache(), service.OrchestratorConfig{
		Weights:         cfg.Weights,
		Thresholds:      cfg.Thresholds,
		FreshnessWindow: cfg.Recompute.FreshnessWindow,
	}, log, opts...)

	scheduler, err := service.NewScheduler(cfg.Recompute.Cron, orch, log)
	if err != nil {
		log.Fatal("Invalid recompute schedule", zap.Error(err))
	}
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start recompute scheduler", zap.Error(err))
	}

	router := httpapi.NewRouter(m, log)
	router.RegisterZoneRoutes(httpapi.NewZonesHandler(store, orch, log))
	router.RegisterScoreRoutes(httpapi.NewScoresHandler(orch, log))
	router.RegisterAirQualityRoutes(httpapi.NewAirQualityHandler(store, log))
	router.RegisterAlertRoutes(httpapi.NewAlertsHandler(store, orch, log))
	router.RegisterReportRoutes(httpapi.NewReportsHandler(store, store, log))
	router.RegisterOpsRoutes(httpapi.NewHealthHandler(orch))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	scheduler.Stop()

	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}

// openStore selects the persistence backend; db is nil for the memory store
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Store, *sql.DB, error) {
	if cfg.StoreDriver != config.StorePostgres {
		log.Info("Using in-memory store with seeded Delhi zones")
		return repository.NewSeededMemoryStore(), nil, nil
	}

	db, err := repository.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if _, err := repository.SeedZones(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info("Using PostgreSQL store",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)
	return repository.NewPostgresStore(db, log), db, nil
}
