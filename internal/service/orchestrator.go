// Package service runs the recompute cycle and hosts the HTTP server.
package service

import (
	"context"
	"fmt"
	"time"

	"climate-sentinel/internal/cache"
	"climate-sentinel/internal/evaluator"
	"climate-sentinel/internal/metrics"
	"climate-sentinel/internal/models"
	"climate-sentinel/internal/notifier"
	"climate-sentinel/internal/repository"
	"climate-sentinel/internal/scoring"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ZonePm25Source one reading per zone; implementations never fail
type ZonePm25Source interface {
	GetZonePm25Data(ctx context.Context, zones []models.Zone) map[string]float64
}

// ScoreMirror publishes scores outside the process
type ScoreMirror interface {
	Publish(ctx context.Context, scores []models.ResScore) error
}

// OrchestratorConfig scoring and caching parameters
type OrchestratorConfig struct {
	Weights         scoring.Weights
	Thresholds      evaluator.Thresholds
	FreshnessWindow time.Duration
}

// DefaultOrchestratorConfig default weights, thresholds and a 60s freshness window
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Weights:         scoring.DefaultWeights(),
		Thresholds:      evaluator.DefaultThresholds(),
		FreshnessWindow: cache.DefaultFreshnessWindow,
	}
}

// Orchestrator runs the recompute cycle: read zones, harvest PM2.5, score, log readings,
// reconcile alerts, refresh the cache. At most one cycle runs at a time; concurrent
// triggers share the in-flight cycle.
type Orchestrator struct {
	store    repository.Store
	source   ZonePm25Source
	cache    *cache.ScoreCache
	mirror   ScoreMirror
	notifier notifier.AlertNotifier
	metrics  *metrics.Metrics
	cfg      OrchestratorConfig
	logger   *zap.Logger
	now      func() time.Time

	group singleflight.Group
}

// Option configures optional collaborators
type Option func(*Orchestrator)

// WithMirror publishes every successful cycle's scores
func WithMirror(m ScoreMirror) Option {
	return func(o *Orchestrator) { o.mirror = m }
}

// WithNotifier receives raised and cleared alerts
func WithNotifier(n notifier.AlertNotifier) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithMetrics records cycle metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator creates an orchestrator owning scoreCache
func NewOrchestrator(
	store repository.Store,
	source ZonePm25Source,
	scoreCache *cache.ScoreCache,
	cfg OrchestratorConfig,
	logger *zap.Logger,
	opts ...Option,
) *Orchestrator {
	if scoreCache == nil {
		scoreCache = cache.NewScoreCache()
	}
	if cfg.FreshnessWindow <= 0 {
		cfg.FreshnessWindow = cache.DefaultFreshnessWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		store:    store,
		source:   source,
		cache:    scoreCache,
		notifier: notifier.Nop{},
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RecomputeAll runs one cycle, or joins the one in flight.
// A failed cycle leaves the cache untouched.
func (o *Orchestrator) RecomputeAll(ctx context.Context) error {
	// the shared cycle must not die with the request that happened to start it
	ctx = context.WithoutCancel(ctx)
	_, err, shared := o.group.Do("recompute", func() (interface{}, error) {
		start := time.Now()
		err := o.recompute(ctx)
		o.metrics.RecomputeFinished(time.Since(start), err)
		if err != nil {
			o.logger.Error("Recompute cycle failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		}
		return nil, err
	})
	if shared {
		o.logger.Debug("Joined in-flight recompute cycle")
	}
	return err
}

type cycleStats struct {
	zones       int
	candidates  int
	created     int
	deactivated int
}

func (o *Orchestrator) recompute(ctx context.Context) error {
	var stats cycleStats

	zones, err := o.store.ListZones(ctx)
	if err != nil {
		return fmt.Errorf("list zones: %w", err)
	}
	stats.zones = len(zones)

	readings := o.source.GetZonePm25Data(ctx, zones)
	scores := scoring.CalculateAllResScores(zones, readings, &o.cfg.Weights)

	for _, s := range scores {
		_, err := o.store.CreateAirQualityLog(ctx, models.AirQualityLog{
			ZoneID:    s.ZoneID,
			PM25:      s.PM25,
			Timestamp: s.Timestamp,
		})
		if err != nil {
			return fmt.Errorf("log air quality for zone %s: %w", s.ZoneID, err)
		}
	}

	candidates := evaluator.GenerateAlerts(scores, &o.cfg.Thresholds)
	stats.candidates = len(candidates)

	existing, err := o.store.ListAlerts(ctx)
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}
	updated := evaluator.UpdateAlertStatus(existing, scores, &o.cfg.Thresholds)

	inactive := false
	for _, a := range evaluator.ChangedAlerts(existing, updated) {
		stored, err := o.store.UpdateAlert(ctx, a.ID, models.AlertPatch{IsActive: &inactive})
		if err != nil {
			return fmt.Errorf("deactivate alert %s: %w", a.ID, err)
		}
		stats.deactivated++
		o.metrics.AlertDeactivated()
		o.notify(ctx, notifier.EventCleared, *stored)
	}

	// candidates are deduplicated once, against the post-deactivation history
	merged := evaluator.MergeAlerts(updated, candidates)
	for _, a := range merged[len(updated):] {
		stored, err := o.store.CreateAlert(ctx, a)
		if err != nil {
			return fmt.Errorf("create alert for zone %s: %w", a.ZoneID, err)
		}
		stats.created++
		o.metrics.AlertCreated(string(stored.Severity))
		o.notify(ctx, notifier.EventRaised, *stored)
	}

	o.cache.Update(scores, o.now())
	o.publish(ctx, scores)

	o.logger.Info("Updated RES scores and alerts",
		zap.Int("zones", stats.zones),
		zap.Int("alert_candidates", stats.candidates),
		zap.Int("alerts_created", stats.created),
		zap.Int("alerts_deactivated", stats.deactivated),
	)
	return nil
}

func (o *Orchestrator) notify(ctx context.Context, t notifier.EventType, alert models.Alert) {
	var err error
	switch t {
	case notifier.EventRaised:
		err = o.notifier.AlertRaised(ctx, alert)
	case notifier.EventCleared:
		err = o.notifier.AlertCleared(ctx, alert)
	}
	if err != nil {
		o.logger.Warn("Failed to deliver alert notification",
			zap.String("event", string(t)),
			zap.String("alert_id", alert.ID),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) publish(ctx context.Context, scores []models.ResScore) {
	for _, s := range scores {
		o.metrics.ZoneScore(s.ZoneID, s.ZoneName, s.Score)
	}
	if o.mirror == nil {
		return
	}
	if err := o.mirror.Publish(ctx, scores); err != nil {
		o.logger.Warn("Failed to mirror scores", zap.Error(err))
	}
}

// CachedScores scores of the last successful cycle
func (o *Orchestrator) CachedScores() []models.ResScore {
	return o.cache.Scores()
}

// LastUpdate completion time of the last successful cycle
func (o *Orchestrator) LastUpdate() time.Time {
	return o.cache.LastUpdate()
}

// IsFresh whether the cache is younger than the freshness window
func (o *Orchestrator) IsFresh() bool {
	return cache.IsFresh(o.now(), o.cache.LastUpdate(), o.cfg.FreshnessWindow)
}

// Scores serves fresh cached scores, recomputing synchronously when the cache is stale
// or empty. If that recompute fails, stale scores are still served when present.
func (o *Orchestrator) Scores(ctx context.Context) ([]models.ResScore, error) {
	scores, last := o.cache.Snapshot()
	if len(scores) > 0 && cache.IsFresh(o.now(), last, o.cfg.FreshnessWindow) {
		o.metrics.CacheHit()
		return scores, nil
	}
	o.metrics.CacheMiss()

	if err := o.RecomputeAll(ctx); err != nil {
		if stale := o.cache.Scores(); len(stale) > 0 {
			o.logger.Warn("Serving stale scores after failed recompute", zap.Error(err))
			return stale, nil
		}
		return nil, err
	}
	return o.cache.Scores(), nil
}

// Score cached score of one zone; never triggers a recompute
func (o *Orchestrator) Score(zoneID string) (models.ResScore, bool) {
	return o.cache.Find(zoneID)
}
