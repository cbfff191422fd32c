// Package airquality produces one PM2.5 reading per zone for a recompute cycle.
//
// A single regional baseline is fetched from the provider and every zone reading is
// synthesized from it. The harvester never fails: any provider problem falls back to
// the default baseline.
package airquality

import (
	"context"
	"time"

	"climate-sentinel/internal/models"

	"go.uber.org/zap"
)

const (
	// DefaultBaselinePM25 baseline used when the provider is unavailable (μg/m³)
	DefaultBaselinePM25 = 85.0
	// DefaultFetchTimeout bound on one provider call
	DefaultFetchTimeout = 10 * time.Second
)

// BaselineFetcher returns the current regional average PM2.5
type BaselineFetcher interface {
	FetchBaseline(ctx context.Context) (float64, error)
}

// Harvester zone PM2.5 source
type Harvester struct {
	fetcher    BaselineFetcher
	rnd        Rand
	fallback   float64
	timeout    time.Duration
	onFallback func(err error)
	logger     *zap.Logger
}

// Option configures a Harvester
type Option func(*Harvester)

// WithRand injects the randomness source
func WithRand(r Rand) Option {
	return func(h *Harvester) { h.rnd = r }
}

// WithFallbackBaseline overrides the default baseline
func WithFallbackBaseline(v float64) Option {
	return func(h *Harvester) {
		if v > 0 {
			h.fallback = v
		}
	}
}

// WithTimeout overrides the provider timeout
func WithTimeout(d time.Duration) Option {
	return func(h *Harvester) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithFallbackHook is called every time the default baseline is used
func WithFallbackHook(fn func(err error)) Option {
	return func(h *Harvester) { h.onFallback = fn }
}

// NewHarvester creates a harvester; fetcher may be nil to run fully synthetic
func NewHarvester(fetcher BaselineFetcher, logger *zap.Logger, opts ...Option) *Harvester {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Harvester{
		fetcher:  fetcher,
		rnd:      DefaultRand(),
		fallback: DefaultBaselinePM25,
		timeout:  DefaultFetchTimeout,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetZonePm25Data returns one reading per zone keyed by zone ID
func (h *Harvester) GetZonePm25Data(ctx context.Context, zones []models.Zone) map[string]float64 {
	baseline := h.baseline(ctx)

	readings := make(map[string]float64, len(zones))
	for _, z := range zones {
		readings[z.ID] = GenerateSyntheticPm25(baseline, z.IndustrialZone, z.DensityFactor, h.rnd)
	}
	return readings
}

func (h *Harvester) baseline(ctx context.Context) float64 {
	if h.fetcher == nil {
		return h.fallback
	}

	fetchCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	avg, err := h.fetcher.FetchBaseline(fetchCtx)
	if err == nil && avg <= 0 {
		err = ErrNoMeasurements
	}
	if err != nil {
		h.logger.Warn("Air quality provider unavailable, using default baseline",
			zap.Error(err),
			zap.Float64("baseline_pm25", h.fallback),
		)
		if h.onFallback != nil {
			h.onFallback(err)
		}
		return h.fallback
	}
	return avg
}
