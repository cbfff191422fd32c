package airquality

import (
	"context"
	"errors"
	"testing"

	"climate-sentinel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// seqRand replays fixed values, repeating the last one
type seqRand struct {
	values []float64
	i      int
}

func (s *seqRand) Float64() float64 {
	v := s.values[s.i]
	if s.i < len(s.values)-1 {
		s.i++
	}
	return v
}

type stubFetcher struct {
	avg   float64
	err   error
	calls int
}

func (f *stubFetcher) FetchBaseline(ctx context.Context) (float64, error) {
	f.calls++
	return f.avg, f.err
}

func TestGenerateSyntheticPm25_Multipliers(t *testing.T) {
	// midpoint noise (0.5 -> x1.0), density 0 -> x1.0
	assert.InDelta(t, 85.0, GenerateSyntheticPm25(85, false, 0, &seqRand{values: []float64{0.5}}), 1e-9)

	// industrial low end x1.3, density 100 -> x1.25, noise low end x0.85
	got := GenerateSyntheticPm25(100, true, 100, &seqRand{values: []float64{0, 0}})
	assert.InDelta(t, 100*1.3*1.25*0.85, got, 1e-9)
}

func TestGenerateSyntheticPm25_Bounds(t *testing.T) {
	extremes := []float64{0, 0.999999}
	for _, a := range extremes {
		for _, b := range extremes {
			for _, density := range []float64{0, 50, 100, 1000} {
				for _, industrial := range []bool{false, true} {
					for _, base := range []float64{0, 1, 85, 500} {
						v := GenerateSyntheticPm25(base, industrial, density, &seqRand{values: []float64{a, b}})
						assert.GreaterOrEqual(t, v, MinPM25)
						assert.LessOrEqual(t, v, MaxPM25)
					}
				}
			}
		}
	}
}

func TestGenerateSyntheticPm25_DefaultRand(t *testing.T) {
	for i := 0; i < 200; i++ {
		v := GenerateSyntheticPm25(85, true, 82, nil)
		require.GreaterOrEqual(t, v, MinPM25)
		require.LessOrEqual(t, v, MaxPM25)
	}
}

var testZones = []models.Zone{
	{ID: "central", Name: "Central Delhi", DensityFactor: 0},
	{ID: "east", Name: "East Delhi", DensityFactor: 0},
}

func TestHarvester_UsesProviderBaseline(t *testing.T) {
	fetcher := &stubFetcher{avg: 120}
	h := NewHarvester(fetcher, zap.NewNop(), WithRand(&seqRand{values: []float64{0.5}}))

	got := h.GetZonePm25Data(context.Background(), testZones)

	require.Len(t, got, 2)
	assert.InDelta(t, 120.0, got["central"], 1e-9)
	assert.InDelta(t, 120.0, got["east"], 1e-9)
	assert.Equal(t, 1, fetcher.calls)
}

func TestHarvester_FallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		fetcher BaselineFetcher
	}{
		{"error", &stubFetcher{err: errors.New("dial tcp: connection refused")}},
		{"zero average", &stubFetcher{avg: 0}},
		{"negative average", &stubFetcher{avg: -4}},
		{"no provider", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fallbacks int
			h := NewHarvester(tt.fetcher, zap.NewNop(),
				WithRand(&seqRand{values: []float64{0.5}}),
				WithFallbackHook(func(error) { fallbacks++ }),
			)

			got := h.GetZonePm25Data(context.Background(), testZones)

			assert.InDelta(t, DefaultBaselinePM25, got["central"], 1e-9)
			if tt.fetcher != nil {
				assert.Equal(t, 1, fallbacks)
			}
		})
	}
}

func TestHarvester_CustomFallbackBaseline(t *testing.T) {
	h := NewHarvester(&stubFetcher{err: errors.New("down")}, nil,
		WithRand(&seqRand{values: []float64{0.5}}),
		WithFallbackBaseline(60),
	)
	got := h.GetZonePm25Data(context.Background(), testZones[:1])
	assert.InDelta(t, 60.0, got["central"], 1e-9)
}

func TestHarvester_EmptyZones(t *testing.T) {
	h := NewHarvester(&stubFetcher{avg: 90}, zap.NewNop())
	assert.Empty(t, h.GetZonePm25Data(context.Background(), nil))
}
