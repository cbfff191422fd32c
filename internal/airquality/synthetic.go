package airquality

import "math/rand"

const (
	// MinPM25 lower bound of generated readings (μg/m³)
	MinPM25 = 10.0
	// MaxPM25 upper bound of generated readings (μg/m³)
	MaxPM25 = 300.0
)

// Rand source of uniform values in [0,1)
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand the process-wide math/rand source, safe for concurrent use
func DefaultRand() Rand {
	return globalRand{}
}

// GenerateSyntheticPm25 derives a plausible zone reading from the regional baseline.
//
//	industrial: x U(1.3, 1.6)
//	density:    x (1 + density/100 * 0.25)
//	noise:      x U(0.85, 1.15)
//
// The result is clamped to [MinPM25, MaxPM25].
func GenerateSyntheticPm25(baseline float64, industrial bool, density float64, rnd Rand) float64 {
	if rnd == nil {
		rnd = DefaultRand()
	}

	pm25 := baseline
	if industrial {
		pm25 *= 1.3 + rnd.Float64()*0.3
	}
	pm25 *= 1 + density/100*0.25
	pm25 *= 0.85 + rnd.Float64()*0.3

	if pm25 < MinPM25 {
		return MinPM25
	}
	if pm25 > MaxPM25 {
		return MaxPM25
	}
	return pm25
}
