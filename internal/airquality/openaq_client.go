package airquality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAQBaseURL public OpenAQ v2 endpoint
	DefaultOpenAQBaseURL = "https://api.openaq.org/v2"
	// DefaultCity region whose measurements form the baseline
	DefaultCity = "Delhi"
	// measurementLimit max measurements requested per call
	measurementLimit = 100
)

// ErrNoMeasurements the provider answered but had nothing usable
var ErrNoMeasurements = errors.New("no pm25 measurements")

// OpenAQMeasurement one entry of the /latest response
type OpenAQMeasurement struct {
	Parameter   string  `json:"parameter"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Location    string  `json:"location"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	LastUpdated string  `json:"lastUpdated"`
}

// OpenAQResponse /latest response envelope
type OpenAQResponse struct {
	Meta struct {
		Found int `json:"found"`
	} `json:"meta"`
	Results []OpenAQMeasurement `json:"results"`
}

// BreakerSettings circuit breaker thresholds for the provider
type BreakerSettings struct {
	MaxFailures int           // consecutive failures before opening
	OpenTimeout time.Duration // how long the breaker stays open
	Interval    time.Duration // counter reset period while closed (0 = never)
	// OnStateChange observes breaker transitions, may be nil
	OnStateChange func(to gobreaker.State)
}

// DefaultBreakerSettings opens after 3 consecutive failures for 2 minutes
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxFailures: 3,
		OpenTimeout: 2 * time.Minute,
	}
}

// OpenAQClient fetches the regional PM2.5 baseline from OpenAQ
type OpenAQClient struct {
	httpClient *resty.Client
	city       string
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewOpenAQClient creates an OpenAQ client
func NewOpenAQClient(baseURL, city string, breaker BreakerSettings, logger *zap.Logger) *OpenAQClient {
	if baseURL == "" {
		baseURL = DefaultOpenAQBaseURL
	}
	if city == "" {
		city = DefaultCity
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(1).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(1 * time.Second).
		SetHeader("Accept", "application/json")

	return &OpenAQClient{
		httpClient: client,
		city:       city,
		breaker:    newBreaker("openaq", breaker, logger),
		logger:     logger,
	}
}

func newBreaker(name string, s BreakerSettings, logger *zap.Logger) *gobreaker.CircuitBreaker {
	fails := s.MaxFailures
	if fails <= 0 {
		fails = 1
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: s.Interval,
		Timeout:  s.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if s.OnStateChange != nil {
				s.OnStateChange(to)
			}
		},
	})
}

// FetchBaseline returns the average PM2.5 of the latest measurements for the configured city.
// A non-positive average is reported as ErrNoMeasurements. While the breaker is open the
// call fails immediately with gobreaker.ErrOpenState.
func (c *OpenAQClient) FetchBaseline(ctx context.Context) (float64, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchAverage(ctx)
	})
	if err != nil {
		return 0, err
	}
	return res.(float64), nil
}

func (c *OpenAQClient) fetchAverage(ctx context.Context) (float64, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"city":      c.city,
			"parameter": "pm25",
			"limit":     strconv.Itoa(measurementLimit),
		}).
		Get("/latest")
	if err != nil {
		return 0, fmt.Errorf("failed to call OpenAQ: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("OpenAQ returned status %d", resp.StatusCode())
	}

	var body OpenAQResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return 0, fmt.Errorf("failed to decode OpenAQ response: %w", err)
	}
	if len(body.Results) == 0 {
		return 0, ErrNoMeasurements
	}

	sum := 0.0
	for _, m := range body.Results {
		sum += m.Value
	}
	avg := sum / float64(len(body.Results))
	if avg <= 0 {
		return 0, fmt.Errorf("%w: average %.2f", ErrNoMeasurements, avg)
	}

	c.logger.Debug("Fetched OpenAQ baseline",
		zap.String("city", c.city),
		zap.Int("measurements", len(body.Results)),
		zap.Float64("avg_pm25", avg),
	)
	return avg, nil
}
