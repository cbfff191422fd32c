package airquality

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOpenAQServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "Delhi", r.URL.Query().Get("city"))
		assert.Equal(t, "pm25", r.URL.Query().Get("parameter"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAQClient_FetchBaselineAverages(t *testing.T) {
	srv := newOpenAQServer(t, http.StatusOK,
		`{"meta":{"found":3},"results":[{"parameter":"pm25","value":100},{"parameter":"pm25","value":150},{"parameter":"pm25","value":50}]}`, nil)

	client := NewOpenAQClient(srv.URL, "", DefaultBreakerSettings(), zap.NewNop())
	avg, err := client.FetchBaseline(context.Background())

	require.NoError(t, err)
	assert.InDelta(t, 100.0, avg, 1e-9)
}

func TestOpenAQClient_FetchBaselineFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"empty results", http.StatusOK, `{"meta":{"found":0},"results":[]}`},
		{"zero average", http.StatusOK, `{"results":[{"value":0},{"value":0}]}`},
		{"malformed json", http.StatusOK, `{"results":[`},
		{"server error", http.StatusBadGateway, `{"error":"upstream"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newOpenAQServer(t, tt.status, tt.body, nil)
			client := NewOpenAQClient(srv.URL, "Delhi", DefaultBreakerSettings(), zap.NewNop())

			_, err := client.FetchBaseline(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestOpenAQClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int32
	srv := newOpenAQServer(t, http.StatusInternalServerError, `{}`, &hits)
	client := NewOpenAQClient(srv.URL, "Delhi", BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute}, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := client.FetchBaseline(context.Background())
		require.Error(t, err)
	}
	before := atomic.LoadInt32(&hits)

	_, err := client.FetchBaseline(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, before, atomic.LoadInt32(&hits))
}

func TestOpenAQClient_RespectsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client := NewOpenAQClient(srv.URL, "Delhi", DefaultBreakerSettings(), zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.FetchBaseline(ctx)
	assert.Error(t, err)
}
