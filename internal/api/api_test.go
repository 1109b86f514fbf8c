package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/leadscan/internal/contracts"
	"github.com/wonny/leadscan/internal/pipeline"
	"github.com/wonny/leadscan/pkg/config"
	"github.com/wonny/leadscan/pkg/logger"
	"github.com/wonny/leadscan/pkg/redis"
)

func testRouter(t *testing.T, limiter Limiter) http.Handler {
	t.Helper()
	table, err := contracts.NewPriceTable([]contracts.PriceRecord{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Symbol: "AAA", PrevClose: 100, Open: 101, High: 111, Low: 99, Close: 110},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Symbol: "AAA", PrevClose: 110, Open: 115, High: 118, Low: 110, Close: 112},
	})
	require.NoError(t, err)

	defaults := config.PipelineConfig{TopN: 1, OrderPct: 1, StopLossPct: 1}
	return NewRouter(pipeline.New(table, logger.Nop()), defaults, limiter, logger.Nop())
}

func TestRouter_Routes(t *testing.T) {
	router := testRouter(t, nil)

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/symbols", http.StatusOK},
		{http.MethodGet, "/api/analysis?start=2024-01-01&end=2024-01-02", http.StatusOK},
		{http.MethodGet, "/api/analysis", http.StatusBadRequest},
		{http.MethodPost, "/api/analysis", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_RateLimit(t *testing.T) {
	router := testRouter(t, NewLocalLimiter(2))

	send := func(target, remote string) int {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("/api/symbols", "192.0.2.1:1000"))
	assert.Equal(t, http.StatusOK, send("/api/symbols", "192.0.2.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("/api/symbols", "192.0.2.1:1002"))

	// other clients and non-API routes are unaffected
	assert.Equal(t, http.StatusOK, send("/api/symbols", "192.0.2.2:1000"))
	assert.Equal(t, http.StatusOK, send("/health", "192.0.2.1:1003"))
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:5555"
	assert.Equal(t, "198.51.100.4", clientKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientKey(req))
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(nil, 0))

	disabled, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)

	limiter := NewLimiter(disabled, 60)
	require.IsType(t, &LocalLimiter{}, limiter)

	allowed, err := limiter.Allow(context.Background(), "client")
	require.NoError(t, err)
	assert.True(t, allowed)
}
