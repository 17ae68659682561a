package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryRateStore()
	defer store.Close()
	store.clock = func() time.Time { return current }

	r := gin.New()
	r.Use(RateLimit(store, 2, time.Minute))
	r.POST("/api/auth/sign-in", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/sign-in", nil))
		return w
	}

	for i := 0; i < 2; i++ {
		w := send()
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := send()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, "61", w.Header().Get("Retry-After"))

	current = current.Add(time.Minute)
	w = send()
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
}

type failingRateStore struct{}

func (failingRateStore) Increment(context.Context, string, time.Duration) (int, time.Duration, error) {
	return 0, 0, errors.New("store down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(failingRateStore{}, 1, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

type countingCounter struct{ n int64 }

func (c *countingCounter) IncrementWithTTL(context.Context, string, time.Duration) (int64, time.Duration, error) {
	c.n++
	return c.n, 30 * time.Second, nil
}

func TestCounterRateStoreAdapts(t *testing.T) {
	require.Nil(t, NewCounterRateStore(nil))

	store := NewCounterRateStore(&countingCounter{})
	count, ttl, err := store.Increment(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, 30*time.Second, ttl)
}

func TestMemoryRateStoreCloseStopsSweeper(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := NewMemoryRateStore()
	_, _, err := store.Increment(context.Background(), "k", time.Second)
	require.NoError(t, err)
	store.Close()
	store.Close()
}
