package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAllowWithinWindow(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(3, 60*time.Second)
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"), "fourth call inside the window must be denied")

	current = current.Add(61 * time.Second)
	assert.True(t, l.Allow("k"), "call after the window elapses must be admitted")
}

func TestAllowSlidesWindow(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(2, 60*time.Second)
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("k"))

	current = current.Add(40 * time.Second)
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	// The first hit falls out of the window, the second does not.
	current = current.Add(30 * time.Second)
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
}

func TestAllowWindowBoundaryIsInclusive(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(1, 60*time.Second)
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("k"))

	// A hit exactly one window old still counts.
	current = current.Add(60 * time.Second)
	assert.False(t, l.Allow("k"))

	current = current.Add(time.Nanosecond)
	assert.True(t, l.Allow("k"))
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute)

	assert.True(t, l.Allow("1.2.3.4:shorten"))
	assert.False(t, l.Allow("1.2.3.4:shorten"))
	assert.True(t, l.Allow("5.6.7.8:shorten"))
	assert.True(t, l.Allow("1.2.3.4:stats"))
}

func TestAllowConcurrentSameKey(t *testing.T) {
	const limit = 10
	l := New(limit, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, admitted, "concurrent callers must never exceed the limit")
}

func TestMiddleware(t *testing.T) {
	l := New(2, time.Minute)
	logger := zap.NewNop()

	handler := Middleware(l, "shorten", nil, logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

	do := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/shorten", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusCreated, do("10.0.0.1:5000"))
	require.Equal(t, http.StatusCreated, do("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:5002"))
	assert.Equal(t, http.StatusCreated, do("10.0.0.2:5000"), "other clients keep their own budget")
}

func TestMiddlewareNilLimiterPassesThrough(t *testing.T) {
	handler := Middleware(nil, "shorten", nil, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/shorten", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestDefaultKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/shorten", nil)
	req.RemoteAddr = "10.1.1.1:4321"
	assert.Equal(t, "10.1.1.1:shorten", DefaultKey(req, "shorten"))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7:shorten", DefaultKey(req, "shorten"))
}
