package mw

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarks/internal/httpserver/respond"
	"github.com/MrSnakeDoc/bookmarks/internal/logger"
)

// okHandler records whether it ran.
type okHandler struct{ called bool }

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	w.WriteHeader(http.StatusOK)
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body respond.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Message
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid token", header: "Bearer s3cret", want: http.StatusOK},
		{name: "scheme is case-insensitive", header: "bearer s3cret", want: http.StatusOK},
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic s3cret", want: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &okHandler{}
			h := BearerAuth("s3cret", logger.NewNop())(next)

			req := httptest.NewRequest(http.MethodGet, "/bookmarks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.want == http.StatusOK, next.called)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "Unauthorized request", errorMessage(t, rec))
			}
		})
	}
}

func TestBearerAuth_EmptyConfiguredTokenRejectsAll(t *testing.T) {
	next := &okHandler{}
	h := BearerAuth("", logger.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/bookmarks", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, next.called)
}

func TestRateLimit(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cfg := RateLimitConfig{Burst: 2, PerMinute: 60, now: func() time.Time { return now }}
	next := &okHandler{}
	h := RateLimit(cfg, logger.NewNop())(next)

	do := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/bookmarks", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := do("10.0.0.1:1000")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001").Code)

	refused := do("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, refused.Code)
	assert.Equal(t, "1", refused.Header().Get("Retry-After"))
	assert.Equal(t, "Too many requests", errorMessage(t, refused))

	// Buckets are per client.
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000").Code)

	// One token back after a second at 60/min.
	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1003").Code)
}

func TestRateLimit_DisabledIsPassthrough(t *testing.T) {
	next := &okHandler{}
	h := RateLimit(RateLimitConfig{}, logger.NewNop())(next)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookmarks", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestLimiterSweepDropsIdleBuckets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newLimiter(RateLimitConfig{Burst: 1, PerMinute: 1, IdleTTL: time.Minute, SweepInterval: time.Minute, now: func() time.Time { return now }})

	l.allow("a", now)
	require.Len(t, l.buckets, 1)

	now = now.Add(2 * time.Minute)
	l.allow("b", now)
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "b")
}

func TestEnforceHost(t *testing.T) {
	tests := []struct {
		name string
		host string
		want int
	}{
		{name: "exact match", host: "bookmarks.example.com", want: http.StatusOK},
		{name: "port is ignored", host: "bookmarks.example.com:8000", want: http.StatusOK},
		{name: "case-insensitive", host: "Bookmarks.Example.COM", want: http.StatusOK},
		{name: "wildcard subdomain", host: "api.internal.lan", want: http.StatusOK},
		{name: "wildcard does not match apex", host: "internal.lan", want: http.StatusForbidden},
		{name: "unknown host", host: "evil.example.net", want: http.StatusForbidden},
	}

	h := EnforceHost([]string{"bookmarks.example.com", "*.internal.lan"}, logger.NewNop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &okHandler{}
			req := httptest.NewRequest(http.MethodGet, "/bookmarks", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			h(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.want == http.StatusOK, next.called)
		})
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trustProxy bool
		want       int
	}{
		{name: "inside range", remoteAddr: "192.168.1.20:5000", want: http.StatusOK},
		{name: "exact address", remoteAddr: "127.0.0.1:5000", want: http.StatusOK},
		{name: "outside range", remoteAddr: "8.8.8.8:5000", want: http.StatusForbidden},
		{name: "forwarded header ignored without trust", remoteAddr: "8.8.8.8:5000", xff: "192.168.1.20", want: http.StatusForbidden},
		{name: "forwarded header used with trust", remoteAddr: "8.8.8.8:5000", xff: "192.168.1.20", trustProxy: true, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &okHandler{}
			h := AllowOnlyCIDRS([]string{"192.168.1.0/24", "127.0.0.1"}, tt.trustProxy, logger.NewNop())(next)

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	next := &okHandler{}
	h := CORS()(next)

	req := httptest.NewRequest(http.MethodOptions, "/bookmarks", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, next.called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestLogCapturesStatus(t *testing.T) {
	h := Log(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
