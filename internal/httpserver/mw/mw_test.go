package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linksaver/internal/auth"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestRequireOwner(t *testing.T) {
	v, err := auth.NewVerifier(testSecret)
	require.NoError(t, err)
	token, err := v.Sign(&auth.Claims{Email: "Alice@example.com"}, time.Hour)
	require.NoError(t, err)

	var seen string
	h := RequireOwner(v, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.OwnerFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
	rec := serve(h, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	r = httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, serve(h, r).Code)

	r = httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
	r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	assert.Equal(t, http.StatusOK, serve(h, r).Code)
	assert.Equal(t, "alice@example.com", seen)
}

func TestRateLimitPerOwner(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 2, RefillPerMin: 1})(okHandler)

	req := func(owner string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/bookmarks", nil)
		if owner != "" {
			r = r.WithContext(auth.WithOwner(r.Context(), owner))
		}
		return r
	}

	assert.Equal(t, http.StatusOK, serve(h, req("alice")).Code)
	rec := serve(h, req("alice"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))

	rec = serve(h, req("alice"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// other owners and anonymous callers have their own buckets
	assert.Equal(t, http.StatusOK, serve(h, req("bob")).Code)
	assert.Equal(t, http.StatusOK, serve(h, req("")).Code)
}

func TestLimiterSweepsIdleBuckets(t *testing.T) {
	l := newLimiter(RateLimitConfig{Burst: 1, RefillPerMin: 1, IdleTTL: time.Minute, SweepInterval: time.Minute})
	now := time.Now()
	l.allow("a", now)
	l.allow("b", now)
	require.Len(t, l.buckets, 2)

	l.allow("c", now.Add(2*time.Minute))
	assert.Len(t, l.buckets, 1)
}

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host    string
		pattern string
		want    bool
	}{
		{"links.example.com", "links.example.com", true},
		{"a.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evil-example.com", "*.example.com", false},
		{"other.com", "links.example.com", false},
	}
	for _, tt := range tests {
		if got := matchHost(tt.host, tt.pattern); got != tt.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
		}
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"Links.Example.com"}, logger.NewNop())(okHandler)

	r := httptest.NewRequest(http.MethodGet, "http://links.example.com:8080/healthz", nil)
	assert.Equal(t, http.StatusOK, serve(h, r).Code)

	r = httptest.NewRequest(http.MethodGet, "http://other.example.com/healthz", nil)
	assert.Equal(t, http.StatusForbidden, serve(h, r).Code)

	passthrough := EnforceHost(nil, logger.NewNop())(okHandler)
	assert.Equal(t, http.StatusOK, serve(passthrough, r).Code)
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, true, logger.NewNop())(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/infra", nil)
	r.Header.Set("X-Forwarded-For", "10.1.1.1")
	assert.Equal(t, http.StatusOK, serve(h, r).Code)

	r = httptest.NewRequest(http.MethodGet, "/infra", nil)
	assert.Equal(t, http.StatusForbidden, serve(h, r).Code)
}

func TestLogRecordsImplicitStatus(t *testing.T) {
	var status int
	h := Log(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := w.(*statusWriter)
		_, _ = w.Write([]byte("hi"))
		status = sw.status
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, status)
}
