package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerClientIP(t *testing.T) {
	l := NewRateLimiter(0.2, 2)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := l.Limit(ok)

	post := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, post("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusNoContent, post("10.0.0.1:1001").Code)
	limited := post("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "5", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, post("10.0.0.2:1000").Code, "other clients keep their own budget")

	get := httptest.NewRequest(http.MethodGet, "/login", nil)
	get.RemoteAddr = "10.0.0.1:1003"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, get)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	now = now.Add(5 * time.Second)
	assert.Equal(t, http.StatusNoContent, post("10.0.0.1:1004").Code)
}

func TestRateLimiter_SweepsIdleVisitors(t *testing.T) {
	l := NewRateLimiter(1, 1)
	now := time.Now()
	l.now = func() time.Time { return now }

	l.allow("a")
	l.allow("b")
	assert.Len(t, l.visitors, 2)

	now = now.Add(visitorIdle + time.Minute)
	l.allow("c")
	assert.Len(t, l.visitors, 1)
}
