package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_Middleware(t *testing.T) {
	t.Run("Blocks after burst", func(t *testing.T) {
		handler := NewRateLimiter(0.001, 2).Middleware(okHandler())

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/callback/duitku", nil)
			req.RemoteAddr = "10.0.0.1:4000"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("Separate buckets per IP", func(t *testing.T) {
		handler := NewRateLimiter(0.001, 1).Middleware(okHandler())

		for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
			req := httptest.NewRequest(http.MethodPost, "/callback/duitku", nil)
			req.RemoteAddr = addr
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("RemoteAddr without port", func(t *testing.T) {
		handler := NewRateLimiter(10, 1).Middleware(okHandler())

		req := httptest.NewRequest(http.MethodPost, "/callback/duitku", nil)
		req.RemoteAddr = "10.0.0.3"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimiter_Sweep(t *testing.T) {
	l := NewRateLimiter(1, 1)
	l.visitor("10.0.0.1")
	l.visitor("10.0.0.2")
	l.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)

	l.Sweep(time.Minute)

	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "10.0.0.2")
}
