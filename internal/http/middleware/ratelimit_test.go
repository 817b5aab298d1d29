package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/config"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/http/middleware"
)

func newTestRateLimiter(cfg *config.RateLimitConfig) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg, zap.NewNop())
}

func countingHandler(counter *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*counter++
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := newTestRateLimiter(&config.RateLimitConfig{
		Enabled:           false,
		RequestsPerMinute: 5,
	})

	handlerCalled := 0
	handler := rl.LimitByIP(countingHandler(&handlerCalled))

	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 100, handlerCalled)
}

func TestRateLimiter_WhitelistedIP(t *testing.T) {
	rl := newTestRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 2,
		WhitelistIPs:      []string{"127.0.0.1"},
	})

	handlerCalled := 0
	handler := rl.LimitByIP(countingHandler(&handlerCalled))

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations", nil)
		req.RemoteAddr = "127.0.0.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 50, handlerCalled)
}

func TestRateLimiter_WhitelistedPath(t *testing.T) {
	rl := newTestRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 2,
		WhitelistPaths:    []string{"/health"},
	})

	handlerCalled := 0
	handler := rl.LimitByIP(countingHandler(&handlerCalled))

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 50, handlerCalled)
}

func TestRateLimiter_WhitelistedPathPrefix(t *testing.T) {
	rl := newTestRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 2,
		WhitelistPaths:    []string{"/health/*"},
	})

	handlerCalled := 0
	handler := rl.LimitByIP(countingHandler(&handlerCalled))

	paths := []string{"/health/db", "/health/ready", "/health/live"}
	for i := 0; i < 30; i++ {
		req := httptest.NewRequest(http.MethodGet, paths[i%len(paths)], nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 30, handlerCalled)
}

func TestRateLimiter_LimitExceeded(t *testing.T) {
	rl := newTestRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 5,
		BurstSize:         5,
	})

	handler := rl.LimitByIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	okCount := 0
	rateLimitedCount := 0

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		switch w.Code {
		case http.StatusOK:
			okCount++
		case http.StatusTooManyRequests:
			rateLimitedCount++
			assert.Equal(t, "60", w.Header().Get("Retry-After"))
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), "rate limit exceeded")
		}
	}

	assert.Greater(t, okCount, 0, "some requests should succeed")
	assert.Greater(t, rateLimitedCount, 0, "some requests should be rate limited")
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	rl := newTestRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 3,
		BurstSize:         3,
	})

	handler := rl.LimitByIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ips := []string{"192.168.1.1:12345", "192.168.1.2:12345", "192.168.1.3:12345"}
	for _, ip := range ips {
		okCount := 0
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations", nil)
			req.RemoteAddr = ip
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code == http.StatusOK {
				okCount++
			}
		}
		assert.Greater(t, okCount, 0, "IP %s should get successful requests", ip)
	}
}

func TestRateLimiter_ProxyHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
	}{
		{"x-forwarded-for", "X-Forwarded-For", "10.0.0.1"},
		{"x-real-ip", "X-Real-IP", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := newTestRateLimiter(&config.RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 3,
				BurstSize:         3,
				WhitelistIPs:      []string{"10.0.0.1"},
			})

			handlerCalled := 0
			handler := rl.LimitByIP(countingHandler(&handlerCalled))

			// The real client IP comes from the proxy header and is whitelisted
			for i := 0; i < 20; i++ {
				req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations", nil)
				req.RemoteAddr = "192.168.1.1:12345"
				req.Header.Set(tt.header, tt.value)
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)
				assert.Equal(t, http.StatusOK, w.Code)
			}

			assert.Equal(t, 20, handlerCalled)
		})
	}
}

func TestRateLimiter_AuthenticatedUserLimit(t *testing.T) {
	rl := newTestRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     2,
		RequestsPerMinuteAuth: 10,
		BurstSize:             2,
	})

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	userCtx := &auth.UserContext{
		UserID:      "user-123",
		DisplayName: "Test Operator",
		Email:       "operator@example.com",
		Roles:       []domain.UserRoleType{domain.RoleOperator},
	}

	okCount := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req = req.WithContext(auth.WithUserContext(context.Background(), userCtx))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			okCount++
		}
	}

	assert.Greater(t, okCount, 2, "authenticated users should have the higher limit")
}
