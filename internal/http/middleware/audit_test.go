package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nordcargo/forwarding-api/internal/http/middleware"
)

func TestAuditMiddleware_DefaultConfig(t *testing.T) {
	cfg := middleware.DefaultAuditConfig()

	assert.Contains(t, cfg.SkipPaths, "/health")
	assert.Contains(t, cfg.SkipPaths, "/swagger")
	assert.Contains(t, cfg.SkipMethods, http.MethodOptions)
	assert.Contains(t, cfg.SkipMethods, http.MethodHead)
	assert.False(t, cfg.AuditReads)
}

func TestAuditMiddleware_PassesRequestsThrough(t *testing.T) {
	// Filtering logic only; no audit service behind it
	am := middleware.NewAuditMiddleware(nil, middleware.DefaultAuditConfig(), nil)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"get request", http.MethodGet, "/api/v1/quotations"},
		{"options request", http.MethodOptions, "/api/v1/quotations"},
		{"health check", http.MethodPost, "/health"},
		{"post request", http.MethodPost, "/api/v1/quotations"},
		{"put request", http.MethodPut, "/api/v1/rate-cards"},
		{"delete request", http.MethodDelete, "/api/v1/customers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := am.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.True(t, handlerCalled)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestAuditMiddleware_NilConfigUsesDefaults(t *testing.T) {
	am := middleware.NewAuditMiddleware(nil, nil, nil)

	handlerCalled := false
	handler := am.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.True(t, handlerCalled)
}

func TestAuditMiddleware_RequestBodyStaysReadable(t *testing.T) {
	am := middleware.NewAuditMiddleware(nil, middleware.DefaultAuditConfig(), nil)

	var received string
	handler := am.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := middleware.GetRequestBody(r.Context())
		received = string(body)
		w.WriteHeader(http.StatusCreated)
	}))

	payload := `{"customerName":"Borealis Trading AS"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(payload))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, payload, received)
}

func TestAuditMiddleware_CapturesResponseStatus(t *testing.T) {
	am := middleware.NewAuditMiddleware(nil, middleware.DefaultAuditConfig(), nil)

	handler := am.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotations", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAuditMiddleware_AuditReadsWhenEnabled(t *testing.T) {
	cfg := &middleware.AuditConfig{
		SkipPaths:   []string{"/health"},
		SkipMethods: []string{http.MethodOptions, http.MethodHead},
		AuditReads:  true,
	}
	am := middleware.NewAuditMiddleware(nil, cfg, nil)

	handlerCalled := false
	handler := am.Audit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, w.Code)
}
