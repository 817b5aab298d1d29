package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/service"
)

// AuditConfig controls which requests the audit middleware records.
type AuditConfig struct {
	SkipPaths   []string
	SkipMethods []string
	// AuditReads also records GET requests when true.
	AuditReads bool
}

// DefaultAuditConfig skips health probes, swagger, and non-mutating
// preflight methods.
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		SkipPaths: []string{
			"/health",
			"/health/db",
			"/health/ready",
			"/swagger",
		},
		SkipMethods: []string{
			http.MethodOptions,
			http.MethodHead,
		},
		AuditReads: false,
	}
}

// AuditMiddleware records successful mutating requests in the audit
// log: who did what to which entity, with the sanitized request body
// as the change payload.
type AuditMiddleware struct {
	auditService *service.AuditLogService
	config       *AuditConfig
	logger       *zap.Logger
}

func NewAuditMiddleware(auditService *service.AuditLogService, config *AuditConfig, logger *zap.Logger) *AuditMiddleware {
	if config == nil {
		config = DefaultAuditConfig()
	}
	return &AuditMiddleware{auditService: auditService, config: config, logger: logger}
}

type contextKey string

const auditRequestBodyKey contextKey = "audit_request_body"

// Audit captures the request body and response status, then writes the
// audit entry asynchronously so the response is never delayed by audit
// persistence.
func (m *AuditMiddleware) Audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.shouldAudit(r) {
			next.ServeHTTP(w, r)
			return
		}

		// The body is consumed here and replayed for the handler.
		var body []byte
		if r.Body != nil && mutatesWithBody(r.Method) {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(body))
		}
		r = r.WithContext(context.WithValue(r.Context(), auditRequestBodyKey, body))

		rw := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		go m.logAudit(r, rw.statusCode, body)
	})
}

func mutatesWithBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func (m *AuditMiddleware) shouldAudit(r *http.Request) bool {
	if slices.Contains(m.config.SkipMethods, r.Method) {
		return false
	}
	if r.Method == http.MethodGet && !m.config.AuditReads {
		return false
	}
	for _, skip := range m.config.SkipPaths {
		if strings.HasPrefix(r.URL.Path, skip) {
			return false
		}
	}
	return true
}

func (m *AuditMiddleware) logAudit(r *http.Request, statusCode int, body []byte) {
	if m.auditService == nil {
		return
	}
	// Failed requests didn't change anything.
	if statusCode < 200 || statusCode >= 300 {
		return
	}

	action := actionForMethod(r.Method)
	if action == "" {
		return
	}

	entityType, entityID := m.entityFromRoute(r)

	var changes interface{}
	if len(body) > 0 {
		var parsed map[string]interface{}
		if json.Unmarshal(body, &parsed) == nil {
			for _, sensitive := range []string{"password", "secret", "token", "apiKey"} {
				delete(parsed, sensitive)
			}
			changes = parsed
		}
	}

	err := m.auditService.Log(r.Context(), r, service.LogEntry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
	})
	if err != nil {
		m.logger.Warn("failed to create audit log entry",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err))
	}
}

func actionForMethod(method string) domain.AuditAction {
	switch method {
	case http.MethodPost:
		return domain.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return domain.AuditActionUpdate
	case http.MethodDelete:
		return domain.AuditActionDelete
	default:
		return ""
	}
}

// entityFromRoute resolves the audited entity from the chi route: the
// "{id}" param becomes the entity id and the route pattern names the
// entity type.
func (m *AuditMiddleware) entityFromRoute(r *http.Request) (string, *uuid.UUID) {
	routeCtx := chi.RouteContext(r.Context())
	if routeCtx == nil {
		return entityTypeFromPath(r.URL.Path), nil
	}

	var entityID *uuid.UUID
	if raw := routeCtx.URLParam("id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			entityID = &id
		}
	}
	return entityTypeFromPath(routeCtx.RoutePattern()), entityID
}

var pathEntityTypes = map[string]string{
	"customers":      "Customer",
	"quotations":     "Quotation",
	"rate-cards":     "RateCard",
	"shipper-quotes": "ShipperQuote",
	"shipments":      "Shipment",
	"documents":      "File",
	"users":          "User",
	"activities":     "Activity",
}

func entityTypeFromPath(path string) string {
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if entityType, ok := pathEntityTypes[segment]; ok {
			return entityType
		}
	}
	return "Unknown"
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseCapture) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// GetRequestBody returns the request body captured by Audit, if any.
func GetRequestBody(ctx context.Context) []byte {
	if body, ok := ctx.Value(auditRequestBodyKey).([]byte); ok {
		return body
	}
	return nil
}
