package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/config"
	"github.com/nordcargo/forwarding-api/internal/database"
	"github.com/nordcargo/forwarding-api/internal/http/handler"
	"github.com/nordcargo/forwarding-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/nordcargo/forwarding-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	auditMiddleware     *middleware.AuditMiddleware
	customerHandler     *handler.CustomerHandler
	quotationHandler    *handler.QuotationHandler
	rateCardHandler     *handler.RateCardHandler
	shipperQuoteHandler *handler.ShipperQuoteHandler
	shipmentHandler     *handler.ShipmentHandler
	documentHandler     *handler.DocumentHandler
	activityHandler     *handler.ActivityHandler
	auditHandler        *handler.AuditHandler
	authHandler         *handler.AuthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	customerHandler *handler.CustomerHandler,
	quotationHandler *handler.QuotationHandler,
	rateCardHandler *handler.RateCardHandler,
	shipperQuoteHandler *handler.ShipperQuoteHandler,
	shipmentHandler *handler.ShipmentHandler,
	documentHandler *handler.DocumentHandler,
	activityHandler *handler.ActivityHandler,
	auditHandler *handler.AuditHandler,
	authHandler *handler.AuthHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		auditMiddleware:     auditMiddleware,
		customerHandler:     customerHandler,
		quotationHandler:    quotationHandler,
		rateCardHandler:     rateCardHandler,
		shipperQuoteHandler: shipperQuoteHandler,
		shipmentHandler:     shipmentHandler,
		documentHandler:     documentHandler,
		activityHandler:     activityHandler,
		auditHandler:        auditHandler,
		authHandler:         authHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.auditMiddleware.Audit) // Audit all modifications

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Audit logs (admin only)
			r.Route("/audit", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Get("/", rt.auditHandler.List)
				r.Get("/entity/{entityType}/{entityId}", rt.auditHandler.GetByEntity)
			})

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.customerHandler.List)
				r.Get("/{id}", rt.customerHandler.GetByID)
				r.Get("/{id}/activities", rt.customerHandler.ListActivities)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.customerHandler.Create)
					r.Put("/{id}", rt.customerHandler.Update)
					r.Delete("/{id}", rt.customerHandler.Delete)
				})
			})

			// Quotations
			r.Route("/quotations", func(r chi.Router) {
				r.Get("/", rt.quotationHandler.List)
				r.Get("/{id}", rt.quotationHandler.GetByID)
				r.Get("/{id}/activities", rt.quotationHandler.ListActivities)
				r.Get("/{id}/documents", rt.documentHandler.ListByQuotation)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.quotationHandler.Create)
					r.Post("/generate", rt.quotationHandler.Generate)
					r.Put("/{id}", rt.quotationHandler.Update)
					r.Delete("/{id}", rt.quotationHandler.Delete)
					r.Patch("/{id}/status", rt.quotationHandler.UpdateStatus)

					// Lifecycle endpoints
					r.Post("/{id}/send", rt.quotationHandler.Send)
					r.Post("/{id}/accept", rt.quotationHandler.Accept)
					r.Post("/{id}/reject", rt.quotationHandler.Reject)
					r.Post("/{id}/expire", rt.quotationHandler.Expire)
					r.Post("/{id}/convert", rt.quotationHandler.Convert)

					r.Post("/{id}/documents", rt.documentHandler.Upload)
				})
			})

			// Rate cards
			r.Route("/rate-cards", func(r chi.Router) {
				r.Get("/", rt.rateCardHandler.List)
				r.Get("/{id}", rt.rateCardHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.rateCardHandler.Create)
					r.Put("/{id}", rt.rateCardHandler.Update)
					r.Delete("/{id}", rt.rateCardHandler.Delete)
				})
			})

			// Shipper quote requests
			r.Route("/shipper-quotes", func(r chi.Router) {
				r.Get("/", rt.shipperQuoteHandler.List)
				r.Get("/{id}", rt.shipperQuoteHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.shipperQuoteHandler.Create)
					r.Post("/{id}/reply", rt.shipperQuoteHandler.RecordReply)
					r.Post("/{id}/convert", rt.shipperQuoteHandler.Convert)
					r.Delete("/{id}", rt.shipperQuoteHandler.Delete)
				})
			})

			// Shipments
			r.Route("/shipments", func(r chi.Router) {
				r.Get("/", rt.shipmentHandler.List)
				r.Get("/reference/{reference}", rt.shipmentHandler.GetByReference)
				r.Get("/{id}", rt.shipmentHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Patch("/{id}/status", rt.shipmentHandler.UpdateStatus)
					r.Put("/{id}/erp-reference", rt.shipmentHandler.SetERPReference)
				})
			})

			// Documents
			r.Route("/documents", func(r chi.Router) {
				r.Get("/{id}", rt.documentHandler.GetByID)
				r.Get("/{id}/download", rt.documentHandler.Download)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Delete("/{id}", rt.documentHandler.Delete)
				})
			})

			// Activities
			r.Route("/activities", func(r chi.Router) {
				r.Get("/", rt.activityHandler.List)
				r.Get("/{id}", rt.activityHandler.GetByID)
			})
		})
	})

	return r
}
