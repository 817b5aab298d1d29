package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nordcargo/forwarding-api/docs"
	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/config"
	"github.com/nordcargo/forwarding-api/internal/database"
	"github.com/nordcargo/forwarding-api/internal/erp"
	"github.com/nordcargo/forwarding-api/internal/http/handler"
	"github.com/nordcargo/forwarding-api/internal/http/middleware"
	"github.com/nordcargo/forwarding-api/internal/http/router"
	"github.com/nordcargo/forwarding-api/internal/jobs"
	"github.com/nordcargo/forwarding-api/internal/logger"
	"github.com/nordcargo/forwarding-api/internal/pricing"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"github.com/nordcargo/forwarding-api/internal/service"
	"github.com/nordcargo/forwarding-api/internal/storage"
	"go.uber.org/zap"
)

// @title NordCargo Forwarding API
// @version 1.0
// @description Freight forwarding back-office API for quotations, rate cards and shipments
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@nordcargo.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "forwarding-staging.nordcargo.io"
	case "production":
		docs.SwaggerInfo.Host = "api.nordcargo.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize ERP connection (optional - for landed cost reconciliation)
	// This connection is read-only and the app continues without it if not configured
	var erpClient *erp.Client
	if cfg.ERP.Enabled {
		erpClient, err = erp.NewClient(&cfg.ERP, log)
		if err != nil {
			// Log error but don't fail - the ERP link is optional
			log.Warn("ERP connection failed, continuing without it", zap.Error(err))
		} else if erpClient != nil {
			log.Info("ERP connected successfully")
		}
	} else {
		log.Info("ERP not configured, skipping", zap.Bool("enabled", cfg.ERP.Enabled))
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	rateCardRepo := repository.NewRateCardRepository(db)
	shipperQuoteRepo := repository.NewShipperQuoteRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	fileRepo := repository.NewFileRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)

	// Pricing configuration shared by the quotation and shipper quote services
	pricingCfg := pricing.Config{
		DefaultMarginPercent: cfg.Pricing.DefaultMarginPercent,
		VolumetricDivisor:    cfg.Pricing.VolumetricDivisor,
		DefaultValidityDays:  cfg.Pricing.DefaultValidityDays,
	}

	// Initialize services
	numberService := service.NewQuoteNumberService(numberSequenceRepo, log)
	customerService := service.NewCustomerService(customerRepo, activityRepo, log)
	quotationService := service.NewQuotationService(db, quotationRepo, customerRepo, rateCardRepo, shipmentRepo, activityRepo, numberService, pricingCfg, log)
	rateCardService := service.NewRateCardService(rateCardRepo, activityRepo, log)
	shipperQuoteService := service.NewShipperQuoteService(shipperQuoteRepo, quotationRepo, customerRepo, activityRepo, pricingCfg, log)
	shipmentService := service.NewShipmentService(shipmentRepo, activityRepo, erpClient, log)
	documentService := service.NewDocumentService(fileRepo, quotationRepo, activityRepo, fileStorage, log)
	activityService := service.NewActivityService(activityRepo, log)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil, log)

	// Initialize handlers
	customerHandler := handler.NewCustomerHandler(customerService, activityService, log)
	quotationHandler := handler.NewQuotationHandler(quotationService, activityService, log)
	rateCardHandler := handler.NewRateCardHandler(rateCardService, log)
	shipperQuoteHandler := handler.NewShipperQuoteHandler(shipperQuoteService, log)
	shipmentHandler := handler.NewShipmentHandler(shipmentService, log)
	documentHandler := handler.NewDocumentHandler(documentService, cfg.Storage.MaxUploadSizeMB, log)
	activityHandler := handler.NewActivityHandler(activityService, log)
	auditHandler := handler.NewAuditHandler(auditLogService, log)
	authHandler := handler.NewAuthHandler(userRepo, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		auditMiddleware,
		customerHandler,
		quotationHandler,
		rateCardHandler,
		shipperQuoteHandler,
		shipmentHandler,
		documentHandler,
		activityHandler,
		auditHandler,
		authHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		expiryJob := jobs.NewExpiryJob(quotationService, log, cfg.Jobs.JobTimeoutDuration())
		if err := scheduler.AddJob(jobs.ExpiryJobName, cfg.Jobs.ExpirySchedule, expiryJob.Run); err != nil {
			log.Error("Failed to register quotation expiry job", zap.Error(err))
		}

		if erpClient != nil && erpClient.IsEnabled() {
			erpSyncJob := jobs.NewERPSyncJob(shipmentService, log, cfg.Jobs.JobTimeoutDuration())
			if err := scheduler.AddJob(jobs.ERPSyncJobName, cfg.Jobs.ERPSyncSchedule, erpSyncJob.Run); err != nil {
				log.Error("Failed to register ERP cost sync job", zap.Error(err))
			}
		}

		scheduler.Start()
		log.Info("Scheduler started",
			zap.Strings("jobs", scheduler.GetJobNames()),
			zap.Duration("job_timeout", cfg.Jobs.JobTimeoutDuration()),
		)
	} else {
		log.Info("Background jobs disabled", zap.Bool("enabled", cfg.Jobs.Enabled))
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close ERP connection if initialized
		if erpClient != nil {
			if err := erpClient.Close(); err != nil {
				log.Warn("Error closing ERP connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
