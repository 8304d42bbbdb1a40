package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/fleetworks/workorder-api/internal/handler"
	"github.com/fleetworks/workorder-api/internal/middleware"
	"github.com/fleetworks/workorder-api/internal/repository"
	"github.com/fleetworks/workorder-api/internal/service"
	"github.com/fleetworks/workorder-api/pkg/cache"
	"github.com/fleetworks/workorder-api/pkg/config"
	"github.com/fleetworks/workorder-api/pkg/database"
	"github.com/fleetworks/workorder-api/pkg/export"
	"github.com/fleetworks/workorder-api/pkg/logger"
	corsmiddleware "github.com/fleetworks/workorder-api/pkg/middleware/cors"
	reqidmiddleware "github.com/fleetworks/workorder-api/pkg/middleware/requestid"
	"github.com/fleetworks/workorder-api/pkg/storage"
)

// @title Fleetworks Work Order API
// @version 1.0.0
// @description Maintenance request intake, work-order tracking and invoicing
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var db *sqlx.DB
	var requestRepo *repository.RequestRepository
	var invoiceRepo *repository.InvoiceRepository
	var userRepo *repository.UserRepository
	var memory *repository.MemoryStore

	if cfg.Database.Enabled() {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("database connection failed", "error", err)
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			logr.Sugar().Fatalw("migrations failed", "error", err)
		}
		requestRepo = repository.NewRequestRepository(db)
		invoiceRepo = repository.NewInvoiceRepository(db)
		userRepo = repository.NewUserRepository(db)
		logr.Sugar().Infow("storage ready", "backend", "postgres")
	} else {
		memory = repository.NewMemoryStore()
		logr.Sugar().Warnw("no database configured, using in-memory storage")
	}

	var cacheRepo *repository.CacheRepository
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Sugar().Fatalw("uploads directory unavailable", "error", err)
	}

	validate := service.NewValidator()
	metricsService := service.NewMetricsService()

	var requestService *service.RequestService
	var invoiceService *service.InvoiceService
	var authService *service.AuthService
	authConfig := service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}
	if memory != nil {
		requestService = service.NewRequestService(memory.Requests(), cacheRepo, cfg.Redis.CacheTTL, metricsService, validate, logr, cfg.Uploads.MaxFiles)
		invoiceService = service.NewInvoiceService(memory.Invoices(), memory.Requests(), validate, logr)
		authService = service.NewAuthService(memory.Users(), validate, logr, authConfig)
	} else {
		requestService = service.NewRequestService(requestRepo, cacheRepo, cfg.Redis.CacheTTL, metricsService, validate, logr, cfg.Uploads.MaxFiles)
		invoiceService = service.NewInvoiceService(invoiceRepo, requestRepo, validate, logr)
		authService = service.NewAuthService(userRepo, validate, logr, authConfig)
	}
	uploadService := service.NewUploadService(store, cfg.Uploads, logr)

	seed(cfg, logr, authService, requestService)

	h := handler.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Requests: handler.NewRequestHandler(requestService),
		Invoices: handler.NewInvoiceHandler(invoiceService, requestService, export.NewInvoicePDFExporter(cfg.Shop)),
		Uploads:  handler.NewUploadHandler(uploadService),
		Metrics:  handler.NewMetricsHandler(metricsService),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", h.Metrics.Prometheus)
	r.Static(cfg.Uploads.PublicPath, store.Dir())

	handler.RegisterRoutes(r, cfg.APIPrefix, h, authService)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
