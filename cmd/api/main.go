package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/kofoworola/geogate/internal/config"
	"github.com/kofoworola/geogate/internal/handlers"
	"github.com/kofoworola/geogate/internal/middleware"
	"github.com/kofoworola/geogate/internal/providers"
	"github.com/kofoworola/geogate/internal/repository"
	"github.com/kofoworola/geogate/internal/services"
	"github.com/kofoworola/geogate/internal/spoofing"
	"github.com/kofoworola/geogate/internal/verifiers"
	"github.com/kofoworola/geogate/pkg/cache"
	"github.com/kofoworola/geogate/pkg/logger"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	// Set log level
	logger.SetLevel(logger.ParseLevel(cfg.Monitoring.LogLevel))
	logger.Info("Starting Geogate API", map[string]any{
		"version":     "1.0.0",
		"environment": cfg.API.Environment,
	})

	// Initialize database with retry logic
	var repo *repository.Repository
	err = repository.WithRetry(context.Background(), repository.DefaultRetryConfig, func() error {
		var retryErr error
		repo, retryErr = repository.NewRepository(
			cfg.Database.URL,
			cfg.Database.MaxConns,
			cfg.Database.MaxIdleConns,
		)
		return retryErr
	})
	if err != nil {
		logger.Error("Failed to connect to database", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer func() { _ = repo.Close() }()

	// Health check database
	if err := repo.HealthCheck(context.Background()); err != nil {
		logger.Error("Database health check failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("Connected to PostgreSQL")

	// Initialize Redis cache
	var redisCache *cache.Cache
	err = repository.WithRetry(context.Background(), repository.DefaultRetryConfig, func() error {
		var retryErr error
		redisCache, retryErr = cache.NewCache(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.TargetTTL,
		)
		return retryErr
	})
	if err != nil {
		logger.Error("Failed to connect to Redis", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer func() { _ = redisCache.Close() }()
	logger.Info("Connected to Redis", map[string]any{"addr": cfg.Redis.Address})

	// Initialize geolocation providers
	networkLocator := providers.NewNetworkGeolocationClient(
		cfg.Providers.GeolocationURL,
		cfg.Providers.GeolocationAPIKey,
		cfg.Providers.Timeout,
	)
	ipLocator := providers.NewIPGeolocationClient(
		cfg.Providers.IPGeolocationURL,
		cfg.Providers.IPGeolocationKey,
		cfg.Providers.Timeout,
	)

	// Assemble the enabled vector verifiers
	vectorVerifiers := buildVerifiers(cfg, repo, networkLocator, ipLocator)
	logger.Info("Vector verifiers configured", map[string]any{
		"enabled": cfg.Geofence.EnabledMethods,
	})

	// Initialize services
	detector := spoofing.NewDetector(repo, cfg.Detection)
	verifyService := services.NewVerificationService(
		repo,
		redisCache,
		vectorVerifiers,
		detector,
		cfg.Geofence,
		cfg.Providers.Timeout,
	)

	// Initialize handlers
	handler := handlers.NewHandler(verifyService, repo, redisCache)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		DisableStartupMessage: false,
		ServerHeader:          "Geogate",
		AppName:               "Geogate API v1.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			logger.Error("Request error", map[string]any{
				"error": err.Error(),
				"path":  c.Path(),
				"code":  code,
			})
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(middleware.Recover())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.Security.CORSOrigins))

	// Rate limiters
	rateLimiter := middleware.NewRateLimiter(redisCache, &cfg.RateLimit)

	// Routes
	app.Get("/health", handler.Health)
	app.Get("/metrics", handler.Metrics)

	// API v1 routes
	v1 := app.Group("/v1")
	v1.Post("/verify",
		rateLimiter.LimitByIP(),
		rateLimiter.LimitByFingerprint(),
		handler.Verify,
	)
	v1.Post("/targets", handler.RegisterTarget)

	// Audit API
	api := app.Group("/api")
	api.Get("/verifications", handler.RecentVerifications)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_ = app.ShutdownWithContext(ctx)
		logger.Info("Server shutdown complete")
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.API.Host, cfg.API.Port)
	logger.Info("Geogate API started", map[string]any{"address": addr})

	if err := app.Listen(addr); err != nil {
		logger.Error("Server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

// buildVerifiers wires one verifier per enabled method.
func buildVerifiers(
	cfg *config.Config,
	repo *repository.Repository,
	networkLocator providers.Locator,
	ipLocator providers.IPLocator,
) []verifiers.Verifier {
	var list []verifiers.Verifier
	for _, method := range cfg.Geofence.EnabledMethods {
		switch method {
		case "gps":
			list = append(list, verifiers.NewGPSVerifier(repo, cfg.Detection))
		case "wifi":
			list = append(list, verifiers.NewWiFiVerifier(networkLocator))
		case "ip":
			list = append(list, verifiers.NewIPVerifier(ipLocator))
		case "cell_tower":
			list = append(list, verifiers.NewCellTowerVerifier(networkLocator))
		default:
			logger.Warn("Unknown verification method in config, ignoring", map[string]any{
				"method": method,
			})
		}
	}
	return list
}
