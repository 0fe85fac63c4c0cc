// Package main provides the main entry point for the Kusanagi link shortening service
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/Kusanagi/app/handlers"
	"github.com/amirphl/Kusanagi/app/middleware"
	"github.com/amirphl/Kusanagi/app/router"
	"github.com/amirphl/Kusanagi/app/scheduler"
	"github.com/amirphl/Kusanagi/app/services"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/config"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Kusanagi application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	// Stop background workers only after the server has drained, so visits
	// enqueued by in-flight requests still reach the recorder's drain
	for _, fn := range app.stopFuncs {
		fn()
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	// TranslateError surfaces unique violations as gorm.ErrDuplicatedKey,
	// which the code allocator retries on
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(&models.Customer{}, &models.Link{}, &models.Visit{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeGeoService opens the MaxMind database when geo lookups are enabled
func initializeGeoService(cfg config.GeoConfig) services.GeoService {
	if !cfg.Enabled {
		return services.NewNoopGeoService()
	}

	geo, err := services.NewMaxMindGeoService(cfg.DBPath)
	if err != nil {
		log.Printf("Geo lookups disabled, could not open %s: %v", cfg.DBPath, err)
		return services.NewNoopGeoService()
	}

	log.Printf("Geo lookups enabled with database %s", cfg.DBPath)
	return geo
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	visitRepo := repository.NewVisitRepository(db)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize enrichment services and the background visit recorder
	geoService := initializeGeoService(cfg.Geo)
	uaService := services.NewUserAgentService()

	recorder := scheduler.NewVisitRecorder(
		visitRepo,
		geoService,
		uaService,
		cfg.Recorder.QueueSize,
		cfg.Recorder.Workers,
		cfg.Recorder.LogPath,
	)
	stopRecorder := recorder.Start(context.Background())
	stopFuncs = append(stopFuncs, stopRecorder)

	// Initialize flows
	shortLinkFlow := businessflow.NewShortLinkFlow(linkRepo, customerRepo, rc, cfg.App.BaseURL)
	visitFlow := businessflow.NewShortLinkVisitFlow(linkRepo, recorder, rc)
	analyticsFlow := businessflow.NewAnalyticsFlow(linkRepo, visitRepo, cfg.App.BaseURL)
	exportFlow := businessflow.NewLinkExportFlow(linkRepo, cfg.App.BaseURL)
	identityFlow := businessflow.NewIdentityFlow(customerRepo, tokenService, db)

	// Initialize handlers
	shortLinkHandler := handlers.NewShortLinkHandler(visitFlow)
	linkHandler := handlers.NewLinkHandler(shortLinkFlow, exportFlow)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsFlow)
	authHandler := handlers.NewAuthHandler(identityFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		shortLinkHandler,
		linkHandler,
		analyticsHandler,
		authHandler,
		authMiddleware,
		cfg.Security,
		cfg.Server,
	)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
