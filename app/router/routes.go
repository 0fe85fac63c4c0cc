// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/handlers"
	"github.com/amirphl/Kusanagi/app/middleware"
	"github.com/amirphl/Kusanagi/config"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app              *fiber.App
	shortLinkHandler handlers.ShortLinkHandlerInterface
	linkHandler      handlers.LinkHandlerInterface
	analyticsHandler handlers.AnalyticsHandlerInterface
	authHandler      handlers.AuthHandlerInterface
	authMiddleware   *middleware.AuthMiddleware
	security         config.SecurityConfig
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	shortLinkHandler handlers.ShortLinkHandlerInterface,
	linkHandler handlers.LinkHandlerInterface,
	analyticsHandler handlers.AnalyticsHandlerInterface,
	authHandler handlers.AuthHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
	security config.SecurityConfig,
	server config.ServerConfig,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Kusanagi API",
		ServerHeader: "Kusanagi",
		ErrorHandler: errorHandler,
		BodyLimit:    server.BodyLimit,
		ReadTimeout:  server.ReadTimeout,
		WriteTimeout: server.WriteTimeout,
		IdleTimeout:  server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:              app,
		shortLinkHandler: shortLinkHandler,
		linkHandler:      linkHandler,
		analyticsHandler: analyticsHandler,
		authHandler:      authHandler,
		authMiddleware:   authMiddleware,
		security:         security,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// Public redirect route, no rate limiting beyond the global limiter
	r.app.Get("/s/:code", r.shortLinkHandler.Visit)

	// Prometheus metrics
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// Apply general rate limiting to all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        r.security.GlobalRateLimit,
		Expiration: r.security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			// Skip rate limiting for health checks
			return c.Path() == "/api/v1/health"
		},
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:        r.security.AuthRateLimit,
		Expiration: r.security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}))

	auth.Post("/session", r.authHandler.CreateSession)
	auth.Post("/session/refresh", r.authHandler.RefreshSession)

	// Link management routes, authenticated, creation rate limited per customer
	links := api.Group("/links")
	links.Use(r.authMiddleware.Authenticate())
	links.Use(limiter.New(limiter.Config{
		Max:        r.security.LinkRateLimit,
		Expiration: r.security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}))

	links.Post("/", r.linkHandler.CreateShortLink)
	links.Get("/", r.linkHandler.ListLinks)
	links.Get("/export", r.linkHandler.ExportLinks)

	// Analytics routes, authenticated
	analytics := api.Group("/analytics")
	analytics.Use(r.authMiddleware.Authenticate())

	analytics.Get("/link/:code", r.analyticsHandler.GetLinkAnalytics)
	analytics.Get("/topic/:topic", r.analyticsHandler.GetTopicAnalytics)
	analytics.Get("/overall", r.analyticsHandler.GetOverallAnalytics)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000, // 1 year
		HSTSExcludeSubdomains: false,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	// CORS middleware
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.security.AllowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: r.security.AllowCredentials,
		MaxAge:           r.security.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			// Redirects carry no body worth compressing
			return c.Method() == "GET" && len(c.Path()) > 3 && c.Path()[:3] == "/s/"
		},
	}))

	// Prometheus metrics middleware
	r.app.Use(middleware.Metrics())

	// Structured request logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			// Skip logging for health checks in production
			return c.Path() == "/api/v1/health"
		},
	}))

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			// Log panic with request context
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "kusanagi-api",
		},
	})
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
