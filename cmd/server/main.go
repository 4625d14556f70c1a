package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/pomegranateis/webfinalserver/internal/auth"
	"github.com/pomegranateis/webfinalserver/internal/cache"
	"github.com/pomegranateis/webfinalserver/internal/config"
	"github.com/pomegranateis/webfinalserver/internal/database"
	"github.com/pomegranateis/webfinalserver/internal/handlers"
	"github.com/pomegranateis/webfinalserver/internal/logger"
	"github.com/pomegranateis/webfinalserver/internal/metrics"
	"github.com/pomegranateis/webfinalserver/internal/middleware"
	"github.com/pomegranateis/webfinalserver/internal/repository"
	"github.com/pomegranateis/webfinalserver/internal/telemetry"
	"github.com/pomegranateis/webfinalserver/internal/util"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Initialize(cfg); err != nil {
		logger.FatalWithFields("Failed to connect to database", err)
	}
	defer database.Close()

	if err := database.Migrate(database.DB); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	// Redis is optional: rate limiting falls back to per-process buckets
	if cfg.RedisEnabled() {
		if _, err := cache.NewRedisClient(cfg.Redis); err != nil {
			logger.WarnWithFields("Redis unavailable, using in-memory rate limiting", err)
		}
	}
	defer cache.GetRedisClient().Close()

	tp, err := telemetry.InitTracer(cfg.Telemetry, cfg.Environment)
	if err != nil {
		logger.WarnWithFields("Failed to initialize tracing", err)
	}

	metrics.Initialize()

	r, stopLimiter := newRouter(cfg, database.DB, cache.GetRedisClient(), tp != nil)
	defer stopLimiter()

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("Server starting",
			zap.String("port", cfg.HTTP.Port),
			zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}

	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			logger.WarnWithFields("Tracer shutdown", err)
		}
	}

	logger.Log.Info("Server exited")
}

// newRouter assembles the middleware stack and mounts every API route.
// The returned func releases the rate limiter's background resources.
func newRouter(cfg *config.Config, db *gorm.DB, redisClient *cache.RedisClient, tracing bool) (*gin.Engine, func()) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(metrics.Get()))
	if tracing {
		r.Use(middleware.TracingMiddleware(cfg.Telemetry.ServiceName)...)
	}
	r.Use(cors.New(corsConfig(cfg.HTTP.AllowedOrigins)))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	authService := auth.NewService(repository.NewUserRepository(db), hasher, tokens)

	h := handlers.NewHandlers(db, authService)
	h.SetServiceName(cfg.Telemetry.ServiceName)

	limitConfig := middleware.RateLimitConfig{
		Limit:  cfg.Auth.RateLimit,
		Window: cfg.Auth.RateLimitWindow,
	}
	limiter := middleware.NewSmartLimiter(redisClient, "auth", limitConfig)

	handlers.RegisterRoutes(r, h.Routes(), handlers.RouteOptions{
		Verifier:    tokens,
		AuthLimiter: limiter,
		RateLimit:   limitConfig,
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		util.RespondNotFound(c, "route")
	})

	stop := func() {}
	if s, ok := limiter.(interface{ Stop() }); ok {
		stop = s.Stop
	}
	return r, stop
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.ExposeHeaders = []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}

	for _, origin := range origins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}
