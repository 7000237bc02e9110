package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"lexigraph.dev/dictionary/common/apierr"
	"lexigraph.dev/dictionary/common/id"
	"lexigraph.dev/dictionary/common/logger"
	"lexigraph.dev/dictionary/common/otel"
	"lexigraph.dev/dictionary/core/config"
	"lexigraph.dev/dictionary/core/db"
	httpmiddleware "lexigraph.dev/dictionary/internal/http/middleware"
	httprouter "lexigraph.dev/dictionary/internal/http/router"
	"lexigraph.dev/dictionary/internal/service"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	_ = godotenv.Load()
	cfg := config.Load()

	// OTel must init before logger (logger uses the OTel provider in production).
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "dictionary starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected")

	services, err := service.New(cfg, database, redisClient)
	if err != nil {
		slog.ErrorContext(ctx, "failed to construct services", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Streaming lookups can run for cfg.Stream.OverallTimeout; the
		// write deadline must outlast it or gin's ResponseWriter starts
		// erroring mid-stream.
		WriteTimeout: cfg.Stream.OverallTimeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span -> Recovery catches panics -> Logger
	// logs with trace context -> apierr renders the last pushed error.
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(httpmiddleware.Recovery())
	router.Use(httpmiddleware.Logger())
	router.Use(apierr.Middleware())

	httprouter.SetupRoutes(router, services.Handlers())

	return router
}

const banner = `
██╗     ███████╗██╗  ██╗██╗ ██████╗ ██████╗  █████╗ ██████╗ ██╗  ██╗
██║     ██╔════╝╚██╗██╔╝██║██╔════╝ ██╔══██╗██╔══██╗██╔══██╗██║  ██║
██║     █████╗   ╚███╔╝ ██║██║  ███╗██████╔╝███████║██████╔╝███████║
██║     ██╔══╝   ██╔██╗ ██║██║   ██║██╔══██╗██╔══██║██╔═══╝ ██╔══██║
███████╗███████╗██╔╝ ██╗██║╚██████╔╝██║  ██║██║  ██║██║     ██║  ██║
╚══════╝╚══════╝╚═╝  ╚═╝╚═╝ ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝     ╚═╝  ╚═╝
`
