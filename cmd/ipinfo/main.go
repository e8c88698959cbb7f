package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TomasB/ipinfo/internal/clientip"
	"github.com/TomasB/ipinfo/internal/config"
	"github.com/TomasB/ipinfo/internal/geo"
	grpchealth "github.com/TomasB/ipinfo/internal/handler/grpc"
	"github.com/TomasB/ipinfo/internal/handler/health"
	"github.com/TomasB/ipinfo/internal/handler/info"
	"github.com/TomasB/ipinfo/internal/metrics"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logLevel := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("service starting", "log_level", logLevel.String(), "geo_provider", cfg.GeoProvider)

	// Set Gin mode based on log level
	if logLevel == slog.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, readyFn, err := newProvider(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize geo provider", "provider", cfg.GeoProvider, "error", err)
		os.Exit(1)
	}
	locator := geo.NewService(provider)
	defer locator.Close()

	router := newRouter(cfg, logger, locator, readyFn)

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("service started", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	var grpcSrv *grpchealth.HealthServer
	if addr := cfg.GRPCAddr(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			slog.Error("failed to listen for gRPC", "addr", addr, "error", err)
			os.Exit(1)
		}
		grpcSrv = grpchealth.NewHealthServer()
		go func() {
			slog.Info("gRPC health started", "addr", addr)
			if err := grpcSrv.Serve(lis); err != nil {
				slog.Error("gRPC server failed", "error", err)
			}
		}()
	}

	// Wait for interrupt signal for graceful shutdown
	<-ctx.Done()

	slog.Info("service shutting down")

	if grpcSrv != nil {
		grpcSrv.Stop()
	}

	// Graceful shutdown with 30s timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("service stopped")
}

// newProvider builds the configured geolocation provider and its readiness probe.
func newProvider(ctx context.Context, cfg config.Config) (geo.Provider, func() error, error) {
	switch cfg.GeoProvider {
	case config.ProviderMMDB:
		m, err := geo.NewMMDB(cfg.MMDBPath, cfg.MMDBASNPath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("MMDB loaded", "path", cfg.MMDBPath, "asn_path", cfg.MMDBASNPath)
		if cfg.MMDBWatch {
			if err := geo.Watch(ctx, m); err != nil {
				m.Close()
				return nil, nil, err
			}
		}
		return m, m.Ready, nil
	default:
		return geo.NewIPAPI(cfg.GeoAPIURL, cfg.GeoTimeout), nil, nil
	}
}

// newRouter wires middleware and routes onto a new gin engine.
func newRouter(cfg config.Config, logger *slog.Logger, locator info.Locator, readyFn func() error) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(ginLogger(logger))
	router.Use(gin.Recovery())
	if cfg.MetricsEnabled {
		router.Use(metrics.Middleware())
	}

	router.SetHTMLTemplate(info.Templates())

	// Register health endpoints
	healthHandler := health.NewHandler(cfg.GeoProvider, readyFn)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	infoHandler := info.NewHandler(locator)
	router.GET("/", infoHandler.Show)

	return router
}

// ginLogger creates a Gin middleware that logs using slog
func ginLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// Process request
		c.Next()

		// Log request
		duration := time.Since(start)
		statusCode := c.Writer.Status()

		attrs := []any{
			"method", method,
			"path", path,
			"status", statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientip.Resolve(c.Request.Header, c.Request.RemoteAddr),
		}

		if len(c.Errors) > 0 {
			logger.Error("request completed with errors", append(attrs, "errors", c.Errors.String())...)
		} else if statusCode >= 500 {
			logger.Error("request completed", attrs...)
		} else if statusCode >= 400 {
			logger.Warn("request completed", attrs...)
		} else {
			logger.Info("request completed", attrs...)
		}
	}
}
