package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Osomudeya/retoucher-demo/internal/application"
	"github.com/Osomudeya/retoucher-demo/internal/infrastructure/config"
	"github.com/Osomudeya/retoucher-demo/internal/infrastructure/http/handler"
	"github.com/Osomudeya/retoucher-demo/internal/infrastructure/http/middleware"
	"github.com/Osomudeya/retoucher-demo/internal/infrastructure/observability"
	"github.com/Osomudeya/retoucher-demo/internal/infrastructure/postgres"
	"github.com/Osomudeya/retoucher-demo/internal/infrastructure/ratelimit"
	"github.com/Osomudeya/retoucher-demo/internal/infrastructure/redis"
)

// Server owns every shared resource for the process lifetime: the
// connection pool, the metrics registry and the optional redis client. They
// are constructed once here and injected into handlers, never reached
// through package globals.
type Server struct {
	router     *gin.Engine
	config     *config.Config
	httpServer *http.Server

	pool        *postgres.Pool
	metrics     *observability.AppMetrics
	visitors    *application.VisitorService
	health      *application.HealthService
	contacts    *postgres.ContactStore
	redisClient *redis.Client
	rateLimiter ratelimit.RateLimiter
}

func NewServer(cfg *config.Config) (*Server, error) {
	pool, err := postgres.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	metrics := observability.NewAppMetrics()

	visitorStore := postgres.NewVisitorStore(pool)
	contactStore := postgres.NewContactStore(pool)

	// A down database at boot is not fatal: the process starts, reports
	// not-ready, and degrades per request until the store comes back.
	initCtx, cancel := context.WithTimeout(context.Background(), cfg.DBConnectTimeout)
	defer cancel()
	if err := visitorStore.Init(initCtx); err != nil {
		slog.Warn("visitor store initialization failed", "error", err)
	}
	if err := contactStore.Init(initCtx); err != nil {
		slog.Warn("contact store initialization failed", "error", err)
	}

	s := &Server{
		config:   cfg,
		pool:     pool,
		metrics:  metrics,
		visitors: application.NewVisitorService(visitorStore, metrics.VisitorCount),
		health:   application.NewHealthService(pool, cfg.MemoryThreshold),
		contacts: contactStore,
	}

	if cfg.RateLimitEnabled {
		if cfg.RedisURL != "" {
			s.redisClient, err = redis.NewClient(context.Background(), cfg.RedisURL)
			if err != nil {
				return nil, fmt.Errorf("failed to create redis client: %w", err)
			}
			s.rateLimiter = ratelimit.NewLimiter(s.redisClient.Client)
			slog.Info("rate limiting enabled with Redis")
		} else {
			s.rateLimiter = ratelimit.NewInMemoryLimiter()
			slog.Warn("rate limiting enabled with in-memory limiter (not recommended for production)")
		}
	}

	s.setupRouter()
	return s, nil
}

func (s *Server) setupRouter() {
	if s.config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	s.router = gin.New()
	// Metrics wraps Recovery so a recovered panic is counted as a finished
	// 500 rather than lost in the unwind.
	s.router.Use(middleware.Metrics(s.metrics))
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: s.config.CORSAllowedMethods,
		AllowedHeaders: s.config.CORSAllowedHeaders,
	}))

	s.router.GET("/", handler.Root(s.config.Version))
	s.router.NoRoute(handler.NotFound())

	healthHandler := handler.NewHealthHandler(s.health, s.config.Version)
	s.router.GET("/health", healthHandler.Basic)
	s.router.GET("/health/detailed", healthHandler.Detailed)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	metricsHandler := handler.NewMetricsHandler(s.metrics.Registry)
	s.router.GET("/metrics", metricsHandler.Exposition)
	s.router.GET("/metrics/health", metricsHandler.JSON)

	api := s.router.Group("/api")
	if s.rateLimiter != nil {
		api.Use(middleware.RateLimit(s.rateLimiter, s.config.RateLimitIPRPM))
	}

	visitorHandler := handler.NewVisitorHandler(s.visitors, s.config.AdminKey)
	api.GET("/visitors", visitorHandler.Get)
	api.POST("/visitors", visitorHandler.Increment)
	api.GET("/visitors/stats", visitorHandler.Stats)
	api.DELETE("/visitors", visitorHandler.Reset)

	api.POST("/contact", handler.NewContactHandler(s.contacts).Submit)
}

// Router exposes the handler chain for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	var active int64
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ConnState: func(_ net.Conn, state http.ConnState) {
			switch state {
			case http.StateNew:
				s.metrics.ActiveConnections.Set(float64(atomic.AddInt64(&active, 1)))
			case http.StateClosed, http.StateHijacked:
				s.metrics.ActiveConnections.Set(float64(atomic.AddInt64(&active, -1)))
			}
		},
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			return err
		}
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	return s.pool.Close()
}
