package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/api"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/metrics"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
	"github.com/pageza/recipe-catalog/backend/internal/validation"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	http    *http.Server
	db      *database.DB
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option customizes a Server
type Option func(*options)

type options struct {
	limiter middleware.Limiter
}

// WithLimiter replaces the in-process rate limiter, e.g. with one backed by Redis
func WithLimiter(l middleware.Limiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

// New wires middleware, handlers and the metrics endpoint around db
func New(cfg *config.Config, db *database.DB, zl *zap.Logger, opts ...Option) *Server {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.limiter == nil {
		o.limiter = middleware.NewLocalLimiter(middleware.RateLimitConfig{
			Window: cfg.RateLimitWindow,
			Limit:  cfg.RateLimitRequests,
		})
	}

	validation.Setup()

	m := metrics.New()
	m.RegisterDB(db.SQL())

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		m.Middleware(),
		middleware.Logger(zl),
		middleware.Recovery(zl, m),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "not found"})
	})

	router.GET("/health", api.HealthCheck(db, zl))
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/openapi.yaml", api.OpenAPI)

	root := router.Group("")
	api.NewRecipeHandlerWithRateLimit(
		service.NewRecipeService(db.DB),
		zl,
		middleware.RateLimit(o.limiter, zl, m),
	).RegisterRoutes(root)
	api.NewCatalogHandler(service.NewCatalogService(db.DB), zl).RegisterRoutes(root)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		db:      db,
		logger:  zl,
		metrics: m,
	}
}

// Handler returns the root handler, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
