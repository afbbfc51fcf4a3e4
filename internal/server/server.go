// Package server exposes the generation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lessonforge/internal/config"
	"lessonforge/internal/family"
	"lessonforge/internal/generation"
	"lessonforge/internal/usage"
)

// Generator is the slice of the orchestrator the handlers consume.
type Generator interface {
	Generate(ctx context.Context, req *generation.Request) (*generation.Result, error)
}

// Server wires the HTTP surface: one generation route per content family,
// health, and metrics.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	cfg    config.ServerConfig
	log    *zap.Logger
}

// New builds the server. quota may be usage.NoopService when tracking is off.
func New(cfg config.ServerConfig, gen Generator, quota usage.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	engine.Use(cors.New(corsConfig))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "lessonforge"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &generateHandler{gen: gen, quota: quota, log: log}
	api := engine.Group("/api/v1")
	for _, fam := range family.All() {
		api.POST("/generate/"+fam.Name, h.handle(fam.Name))
	}

	return &Server{
		engine: engine,
		http:   &http.Server{Addr: cfg.Addr, Handler: engine},
		cfg:    cfg,
		log:    log,
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then drains within the configured
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.cfg.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down http server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
