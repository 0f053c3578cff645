// Package server exposes the insights service over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/insights"
)

// Options configures a Server.
type Options struct {
	Logger *zap.Logger
	// Registry backs GET /metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
	// AllowOrigins lists CORS origins; empty allows all.
	AllowOrigins []string
}

// Server routes HTTP requests to an insights.Service.
type Server struct {
	svc      *insights.Service
	log      *zap.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	engine   *gin.Engine
}

// New builds the router.
func New(svc *insights.Service, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		svc:      svc,
		log:      log,
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zoogist",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(s.requests)

	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())
	corsCfg := cors.DefaultConfig()
	if len(opts.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = opts.AllowOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AddAllowHeaders(headerRequestID)
	corsCfg.AddExposeHeaders(headerRequestID)
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	api := r.Group("/api")
	api.GET("/schema", s.schema)
	api.GET("/demos", s.demos)
	api.GET("/filters", s.filters)
	api.GET("/map", s.mapLayer)
	api.POST("/ask", s.ask)
	api.POST("/query", s.query)
	api.POST("/chart", s.chart)
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
