// Package http serves the classifier API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"newsclf/inference"
	"newsclf/monitoring"
)

type ServerConfig struct {
	Addr           string
	Timeout        time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:    ":8000",
		Timeout: 30 * time.Second,
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://frontend:3000",
		},
		MaxBodyBytes: 1 << 20,
	}
}

type Server struct {
	server  *http.Server
	hub     *EventHub
	metrics *monitoring.Metrics
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewServer(config ServerConfig, svc *inference.Service, log *zap.Logger) *Server {
	log = log.Named("http")
	hub := NewEventHub(config.AllowedOrigins, log)
	metrics := monitoring.NewMetrics()
	metrics.SetBundle(svc.Health())
	svc.Subscribe(hub.Publish)
	svc.Subscribe(metrics.ObserveEvent)
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		server: &http.Server{
			Addr:         config.Addr,
			Handler:      NewHandler(config, svc, hub, metrics, log),
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		hub:     hub,
		metrics: metrics,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// NewHandler builds the routed, middleware-wrapped handler. metrics may be nil.
func NewHandler(config ServerConfig, svc *inference.Service, hub *EventHub, metrics *monitoring.Metrics, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	NewHandlers(svc, metrics, log).Register(mux)
	mux.Handle("GET /ws/events", hub)

	chain := Chain(
		RecoveryMiddleware(log),
		RequestIDMiddleware,
		LoggerMiddleware(log),
		SecurityHeadersMiddleware,
		CORSMiddleware(config.AllowedOrigins),
		RequestSizeMiddleware(config.MaxBodyBytes),
		MetricsMiddleware(metrics),
	)
	return chain(mux)
}

// Start blocks serving until Stop is called.
func (s *Server) Start() error {
	go s.hub.Run(s.ctx)

	s.log.Info("Starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	s.cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) Addr() string {
	return s.server.Addr
}
