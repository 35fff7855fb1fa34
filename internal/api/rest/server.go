// Package rest exposes the log extraction use cases over HTTP.
package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/notifid/logextractor/internal/infrastructure/config"
	extractionsvc "github.com/notifid/logextractor/internal/service/extraction"
)

// Server is the HTTP front of the extractor.
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	logger     *slog.Logger
}

// NewServer builds the route table and middleware chain.
func NewServer(cfg *config.Config, svc extractionsvc.Service, logger *slog.Logger) *Server {
	handler := NewHandler(svc, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/logs/persons", handler.personLogs)
	mux.HandleFunc("POST /v1/logs/notifications/info", handler.notificationBundle)
	mux.HandleFunc("POST /v1/logs/notifications/monthly", handler.monthlyExport)
	mux.HandleFunc("POST /v1/logs/processes", handler.traceLogs)
	mux.HandleFunc("POST /v1/logs/sessions", handler.sessionLogs)
	mux.HandleFunc("POST /v1/persons/person-id", handler.personID)
	mux.HandleFunc("POST /v1/persons/tax-id", handler.taxID)
	mux.HandleFunc("GET /healthz", handler.health)
	mux.Handle("GET /metrics", promhttp.Handler())

	wrapped := chain(mux,
		recoveryMiddleware(logger),
		requestIDMiddleware,
		loggingMiddleware(logger),
		rateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      wrapped,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Start serves until SIGINT/SIGTERM, then drains within the configured
// shutdown timeout.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		s.logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the assembled handler chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
