// Package server exposes a finished run over HTTP: metric tables as JSON
// or CSV, the rendered charts, run history from the store and the
// Prometheus gauges.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"retaildash/database"
	"retaildash/export"
	"retaildash/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server holds the read-only results of a run. Store and Metrics are
// optional; their routes answer 404 when unset.
type Server struct {
	AsOf      string
	Tables    []export.Table
	ChartsDir string
	Store     *database.Store
	Metrics   *metrics.Recorder
	BOM       bool
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", healthHandler)
	r.Route("/api", func(r chi.Router) {
		r.Get("/metrics", s.listTablesHandler)
		r.Get("/metrics/{table}", s.tableHandler)
		r.Get("/runs", s.runsHandler)
		r.Get("/history/kpis", s.kpiHistoryHandler)
		r.Get("/history/gyms/{gymID}", s.gymHistoryHandler)
		r.Get("/history/vendors/{vendorID}", s.vendorHistoryHandler)
	})
	if s.ChartsDir != "" {
		r.Handle("/charts/*", http.StripPrefix("/charts/", http.FileServer(http.Dir(s.ChartsDir))))
	}
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		zap.L().Info("server stopped")
		return nil
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
