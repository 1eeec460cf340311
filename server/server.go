// Package server exposes the HTTP surface: health, session status, and
// metrics. It injects correlation IDs into request contexts for consistent
// logging, the same way the rest of the service logs turns.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirisaka/aituber/orchestrator"
	"github.com/kirisaka/aituber/telemetry"
)

// StatusSource is what the handlers need from the running orchestrator.
type StatusSource interface {
	Snapshot() orchestrator.Stats
	FeedAlive() bool
}

// NewMux returns the HTTP handler with all routes.
func NewMux(src StatusSource) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		stats := src.Snapshot()
		payload := struct {
			orchestrator.Stats
			FeedAlive      bool   `json:"feed_alive"`
			UptimeSeconds  int64  `json:"uptime_seconds"`
			TracingEnabled bool   `json:"tracing_enabled"`
			Now            string `json:"now"`
		}{
			Stats:          stats,
			FeedAlive:      src.FeedAlive(),
			UptimeSeconds:  int64(time.Since(stats.StartedAt).Seconds()),
			TracingEnabled: telemetry.IsTracingEnabled(),
			Now:            time.Now().UTC().Format(time.RFC3339),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("status encode failed", slog.Any("err", err))
		}
	})

	// Correlation ID injector and tracing wrapper.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corr := r.Header.Get("X-Correlation-ID")
		if corr == "" {
			corr = uuid.New().String()
		}
		ctx := telemetry.WithCorrelation(r.Context(), corr)
		w.Header().Set("X-Correlation-ID", corr)

		ctx, span := telemetry.StartSpan(ctx, "http-server", r.Method+" "+r.URL.Path)
		defer span.End()

		telemetry.LoggerWithCorr(ctx).Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))
		mux.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Start runs the HTTP server and shuts down gracefully on context cancellation.
func Start(ctx context.Context, src StatusSource, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      NewMux(src),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", slog.Any("err", err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("http server error", slog.Any("err", err))
		return err
	}
	return nil
}
