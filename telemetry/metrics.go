// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CommentsIngested prometheus.Counter
	TurnsCompleted   prometheus.Counter
	TurnsBlocked     prometheus.Counter
	SoftErrors       prometheus.Counter

	// Histograms (seconds)
	ModelDuration     prometheus.Observer
	NarrationDuration prometheus.Observer
	TurnDuration      prometheus.Observer

	// Gauges
	FeedAliveGauge prometheus.Gauge
	SeenSetGauge   prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CommentsIngested = promauto.NewCounter(prometheus.CounterOpts{Name: "aituber_comments_ingested_total", Help: "Comments that reached the response stage"})
		TurnsCompleted = promauto.NewCounter(prometheus.CounterOpts{Name: "aituber_turns_completed_total", Help: "Turns that ran through the fan-out stage"})
		TurnsBlocked = promauto.NewCounter(prometheus.CounterOpts{Name: "aituber_turns_blocked_total", Help: "Turns rejected by the input guard"})
		SoftErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "aituber_soft_errors_total", Help: "Contained downstream/feed failures"})
		ModelDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "aituber_model_duration_seconds", Help: "Model call duration seconds", Buckets: prometheus.DefBuckets})
		NarrationDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "aituber_narration_duration_seconds", Help: "Synthesis plus playback duration seconds", Buckets: prometheus.DefBuckets})
		TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "aituber_turn_duration_seconds", Help: "Full turn duration seconds", Buckets: prometheus.DefBuckets})
		FeedAliveGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "aituber_feed_alive", Help: "Chat feed attached and live=1 else 0"})
		SeenSetGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "aituber_seen_comments", Help: "Size of the comment dedup set"})
	})
}

// UpdateFeedGauge sets the feed gauge to 1 if alive else 0.
func UpdateFeedGauge(alive bool) {
	if FeedAliveGauge != nil {
		if alive {
			FeedAliveGauge.Set(1)
		} else {
			FeedAliveGauge.Set(0)
		}
	}
}

// SetSeenComments records the current dedup-set size.
func SetSeenComments(n int) {
	if SeenSetGauge != nil {
		SeenSetGauge.Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------

type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns the default logger annotated with the context's
// correlation id, if any.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if corr := GetCorrelation(ctx); corr != "" {
		return slog.Default().With(slog.String("corr", corr))
	}
	return slog.Default()
}
