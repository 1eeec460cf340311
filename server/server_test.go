package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirisaka/aituber/orchestrator"
	"github.com/kirisaka/aituber/telemetry"
)

func TestMain(m *testing.M) {
	telemetry.Init()
	m.Run()
}

type fakeStatus struct {
	stats orchestrator.Stats
	alive bool
}

func (f *fakeStatus) Snapshot() orchestrator.Stats { return f.stats }
func (f *fakeStatus) FeedAlive() bool              { return f.alive }

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(NewMux(&fakeStatus{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Correlation-ID") == "" {
		t.Error("missing correlation id header")
	}
}

func TestStatus(t *testing.T) {
	started := time.Now().Add(-90 * time.Second)
	src := &fakeStatus{
		stats: orchestrator.Stats{
			CommentCount: 7,
			ErrorCount:   2,
			StartedAt:    started,
		},
		alive: true,
	}
	srv := httptest.NewServer(NewMux(src))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("status request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		CommentCount   int   `json:"comment_count"`
		ErrorCount     int   `json:"error_count"`
		FeedAlive      bool  `json:"feed_alive"`
		UptimeSeconds  int64 `json:"uptime_seconds"`
		TracingEnabled bool  `json:"tracing_enabled"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if body.CommentCount != 7 || body.ErrorCount != 2 || !body.FeedAlive {
		t.Errorf("status body = %+v", body)
	}
	if body.UptimeSeconds < 89 {
		t.Errorf("uptime = %d, want around 90", body.UptimeSeconds)
	}
	if body.TracingEnabled {
		t.Error("tracing should report disabled without an exporter endpoint")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := httptest.NewServer(NewMux(&fakeStatus{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", resp.StatusCode)
	}
}

func TestCorrelationIDReused(t *testing.T) {
	srv := httptest.NewServer(NewMux(&fakeStatus{}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("X-Correlation-ID", "corr-42")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if got := resp.Header.Get("X-Correlation-ID"); got != "corr-42" {
		t.Errorf("correlation id = %q, want corr-42", got)
	}
}
