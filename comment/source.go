package comment

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Feed is the transport to a live-chat provider.
//
// Fetch returns the raw records that arrived since the previous call, in
// arrival order. IsAlive reports whether the broadcast is still running.
// Close releases the provider connection and must be safe to call once the
// feed is dead.
type Feed interface {
	IsAlive() bool
	Fetch(ctx context.Context) ([]Raw, error)
	Close() error
}

// Source yields each new comment at most once, tolerating feed outages.
// It is driven from a single goroutine; the seen-set has no lock because the
// orchestrator is its only caller.
type Source struct {
	feed    Feed
	timeout time.Duration

	seen      map[string]struct{}
	errs      int
	closeOnce sync.Once
}

// NewSource wraps feed with dedup and latest-wins polling. A nil feed is
// valid and produces a Source whose Poll always returns nil (keyboard-only
// operation). timeout bounds each Fetch; zero selects 3s.
func NewSource(feed Feed, timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Source{feed: feed, timeout: timeout, seen: make(map[string]struct{})}
}

// Poll fetches a batch from the feed and returns the most recent unseen
// comment, or nil when there is no feed, the broadcast has ended, the fetch
// timed out or failed, or everything has been seen already.
//
// All unseen ids from the batch are recorded even though only the latest is
// returned: older comments from a burst are dropped, not queued, so a backlog
// can never build up. Errors never escape; they are logged as soft failures
// and counted.
func (s *Source) Poll(ctx context.Context) *Comment {
	if s == nil || s.feed == nil {
		return nil
	}
	if !s.feed.IsAlive() {
		slog.Debug("comment source: broadcast not live")
		return nil
	}

	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	batch, err := s.feed.Fetch(fctx)
	if err != nil {
		s.errs++
		slog.Warn("comment source: fetch failed", slog.Any("err", err), slog.Int("error_count", s.errs))
		return nil
	}

	now := time.Now()
	var latest Raw
	var have bool
	for _, raw := range batch {
		id := ExtractID(raw, now)
		if _, dup := s.seen[id]; dup {
			continue
		}
		s.seen[id] = struct{}{}
		latest = raw
		have = true
	}
	if !have {
		return nil
	}

	c, ok := Normalize(latest, now)
	if !ok {
		s.errs++
		slog.Warn("comment source: unparseable latest record", slog.Int("error_count", s.errs))
		return nil
	}
	slog.Info("comment source: new comment",
		slog.String("id", c.ID),
		slog.String("author", c.Author.Name),
		slog.Int("seen", len(s.seen)))
	return &c
}

// Alive reports whether a feed is attached and its broadcast still running.
func (s *Source) Alive() bool {
	return s != nil && s.feed != nil && s.feed.IsAlive()
}

// Attached reports whether the source wraps a feed at all, live or not.
func (s *Source) Attached() bool {
	return s != nil && s.feed != nil
}

// SeenCount returns the size of the seen-set (monitoring only).
func (s *Source) SeenCount() int {
	if s == nil {
		return 0
	}
	return len(s.seen)
}

// ErrorCount returns the number of soft fetch/parse failures so far.
func (s *Source) ErrorCount() int {
	if s == nil {
		return 0
	}
	return s.errs
}

// Close releases the underlying feed. It runs at most once and is safe on
// every exit path, including cancellation mid-poll.
func (s *Source) Close() error {
	if s == nil || s.feed == nil {
		return nil
	}
	var err error
	s.closeOnce.Do(func() {
		err = s.feed.Close()
		slog.Info("comment source: closed", slog.Int("seen", len(s.seen)), slog.Int("errors", s.errs))
	})
	return err
}
