package comment

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeFeed scripts successive Fetch results.
type fakeFeed struct {
	batches [][]Raw
	errs    []error
	calls   int
	alive   bool
	closed  int
}

func (f *fakeFeed) IsAlive() bool { return f.alive }

func (f *fakeFeed) Fetch(ctx context.Context) ([]Raw, error) {
	i := f.calls
	f.calls++
	var batch []Raw
	var err error
	if i < len(f.batches) {
		batch = f.batches[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return batch, err
}

func (f *fakeFeed) Close() error { f.closed++; return nil }

func TestPollNoFeed(t *testing.T) {
	s := NewSource(nil, time.Second)
	if c := s.Poll(context.Background()); c != nil {
		t.Errorf("expected nil from feedless source, got %+v", c)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close on feedless source: %v", err)
	}
}

func TestAttached(t *testing.T) {
	if NewSource(nil, time.Second).Attached() {
		t.Error("feedless source must not report attached")
	}
	s := NewSource(&fakeFeed{alive: false}, time.Second)
	if !s.Attached() {
		t.Error("source with a feed reports attached even when the broadcast is down")
	}
	if s.Alive() {
		t.Error("dead broadcast must not report alive")
	}
}

func TestPollDeadBroadcast(t *testing.T) {
	feed := &fakeFeed{alive: false, batches: [][]Raw{{Record{ID: "a", Message: "m"}}}}
	s := NewSource(feed, time.Second)
	if c := s.Poll(context.Background()); c != nil {
		t.Errorf("expected nil for dead broadcast, got %+v", c)
	}
	if feed.calls != 0 {
		t.Error("dead broadcast must not be fetched")
	}
}

func TestPollDedup(t *testing.T) {
	same := Record{ID: "c1", Message: "hello", Author: "Alice"}
	feed := &fakeFeed{alive: true, batches: [][]Raw{{same}, {same}}}
	s := NewSource(feed, time.Second)

	first := s.Poll(context.Background())
	if first == nil || first.ID != "c1" {
		t.Fatalf("first poll = %+v, want c1", first)
	}
	if second := s.Poll(context.Background()); second != nil {
		t.Errorf("second poll of identical record = %+v, want nil", second)
	}
}

func TestPollLatestWins(t *testing.T) {
	burst := []Raw{
		Record{ID: "c1", Message: "first", Author: "A"},
		Record{ID: "c2", Message: "second", Author: "B"},
		Record{ID: "c3", Message: "third", Author: "C"},
	}
	feed := &fakeFeed{alive: true, batches: [][]Raw{burst, nil, nil}}
	s := NewSource(feed, time.Second)

	got := s.Poll(context.Background())
	if got == nil || got.ID != "c3" {
		t.Fatalf("burst poll = %+v, want the most recent (c3)", got)
	}
	// the skipped two must never surface later
	for i := 0; i < 2; i++ {
		if c := s.Poll(context.Background()); c != nil {
			t.Errorf("poll %d after burst = %+v, want nil", i, c)
		}
	}
	if s.SeenCount() != 3 {
		t.Errorf("SeenCount = %d, want 3 (dropped ids still recorded)", s.SeenCount())
	}
}

func TestPollSoftError(t *testing.T) {
	feed := &fakeFeed{
		alive:   true,
		batches: [][]Raw{nil, {Record{ID: "c9", Message: "after outage"}}},
		errs:    []error{errors.New("transport down"), nil},
	}
	s := NewSource(feed, time.Second)

	if c := s.Poll(context.Background()); c != nil {
		t.Errorf("error poll = %+v, want nil", c)
	}
	if s.ErrorCount() != 1 {
		t.Errorf("ErrorCount = %d, want 1", s.ErrorCount())
	}
	// the source must keep working after a soft failure
	if c := s.Poll(context.Background()); c == nil || c.ID != "c9" {
		t.Errorf("post-outage poll = %+v, want c9", c)
	}
}

func TestPollUnparseableLatest(t *testing.T) {
	feed := &fakeFeed{alive: true, batches: [][]Raw{{Record{ID: "bad", Message: "   "}}}}
	s := NewSource(feed, time.Second)
	if c := s.Poll(context.Background()); c != nil {
		t.Errorf("unparseable record = %+v, want nil", c)
	}
	if s.ErrorCount() != 1 {
		t.Errorf("ErrorCount = %d, want 1", s.ErrorCount())
	}
}

func TestCloseOnce(t *testing.T) {
	feed := &fakeFeed{alive: true}
	s := NewSource(feed, time.Second)
	_ = s.Close()
	_ = s.Close()
	if feed.closed != 1 {
		t.Errorf("feed closed %d times, want exactly once", feed.closed)
	}
}
