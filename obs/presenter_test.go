package obs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

type fakeSetter struct {
	writes map[string]string
	order  []string
	err    error
}

func newFakeSetter() *fakeSetter { return &fakeSetter{writes: map[string]string{}} }

func (f *fakeSetter) SetText(ctx context.Context, name, text string) error {
	f.writes[name] = text
	f.order = append(f.order, name)
	return f.err
}

func presenterWith(ts textSetter) *Presenter {
	return &Presenter{ts: ts, answerSource: "Answer", questionSource: "Question"}
}

func TestPresentAnswerOnly(t *testing.T) {
	ts := newFakeSetter()
	p := presenterWith(ts)
	if !p.Present(context.Background(), "the reply") {
		t.Error("Present should succeed")
	}
	if ts.writes["Answer"] != "the reply" {
		t.Errorf("answer surface = %q", ts.writes["Answer"])
	}
	if _, touched := ts.writes["Question"]; touched {
		t.Error("question surface must not be touched without question text")
	}
}

func TestPresentWithQuestion(t *testing.T) {
	ts := newFakeSetter()
	p := presenterWith(ts)
	if !p.Present(context.Background(), "the reply", "Alice: hello") {
		t.Error("Present should succeed")
	}
	if ts.writes["Question"] != "Alice: hello" {
		t.Errorf("question surface = %q", ts.writes["Question"])
	}
}

func TestPresentTransportFailure(t *testing.T) {
	ts := newFakeSetter()
	ts.err = errors.New("socket closed")
	p := presenterWith(ts)
	if p.Present(context.Background(), "reply") {
		t.Error("Present should report failure on transport error")
	}
}

func TestPresentDegraded(t *testing.T) {
	p := NewPresenter(nil, "Answer", "Question")
	if p.Connected() {
		t.Error("nil client should not report connected")
	}
	if p.Present(context.Background(), "reply") {
		t.Error("degraded Present should return false")
	}
	if p.Clear(context.Background()) {
		t.Error("degraded Clear should return false")
	}
}

func TestClear(t *testing.T) {
	ts := newFakeSetter()
	p := presenterWith(ts)
	if !p.Clear(context.Background()) {
		t.Error("Clear should succeed")
	}
	if ts.writes["Answer"] != "" || ts.writes["Question"] != "" {
		t.Errorf("Clear should blank both surfaces, got %v", ts.writes)
	}
	if len(ts.order) != 2 {
		t.Errorf("Clear should write both surfaces, wrote %v", ts.order)
	}
}

func TestTruncate(t *testing.T) {
	short := "short text"
	if Truncate(short) != short {
		t.Error("short text should pass through unchanged")
	}

	long := strings.Repeat("あ", MaxOverlayText+50)
	got := Truncate(long)
	if utf8.RuneCountInString(got) != MaxOverlayText {
		t.Errorf("truncated length = %d runes, want %d", utf8.RuneCountInString(got), MaxOverlayText)
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("truncated text should end with ellipsis")
	}

	exact := strings.Repeat("x", MaxOverlayText)
	if Truncate(exact) != exact {
		t.Error("text at the cap should pass through unchanged")
	}
}

func TestAuthResponseDeterminism(t *testing.T) {
	// fixed inputs must always produce the same token; the handshake depends on it
	a := authResponse("pw", "salt", "challenge")
	b := authResponse("pw", "salt", "challenge")
	if a == "" || a != b {
		t.Errorf("authResponse not deterministic: %q vs %q", a, b)
	}
	if authResponse("other", "salt", "challenge") == a {
		t.Error("different password should change the auth token")
	}
}
