package obs

import (
	"context"
	"log/slog"
	"unicode/utf8"
)

// MaxOverlayText caps the characters written to a single overlay surface.
const MaxOverlayText = 1000

// textSetter is the slice of Client the presenter needs; tests swap in fakes.
type textSetter interface {
	SetText(ctx context.Context, inputName, text string) error
}

// Presenter mirrors question/answer text onto the broadcast overlay.
// A nil client (startup connection failure) degrades every call to a logged
// no-op returning false.
type Presenter struct {
	ts             textSetter
	answerSource   string
	questionSource string
}

// NewPresenter targets the given answer/question text sources. client may be
// nil when the overlay is unreachable.
func NewPresenter(client *Client, answerSource, questionSource string) *Presenter {
	p := &Presenter{answerSource: answerSource, questionSource: questionSource}
	if client != nil {
		p.ts = client
	}
	return p
}

// Connected reports whether overlay updates can reach OBS.
func (p *Presenter) Connected() bool { return p != nil && p.ts != nil }

// Present writes the answer surface, and the question surface when question
// text is supplied. Text beyond MaxOverlayText runes is truncated with an
// ellipsis. Returns false on any transport failure or when degraded.
func (p *Presenter) Present(ctx context.Context, answer string, question ...string) bool {
	if !p.Connected() {
		slog.Debug("overlay: not connected; skipping update")
		return false
	}
	ok := true
	if err := p.ts.SetText(ctx, p.answerSource, Truncate(answer)); err != nil {
		slog.Error("overlay: answer update failed", slog.Any("err", err))
		ok = false
	}
	if len(question) > 0 {
		if err := p.ts.SetText(ctx, p.questionSource, Truncate(question[0])); err != nil {
			slog.Error("overlay: question update failed", slog.Any("err", err))
			ok = false
		}
	}
	return ok
}

// Clear empties both overlay surfaces.
func (p *Presenter) Clear(ctx context.Context) bool {
	if !p.Connected() {
		return false
	}
	ok := true
	for _, src := range []string{p.answerSource, p.questionSource} {
		if err := p.ts.SetText(ctx, src, ""); err != nil {
			slog.Error("overlay: clear failed", slog.String("source", src), slog.Any("err", err))
			ok = false
		}
	}
	return ok
}

// Truncate caps s at MaxOverlayText runes, marking the cut with an ellipsis.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxOverlayText {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxOverlayText-1]) + "…"
}
