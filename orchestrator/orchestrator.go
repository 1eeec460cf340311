// Package orchestrator runs the co-host's main loop: pull one input (chat
// comment or operator line), classify it, obtain a response, and fan the
// response out to narration and the overlay. One turn is in flight at a time.
//
// The orchestrator is the sole authority for failure containment: no error
// from a downstream collaborator escapes a turn. A turn degrades, the loop
// continues; only the exit keyword, context cancellation, or exhausted
// operator input with no feed attached ends it.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirisaka/aituber/comment"
	"github.com/kirisaka/aituber/engine"
	"github.com/kirisaka/aituber/guard"
	"github.com/kirisaka/aituber/telemetry"
)

// Fixed response texts, spoken and displayed verbatim.
const (
	RefusalText = "そのような指示は受け付けられません。私は霧坂ルカとして対話を行います。"
	GoodbyeText = "対話セッションを終了します。またお会いしましょう。"
	ApologyText = "申し訳ありません。システムエラーが発生しました。"
)

// Narrator is the speech output channel. Ready distinguishes a channel that
// was never configured from one that is failing.
type Narrator interface {
	Speak(ctx context.Context, text string) bool
	Ready() bool
}

// Presenter is the overlay output channel. Connected distinguishes a channel
// that was never configured from one that is failing.
type Presenter interface {
	Present(ctx context.Context, answer string, question ...string) bool
	Clear(ctx context.Context) bool
	Connected() bool
}

// Stats is the per-session bookkeeping, owned by one Orchestrator and reset
// only at construction. Never global: independent orchestrators keep
// independent stats.
type Stats struct {
	CommentCount    int       `json:"comment_count"`
	LastCommentTime time.Time `json:"last_comment_time"`
	ErrorCount      int       `json:"error_count"`
	StartedAt       time.Time `json:"started_at"`
}

// Options configures an Orchestrator.
type Options struct {
	ExitKeyword  string        // defaults to 終了
	PollInterval time.Duration // idle cadence between turns, defaults to 2s
}

// Orchestrator drives the turn state machine.
type Orchestrator struct {
	source    *comment.Source
	guard     *guard.Guard
	engine    engine.Engine
	narrator  Narrator
	presenter Presenter
	input     InputReader
	opts      Options

	// inputDone is set once the operator reader is exhausted while a feed is
	// attached; only the loop goroutine touches it.
	inputDone bool

	mu    sync.Mutex // guards stats against concurrent /status reads
	stats Stats
}

// New wires the orchestrator. source may wrap a nil feed (keyboard-only) and
// narrator/presenter may be degraded facades; engine, guard, and input are
// required.
func New(source *comment.Source, g *guard.Guard, eng engine.Engine, narrator Narrator, presenter Presenter, input InputReader, opts Options) *Orchestrator {
	if opts.ExitKeyword == "" {
		opts.ExitKeyword = "終了"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	return &Orchestrator{
		source:    source,
		guard:     g,
		engine:    eng,
		narrator:  narrator,
		presenter: presenter,
		input:     input,
		opts:      opts,
		stats:     Stats{StartedAt: time.Now()},
	}
}

// Snapshot returns a copy of the session stats. Safe for concurrent use.
func (o *Orchestrator) Snapshot() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

// FeedAlive reports whether a chat feed is attached and its broadcast live.
func (o *Orchestrator) FeedAlive() bool { return o.source.Alive() }

// Run executes turns until the exit keyword, cancellation, or operator EOF
// in keyboard-only mode.
// After every turn (including skipped and degraded ones) it idles for the
// poll interval to bound the request rate against the chat feed.
func (o *Orchestrator) Run(ctx context.Context) error {
	slog.Info("orchestrator: loop started", slog.String("exit_keyword", o.opts.ExitKeyword))
	defer func() {
		s := o.Snapshot()
		slog.Info("orchestrator: session ended",
			slog.Int("comment_count", s.CommentCount),
			slog.Int("error_count", s.ErrorCount),
			slog.Duration("uptime", time.Since(s.StartedAt)))
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if !o.RunTurn(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(o.opts.PollInterval):
		}
	}
}

// RunTurn executes one turn and reports whether the loop should continue.
// Downstream failures degrade the turn but still return true; only the exit
// keyword, cancellation, or exhausted operator input without a feed
// return false.
func (o *Orchestrator) RunTurn(ctx context.Context) bool {
	ctx = telemetry.WithCorrelation(ctx, uuid.New().String())
	ctx, span := telemetry.StartSpan(ctx, "orchestrator", "turn")
	defer span.End()
	start := time.Now()

	// AwaitingInput: the feed first, the operator as fallback.
	var input, author string
	isComment := false
	if c := o.source.Poll(ctx); c != nil {
		input, author, isComment = c.Message, c.Author.Name, true
		telemetry.UpdateFeedGauge(true)
		telemetry.SetSeenComments(o.source.SeenCount())
	} else {
		telemetry.UpdateFeedGauge(o.source.Alive())
		if o.inputDone {
			return true
		}
		line, err := o.input.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false
			}
			if errors.Is(err, io.EOF) {
				// Closed stdin only ends the session when there is nothing
				// else to listen to; with a feed attached the loop keeps
				// polling it (headless operation).
				if o.source.Attached() {
					slog.Info("orchestrator: operator input closed; continuing on the chat feed")
					o.inputDone = true
					return true
				}
				slog.Info("orchestrator: operator input closed")
				return false
			}
			slog.Warn("orchestrator: input read failed", slog.Any("err", err))
			return true
		}
		input = line
	}

	log := telemetry.LoggerWithCorr(ctx)

	// Terminating: the exit keyword wins over everything else.
	if strings.EqualFold(strings.TrimSpace(input), o.opts.ExitKeyword) {
		log.Info("orchestrator: exit keyword received")
		o.narrator.Speak(ctx, GoodbyeText)
		o.presenter.Clear(ctx)
		telemetry.SetSpanSuccess(span)
		return false
	}

	// Whitespace-only input is not a turn.
	if strings.TrimSpace(input) == "" {
		return true
	}

	log.Info("orchestrator: processing input",
		slog.Bool("is_comment", isComment),
		slog.String("author", author))

	// Classifying.
	if o.guard.Classify(input) == guard.Blocked {
		log.Warn("orchestrator: input blocked by guard")
		telemetry.TurnsBlocked.Inc()
		o.present(ctx, RefusalText, input, author, isComment)
		o.narrator.Speak(ctx, RefusalText)
		telemetry.SetSpanSuccess(span)
		return true
	}

	// Responding.
	if isComment {
		o.mu.Lock()
		o.stats.CommentCount++
		o.stats.LastCommentTime = time.Now()
		o.mu.Unlock()
		telemetry.CommentsIngested.Inc()
	}
	prompt := input
	if isComment {
		prompt = fmt.Sprintf("観測対象さん「%s」からのコメント: %s", author, input)
	}

	var response string
	var sendErr error
	telemetry.TimeFunc(telemetry.ModelDuration, func() {
		response, sendErr = o.engine.Send(ctx, prompt)
	})
	if sendErr != nil {
		log.Error("orchestrator: model call failed", slog.Any("err", sendErr))
		o.recordError()
		telemetry.RecordError(span, sendErr)
		// Degrade: best-effort apology on the overlay, no narration, no retry.
		o.presenter.Present(ctx, ApologyText)
		return true
	}
	log.Info("orchestrator: response ready", slog.Int("length", len(response)))

	// Presenting: overlay then narration; each failure is independent. An
	// unconfigured channel is normal operation, not an error.
	if !o.present(ctx, response, input, author, isComment) && o.presenter.Connected() {
		o.recordError()
	}
	narrated := false
	telemetry.TimeFunc(telemetry.NarrationDuration, func() {
		narrated = o.narrator.Speak(ctx, response)
	})
	if !narrated && o.narrator.Ready() {
		o.recordError()
	}

	telemetry.TurnsCompleted.Inc()
	telemetry.TurnDuration.Observe(time.Since(start).Seconds())
	telemetry.SetSpanSuccess(span)
	return true
}

// present updates the answer surface, plus the question surface for
// comment-sourced turns.
func (o *Orchestrator) present(ctx context.Context, answer, input, author string, isComment bool) bool {
	if isComment {
		return o.presenter.Present(ctx, answer, fmt.Sprintf("%s: %s", author, input))
	}
	return o.presenter.Present(ctx, answer)
}

func (o *Orchestrator) recordError() {
	o.mu.Lock()
	o.stats.ErrorCount++
	o.mu.Unlock()
	telemetry.SoftErrors.Inc()
}
