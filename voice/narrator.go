package voice

import (
	"context"
	"log/slog"
)

// SpeechSynthesizer renders text into a playable clip.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (*Audio, error)
}

// AudioPlayer plays a clip to completion.
type AudioPlayer interface {
	Play(ctx context.Context, a *Audio) error
}

// Narrator is the narration facade: synthesize then play, never panic, never
// propagate. Speak reports success so the caller can count soft failures, and
// the caller is expected to continue either way.
type Narrator struct {
	synth  SpeechSynthesizer
	player AudioPlayer
}

// NewNarrator wires a synthesizer and a player. Either may be nil; a nil
// collaborator degrades Speak to a logged failure instead of an abort.
func NewNarrator(synth SpeechSynthesizer, player AudioPlayer) *Narrator {
	return &Narrator{synth: synth, player: player}
}

// Ready reports whether narration has both a synthesizer and an output
// device wired.
func (n *Narrator) Ready() bool {
	return n != nil && n.synth != nil && n.player != nil
}

// Speak synthesizes text and plays it to completion before returning.
// No length limit is applied here; the synthesis engine owns any truncation.
// Without a synthesizer and an output device the line is dropped before any
// synthesis call is made.
func (n *Narrator) Speak(ctx context.Context, text string) bool {
	if !n.Ready() {
		slog.Debug("narration: not configured; dropping line")
		return false
	}
	audio, err := n.synth.Synthesize(ctx, text)
	if err != nil {
		slog.Error("narration: synthesis failed", slog.Any("err", err))
		return false
	}
	if audio == nil {
		slog.Error("narration: no audio produced")
		return false
	}
	if err := n.player.Play(ctx, audio); err != nil {
		slog.Error("narration: playback failed", slog.Any("err", err))
		return false
	}
	slog.Debug("narration: playback complete", slog.Duration("duration", audio.Duration()))
	return true
}
