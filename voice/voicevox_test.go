package voice

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kirisaka/aituber/testutil"
)

func TestSynthesizeSuccess(t *testing.T) {
	samples := []int16{0, 8192, -8192, 16384, -16384, 32767}
	srv := testutil.NewMockVoicevoxServer(t, testutil.WAVBytes(samples, 24000))

	s := NewSynthesizer(srv.URL, 66)
	audio, err := s.Synthesize(context.Background(), "こんにちは")
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if audio == nil {
		t.Fatal("expected audio, got nil")
	}
	if audio.SampleRate != 24000 {
		t.Errorf("SampleRate = %d, want 24000", audio.SampleRate)
	}
	if audio.Channels != 1 {
		t.Errorf("Channels = %d, want 1", audio.Channels)
	}
	if len(audio.Samples) != len(samples) {
		t.Fatalf("len(Samples) = %d, want %d", len(audio.Samples), len(samples))
	}
	for i, f := range audio.Samples {
		if math.Abs(float64(f)) > 1.0 {
			t.Errorf("sample %d = %v, want normalized to [-1,1]", i, f)
		}
	}
	if srv.QueryCalls != 1 || srv.SynthesisCalls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", srv.QueryCalls, srv.SynthesisCalls)
	}
}

func TestSynthesizeConnectionRefused(t *testing.T) {
	s := NewSynthesizer("http://127.0.0.1:1", 66)
	audio, err := s.Synthesize(context.Background(), "hello")
	if audio != nil {
		t.Errorf("expected nil audio sentinel, got %+v", audio)
	}
	if !errors.Is(err, ErrSynthesis) {
		t.Errorf("err = %v, want ErrSynthesis", err)
	}
}

func TestSynthesizeMalformedPayload(t *testing.T) {
	srv := testutil.NewMockVoicevoxServer(t, []byte("definitely not a wav"))
	s := NewSynthesizer(srv.URL, 66)
	audio, err := s.Synthesize(context.Background(), "hello")
	if audio != nil || !errors.Is(err, ErrSynthesis) {
		t.Errorf("got (%+v, %v), want (nil, ErrSynthesis)", audio, err)
	}
}

func TestAudioDuration(t *testing.T) {
	a := &Audio{Samples: make([]float32, 24000), SampleRate: 24000, Channels: 1}
	if got := a.Duration().Seconds(); got != 1.0 {
		t.Errorf("Duration = %vs, want 1s", got)
	}
	var nilAudio *Audio
	if nilAudio.Duration() != 0 {
		t.Error("nil audio duration should be 0")
	}
}
