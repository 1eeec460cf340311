// Package voice turns reply text into audible speech: a VOICEVOX HTTP
// synthesizer, an audio output device, and the Narrator facade the
// orchestrator talks to.
package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-audio/wav"
)

// ErrSynthesis marks any failure talking to the synthesis service or decoding
// its output. Callers receive a nil *Audio alongside it.
var ErrSynthesis = errors.New("speech synthesis failed")

// Audio is decoded speech ready for playback.
type Audio struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Duration returns the playback length of the clip.
func (a *Audio) Duration() time.Duration {
	if a == nil || a.SampleRate == 0 || a.Channels == 0 {
		return 0
	}
	frames := len(a.Samples) / a.Channels
	return time.Duration(frames) * time.Second / time.Duration(a.SampleRate)
}

// Synthesizer speaks text through a VOICEVOX engine. Synthesis is a
// two-request flow: /audio_query builds a synthesis query from the text,
// /synthesis renders that query into a WAV payload.
type Synthesizer struct {
	BaseURL    string
	Speaker    int
	HTTPClient *http.Client
}

// NewSynthesizer returns a Synthesizer for the engine at baseURL using the
// given speaker id.
func NewSynthesizer(baseURL string, speaker int) *Synthesizer {
	return &Synthesizer{
		BaseURL:    baseURL,
		Speaker:    speaker,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Synthesize renders text to audio. On any failure it returns (nil, error);
// nil audio is the "no audio produced" sentinel the narration path checks.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*Audio, error) {
	query, err := s.audioQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	wavBytes, err := s.render(ctx, query)
	if err != nil {
		return nil, err
	}
	return decodeWAV(wavBytes)
}

// audioQuery builds the synthesis query JSON for text. The query body is
// opaque here; it goes straight back out in the render request.
func (s *Synthesizer) audioQuery(ctx context.Context, text string) ([]byte, error) {
	u := s.BaseURL + "/audio_query?" + url.Values{
		"text":    {text},
		"speaker": {strconv.Itoa(s.Speaker)},
	}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build query request: %v", ErrSynthesis, err)
	}
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: audio_query: %v (is the VOICEVOX engine running?)", ErrSynthesis, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: audio_query returned %s", ErrSynthesis, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read query response: %v", ErrSynthesis, err)
	}
	return body, nil
}

// render submits the query and returns the binary WAV payload.
func (s *Synthesizer) render(ctx context.Context, query []byte) ([]byte, error) {
	u := s.BaseURL + "/synthesis?" + url.Values{
		"speaker": {strconv.Itoa(s.Speaker)},
	}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("%w: build synthesis request: %v", ErrSynthesis, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: synthesis: %v", ErrSynthesis, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: synthesis returned %s", ErrSynthesis, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio payload: %v", ErrSynthesis, err)
	}
	return body, nil
}

// decodeWAV decodes a WAV payload into normalized float32 samples.
func decodeWAV(payload []byte) (*Audio, error) {
	dec := wav.NewDecoder(bytes.NewReader(payload))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: malformed WAV payload", ErrSynthesis)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: decode WAV: %v", ErrSynthesis, err)
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float32(int(1) << (bitDepth - 1))
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}
	channels := buf.Format.NumChannels
	if channels == 0 {
		channels = 1
	}
	return &Audio{
		Samples:    samples,
		SampleRate: buf.Format.SampleRate,
		Channels:   channels,
	}, nil
}
