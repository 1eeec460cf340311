package voice

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
)

// Device describes an enumerated output device.
type Device struct {
	Index   int
	Name    string
	Default bool
}

// Player owns the audio backend context and the resolved output device.
// Playback blocks until the clip finishes or the context is cancelled; the
// backend renders on its own thread, so the caller stays responsive.
type Player struct {
	mctx     *malgo.AllocatedContext
	deviceID *malgo.DeviceID
	devices  []Device
}

// NewPlayer initializes the audio backend, enumerates playback devices, and
// resolves deviceName (case-insensitive substring match). When the name
// doesn't match anything the system default device is used with a warning,
// matching the behaviour of the rest of the degradation policy.
func NewPlayer(deviceName string) (*Player, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("audio backend", slog.String("msg", strings.TrimSpace(message)))
	})
	if err != nil {
		return nil, fmt.Errorf("audio: init backend: %w", err)
	}

	infos, err := mctx.Devices(malgo.Playback)
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("audio: enumerate devices: %w", err)
	}

	p := &Player{mctx: mctx}
	want := strings.ToLower(deviceName)
	for i, info := range infos {
		d := Device{Index: i, Name: info.Name(), Default: info.IsDefault != 0}
		p.devices = append(p.devices, d)
		slog.Info("audio device",
			slog.Int("index", d.Index),
			slog.String("name", d.Name),
			slog.Bool("default", d.Default))
		if p.deviceID == nil && want != "" && strings.Contains(strings.ToLower(d.Name), want) {
			id := info.ID
			p.deviceID = &id
			slog.Info("audio: output device resolved", slog.String("name", d.Name))
		}
	}
	if p.deviceID == nil && deviceName != "" {
		slog.Warn("audio: configured output device not found; using default", slog.String("wanted", deviceName))
	}
	return p, nil
}

// Devices returns the playback devices seen at startup.
func (p *Player) Devices() []Device { return p.devices }

// Play renders the clip to the resolved device and blocks until it has been
// consumed or ctx is cancelled.
func (p *Player) Play(ctx context.Context, a *Audio) error {
	if a == nil || len(a.Samples) == 0 {
		return fmt.Errorf("audio: nothing to play")
	}
	channels := a.Channels
	if channels <= 0 {
		channels = 1
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = uint32(channels)
	cfg.SampleRate = uint32(a.SampleRate)
	if p.deviceID != nil {
		cfg.Playback.DeviceID = p.deviceID.Pointer()
	}

	pcm := encodeF32LE(a.Samples)
	var offset int
	done := make(chan struct{})
	var once sync.Once

	callbacks := malgo.DeviceCallbacks{
		// Runs on the backend's audio thread.
		Data: func(out, _ []byte, frameCount uint32) {
			offset = fillPCM(out, pcm, offset)
			if offset >= len(pcm) {
				once.Do(func() { close(done) })
			}
		},
	}

	dev, err := malgo.InitDevice(p.mctx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("audio: init device: %w", err)
	}
	defer dev.Uninit()

	if err := dev.Start(); err != nil {
		return fmt.Errorf("audio: start playback: %w", err)
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the audio backend.
func (p *Player) Close() error {
	if p == nil || p.mctx == nil {
		return nil
	}
	err := p.mctx.Uninit()
	p.mctx.Free()
	p.mctx = nil
	return err
}

// fillPCM copies the next chunk of pcm into out and zero-fills whatever the
// clip no longer covers, so an exhausted clip renders silence instead of
// stale buffer contents. Returns the advanced offset.
func fillPCM(out, pcm []byte, offset int) int {
	n := copy(out, pcm[offset:])
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	return offset + n
}

func encodeF32LE(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}
