// Package testutil provides httptest-based fakes for the external services.
package testutil

import (
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"testing"
)

// MockVoicevoxServer imitates the two-endpoint VOICEVOX synthesis flow.
type MockVoicevoxServer struct {
	*httptest.Server
	QueryCalls     int
	SynthesisCalls int
}

// NewMockVoicevoxServer serves /audio_query with a minimal query JSON and
// /synthesis with the given WAV payload.
func NewMockVoicevoxServer(t *testing.T, wavPayload []byte) *MockVoicevoxServer {
	t.Helper()
	m := &MockVoicevoxServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/audio_query", func(w http.ResponseWriter, r *http.Request) {
		m.QueryCalls++
		if r.Method != http.MethodPost || r.URL.Query().Get("text") == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accent_phrases":[],"speedScale":1.0,"outputSamplingRate":24000}`))
	})
	mux.HandleFunc("/synthesis", func(w http.ResponseWriter, r *http.Request) {
		m.SynthesisCalls++
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(wavPayload)
	})
	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Close)
	return m
}

// WAVBytes builds a mono 16-bit PCM WAV payload from samples.
func WAVBytes(samples []int16, sampleRate int) []byte {
	dataLen := len(samples) * 2
	buf := make([]byte, 0, 44+dataLen)
	le := binary.LittleEndian

	u32 := func(v uint32) []byte { b := make([]byte, 4); le.PutUint32(b, v); return b }
	u16 := func(v uint16) []byte { b := make([]byte, 2); le.PutUint16(b, v); return b }

	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, u32(uint32(36+dataLen))...)
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = append(buf, u32(16)...)
	buf = append(buf, u16(1)...) // PCM
	buf = append(buf, u16(1)...) // mono
	buf = append(buf, u32(uint32(sampleRate))...)
	buf = append(buf, u32(uint32(sampleRate*2))...)
	buf = append(buf, u16(2)...)  // block align
	buf = append(buf, u16(16)...) // bits per sample
	buf = append(buf, []byte("data")...)
	buf = append(buf, u32(uint32(dataLen))...)
	for _, s := range samples {
		buf = append(buf, u16(uint16(s))...)
	}
	return buf
}
