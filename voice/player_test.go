package voice

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestFillPCMZeroesTail(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6}

	out := []byte{9, 9, 9, 9}
	off := fillPCM(out, pcm, 0)
	if off != 4 {
		t.Fatalf("offset = %d, want 4", off)
	}
	if !bytes.Equal(out, []byte{1, 2, 3, 4}) {
		t.Errorf("full buffer = %v", out)
	}

	// final partial buffer: the remainder must be silence, not stale bytes
	out = []byte{9, 9, 9, 9}
	off = fillPCM(out, pcm, off)
	if off != 6 {
		t.Fatalf("offset = %d, want 6", off)
	}
	if !bytes.Equal(out, []byte{5, 6, 0, 0}) {
		t.Errorf("tail buffer = %v, want zero-filled remainder", out)
	}

	// exhausted clip: whole buffer is silence
	out = []byte{9, 9, 9, 9}
	if off = fillPCM(out, pcm, off); off != 6 {
		t.Fatalf("offset = %d, want 6", off)
	}
	if !bytes.Equal(out, []byte{0, 0, 0, 0}) {
		t.Errorf("post-clip buffer = %v, want all zeros", out)
	}
}

func TestEncodeF32LE(t *testing.T) {
	samples := []float32{0, 1, -0.5}
	out := encodeF32LE(samples)
	if len(out) != len(samples)*4 {
		t.Fatalf("len = %d, want %d", len(out), len(samples)*4)
	}
	for i, s := range samples {
		got := math.Float32frombits(binary.LittleEndian.Uint32(out[i*4:]))
		if got != s {
			t.Errorf("sample %d = %v, want %v", i, got, s)
		}
	}
}
