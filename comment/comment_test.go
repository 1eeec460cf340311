package comment

import (
	"testing"
	"time"
)

var arrival = time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)

func TestNormalizeString(t *testing.T) {
	c, ok := Normalize("hello there", arrival)
	if !ok {
		t.Fatal("expected ok")
	}
	if c.Message != "hello there" {
		t.Errorf("Message = %q", c.Message)
	}
	if c.Author.Name != "Unknown" {
		t.Errorf("Author = %q, want Unknown", c.Author.Name)
	}
	if c.ID == "" {
		t.Error("expected fallback id for string comment")
	}
}

func TestNormalizeRecord(t *testing.T) {
	c, ok := Normalize(Record{ID: "c1", Message: " hello ", Author: "Alice"}, arrival)
	if !ok {
		t.Fatal("expected ok")
	}
	if c.ID != "c1" || c.Message != "hello" || c.Author.Name != "Alice" {
		t.Errorf("got %+v", c)
	}
}

func TestNormalizeMap(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		msg  string
		who  string
	}{
		{"nested author", map[string]any{"id": "m1", "message": "hi", "author": map[string]any{"name": "Bob"}}, "hi", "Bob"},
		{"string author", map[string]any{"text": "yo", "author": "Carol"}, "yo", "Carol"},
		{"content key no author", map[string]any{"content": "sup"}, "sup", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Normalize(tt.raw, arrival)
			if !ok {
				t.Fatal("expected ok")
			}
			if c.Message != tt.msg || c.Author.Name != tt.who {
				t.Errorf("got %+v, want msg=%q author=%q", c, tt.msg, tt.who)
			}
		})
	}
}

func TestNormalizeRejects(t *testing.T) {
	if _, ok := Normalize("   ", arrival); ok {
		t.Error("whitespace-only message should be rejected")
	}
	if _, ok := Normalize(42, arrival); ok {
		t.Error("unsupported shape should be rejected")
	}
	if _, ok := Normalize(map[string]any{"author": "Dave"}, arrival); ok {
		t.Error("message-less map should be rejected")
	}
}

func TestFallbackIDStable(t *testing.T) {
	a := fallbackID("same text", arrival)
	b := fallbackID("same text", arrival)
	if a != b {
		t.Errorf("same content+time should hash identically: %q vs %q", a, b)
	}
	c := fallbackID("same text", arrival.Add(time.Second))
	if a == c {
		t.Error("different arrival time should change the fallback id")
	}
}
