package comment

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Author identifies who posted a comment.
type Author struct {
	Name string `json:"name"`
}

// Comment is the canonical chat message shape used everywhere past ingestion.
// ID is stable when the provider supplies one, else a best-effort hash of the
// message content and arrival time (collision-tolerant, not cryptographic).
type Comment struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Author  Author `json:"author"`
}

// Record is the attribute-shaped raw comment emitted by the bundled feed
// adapters. Feeds from other sources may instead emit plain strings or
// map[string]any records; Normalize accepts all three.
type Record struct {
	ID      string
	Message string
	Author  string
}

// Raw is a provider-shaped comment record prior to normalization.
type Raw any

const unknownAuthor = "Unknown"

// Normalize converts a raw record of any supported shape into a Comment.
// It returns false for records whose message is empty after trimming.
// Supported shapes: string, Record, and map[string]any with message/text/content
// and author (string or nested map with "name") keys.
func Normalize(raw Raw, arrival time.Time) (Comment, bool) {
	var c Comment
	switch v := raw.(type) {
	case string:
		c.Message = v
		c.Author.Name = unknownAuthor
	case Record:
		c.ID = v.ID
		c.Message = v.Message
		c.Author.Name = v.Author
	case *Record:
		if v == nil {
			return Comment{}, false
		}
		c.ID = v.ID
		c.Message = v.Message
		c.Author.Name = v.Author
	case map[string]any:
		c.ID = stringField(v, "id")
		c.Message = firstStringField(v, "message", "text", "content")
		c.Author.Name = authorName(v["author"])
	default:
		return Comment{}, false
	}

	c.Message = strings.TrimSpace(c.Message)
	if c.Message == "" {
		return Comment{}, false
	}
	if c.Author.Name == "" {
		c.Author.Name = unknownAuthor
	}
	if c.ID == "" {
		c.ID = fallbackID(c.Message, arrival)
	}
	return c, true
}

// ExtractID returns the dedup key for a raw record without fully normalizing
// it. Records that carry no provider id hash to a content+time key, so an
// identical record re-fetched in the same batch still dedups while distinct
// arrivals remain distinguishable.
func ExtractID(raw Raw, arrival time.Time) string {
	switch v := raw.(type) {
	case Record:
		if v.ID != "" {
			return v.ID
		}
		return fallbackID(v.Message, arrival)
	case *Record:
		if v != nil && v.ID != "" {
			return v.ID
		}
	case map[string]any:
		if id := stringField(v, "id"); id != "" {
			return id
		}
	}
	return fallbackID(fmt.Sprint(raw), arrival)
}

func fallbackID(message string, at time.Time) string {
	h := xxhash.New()
	_, _ = h.WriteString(message)
	_, _ = h.WriteString(at.UTC().Format(time.RFC3339))
	return fmt.Sprintf("x%016x", h.Sum64())
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func firstStringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(m, k); s != "" {
			return s
		}
	}
	return ""
}

func authorName(v any) string {
	switch a := v.(type) {
	case string:
		return a
	case map[string]any:
		return stringField(a, "name")
	case Author:
		return a.Name
	}
	return ""
}
