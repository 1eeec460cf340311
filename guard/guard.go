// Package guard classifies raw viewer input before it reaches the conversation model.
// It is a static, case-insensitive substring filter over a configurable phrase list.
//
// This is a best-effort screen, not a security boundary: the model's system
// instruction is not enforceable, and a determined prompt injection can be
// phrased around any fixed list. The guard exists to cheaply reject the obvious
// attempts so they never consume a model call.
package guard

import "strings"

// Verdict is the classification outcome for a piece of input text.
type Verdict int

const (
	Safe Verdict = iota
	Blocked
)

func (v Verdict) String() string {
	if v == Blocked {
		return "blocked"
	}
	return "safe"
}

// DefaultKeywords is the built-in instruction-override phrase list
// (English plus Japanese equivalents).
var DefaultKeywords = []string{
	"ignore previous instructions",
	"act as",
	"override",
	"forget everything",
	"system prompt",
	"あなたは",
	"指示を無視",
	"前の指示を無視",
	"ロールプレイング",
}

// Guard holds a lowercased phrase list. Classification is pure and stateless;
// a single Guard can be shared freely.
type Guard struct {
	keywords []string
}

// New builds a Guard from the given phrase list. An empty list selects
// DefaultKeywords.
func New(keywords []string) *Guard {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Guard{keywords: lowered}
}

// Classify returns Blocked when text contains any policy phrase
// (case-insensitive), else Safe. It is total and deterministic.
func (g *Guard) Classify(text string) Verdict {
	lowered := strings.ToLower(text)
	for _, k := range g.keywords {
		if strings.Contains(lowered, k) {
			return Blocked
		}
	}
	return Safe
}
