// Package engine wraps the conversational language model behind a one-method
// interface. The model keeps the conversation history; callers only hand over
// the next prompt and receive the reply text.
package engine

import (
	"context"
	"errors"
)

// ErrModel marks transport/quota/auth failures from the model service.
// Callers treat any such failure as recoverable for the current turn.
var ErrModel = errors.New("model request failed")

// Engine is a stateful chat session. Send blocks until the model replies or
// the context is done.
type Engine interface {
	Send(ctx context.Context, prompt string) (string, error)
}
