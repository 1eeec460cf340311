package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// Gemini holds a chat session against the Gemini API. History lives in the
// session; Send only appends one user prompt per call.
type Gemini struct {
	chat  *genai.Chat
	model string
}

// NewGemini creates the client and opens a chat session with the persona as
// system instruction. If the primary model cannot be used, the fallback model
// is tried before giving up; construction failure with both is startup-fatal
// for the caller.
func NewGemini(ctx context.Context, apiKey, model, fallback, persona string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key required")
	}
	if persona == "" {
		persona = DefaultPersona
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(persona, genai.RoleUser),
	}

	chat, err := client.Chats.Create(ctx, model, cfg, nil)
	if err == nil {
		slog.Info("gemini: chat session ready", slog.String("model", model))
		return &Gemini{chat: chat, model: model}, nil
	}
	slog.Warn("gemini: primary model unavailable", slog.String("model", model), slog.Any("err", err))

	if fallback == "" || fallback == model {
		return nil, fmt.Errorf("gemini: create chat with %s: %w", model, err)
	}
	chat, err = client.Chats.Create(ctx, fallback, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: create chat with fallback %s: %w", fallback, err)
	}
	slog.Info("gemini: chat session ready on fallback", slog.String("model", fallback))
	return &Gemini{chat: chat, model: fallback}, nil
}

// Model returns the model name the session ended up on.
func (g *Gemini) Model() string { return g.model }

// Send submits one prompt to the session and returns the reply text.
// Any API failure is wrapped in ErrModel.
func (g *Gemini) Send(ctx context.Context, prompt string) (string, error) {
	resp, err := g.chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModel, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrModel)
	}
	return text, nil
}
