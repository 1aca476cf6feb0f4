package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"repodoc/config"
)

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Response is the generated text plus token usage for one request.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Client defines the interface for LLM clients.
type Client interface {
	// Name identifies the provider and model, e.g. "ollama:gemma3:latest".
	Name() string

	// Generate sends a system message and a user prompt and returns the
	// model's answer.
	Generate(ctx context.Context, systemMessage, userPrompt string) (Response, error)
}

// New builds the client selected by cfg.LLM.Provider, wrapped with the
// configured timeout and retry policy.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	var (
		client  Client
		err     error
		timeout = time.Duration(cfg.LLM.RequestTimeoutSeconds) * time.Second
	)
	switch strings.ToLower(cfg.LLM.Provider) {
	case "", "ollama":
		client, err = NewOllamaClient(cfg.Ollama.Host, cfg.Ollama.Model, cfg.Analysis.MaxPromptLength, timeout)
	case "gemini":
		client, err = NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, float32(cfg.LLM.Temperature))
	default:
		return nil, fmt.Errorf("unknown llm provider '%s'", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewRetryClient(client, cfg.LLM.MaxRetries, timeout), nil
}

// CountTokens approximates the token count of text by its word count.
func CountTokens(text string) int {
	return len(strings.Fields(text))
}

// stripCodeFence removes the ``` fences (and a leading language tag) that
// models sometimes wrap their answers in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], " \t{[") {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
