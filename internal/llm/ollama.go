package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/JexSrs/go-ollama"
	"github.com/sirupsen/logrus"
)

// OllamaClient talks to a local Ollama server.
type OllamaClient struct {
	client          *ollama.Ollama
	model           string
	maxPromptLength int
}

// NewOllamaClient creates a new client for Ollama. A positive timeout bounds
// each HTTP request.
func NewOllamaClient(host, model string, maxPromptLength int, timeout time.Duration) (*OllamaClient, error) {
	ollamaURL, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	if ollamaURL.Scheme == "" || ollamaURL.Host == "" {
		return nil, fmt.Errorf("invalid Ollama URL '%s': scheme and host are required", host)
	}

	logrus.Infof("Using Ollama client for host: %s", host)
	logrus.Infof("Using Ollama model: %s", model)

	client := ollama.New(*ollamaURL)
	client.Http = &http.Client{Timeout: timeout}

	return &OllamaClient{
		client:          client,
		model:           model,
		maxPromptLength: maxPromptLength,
	}, nil
}

func (oc *OllamaClient) Name() string { return "ollama:" + oc.model }

type ollamaResult struct {
	res *ollama.GenerateResponse
	err error
}

// Generate sends one non-streaming request through the Generate endpoint.
// The underlying client takes no context, so the request runs in its own
// goroutine and Generate returns as soon as ctx is done. The abandoned
// request ends when the HTTP client timeout fires.
func (oc *OllamaClient) Generate(ctx context.Context, systemMessage, userPrompt string) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	userPrompt = truncatePrompt(userPrompt, oc.maxPromptLength)
	logrus.Debugf("Sending prompt of %d characters to Ollama", len(userPrompt))

	done := make(chan ollamaResult, 1)
	go func() {
		res, err := oc.client.Generate(
			oc.client.Generate.WithModel(oc.model),
			oc.client.Generate.WithSystem(systemMessage),
			oc.client.Generate.WithPrompt(userPrompt),
		)
		done <- ollamaResult{res: res, err: err}
	}()

	var res *ollama.GenerateResponse
	select {
	case <-ctx.Done():
		return Response{}, fmt.Errorf("ollama generate: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return Response{}, fmt.Errorf("ollama generate failed: %w", r.err)
		}
		res = r.res
	}

	if !res.Done {
		return Response{}, fmt.Errorf("ollama request did not complete (unexpected streaming behavior)")
	}
	text := stripCodeFence(res.Response)
	if text == "" {
		return Response{}, fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}

	logrus.Debug("Response received from Ollama.")
	resp := Response{
		Text:         text,
		InputTokens:  res.PromptEvalCount,
		OutputTokens: res.EvalCount,
	}
	if resp.InputTokens == 0 {
		resp.InputTokens = CountTokens(systemMessage) + CountTokens(userPrompt)
	}
	if resp.OutputTokens == 0 {
		resp.OutputTokens = CountTokens(text)
	}
	return resp, nil
}

// truncatePrompt cuts prompt to max bytes (when positive) without splitting
// a UTF-8 sequence.
func truncatePrompt(prompt string, max int) string {
	if max <= 0 || len(prompt) <= max {
		return prompt
	}
	logrus.Warnf("Prompt is being truncated from %d to %d characters.", len(prompt), max)
	cut := max
	for cut > 0 && !isRuneStart(prompt[cut]) {
		cut--
	}
	return prompt[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
