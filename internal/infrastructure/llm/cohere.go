package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"NewsDesk/internal/ports"
)

const defaultCohereModel = "command-r-plus"

type chatFunc func(ctx context.Context, req *cohere.ChatRequest) (*cohere.NonStreamedChatResponse, error)

// CohereClient generates text through the Cohere chat API.
type CohereClient struct {
	chat         chatFunc
	model        string
	systemPrompt string
	timeout      time.Duration
}

var (
	_ ports.Summarizer = (*CohereClient)(nil)
	_ ports.Generator  = (*CohereClient)(nil)
)

// NewCohereClient builds a client from configuration. Endpoint is ignored.
func NewCohereClient(cfg Config) *CohereClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = defaultCohereModel
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(cfg.APIKey),
		cohereclient.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	return &CohereClient{
		chat: func(ctx context.Context, req *cohere.ChatRequest) (*cohere.NonStreamedChatResponse, error) {
			return client.Chat(ctx, req)
		},
		model:        model,
		systemPrompt: cfg.SystemPrompt,
		timeout:      timeout,
	}
}

// Summarize asks for a three-sentence summary in the editorial voice.
func (c *CohereClient) Summarize(ctx context.Context, title, text string) (string, error) {
	preamble := safePrompt(c.systemPrompt)
	return c.send(ctx, summaryPrompt(title, text), &preamble)
}

// Generate asks for a markdown blog post about the article.
func (c *CohereClient) Generate(ctx context.Context, title, body, source string) (string, error) {
	return c.send(ctx, generatePrompt(title, body, source), nil)
}

func (c *CohereClient) send(ctx context.Context, message string, preamble *string) (string, error) {
	if c == nil || c.chat == nil {
		return "", errors.New("cohere client is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.model
	resp, err := c.chat(ctx, &cohere.ChatRequest{
		Message:  message,
		Model:    &model,
		Preamble: preamble,
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat: %w", err)
	}
	if resp == nil {
		return "", errors.New("cohere chat returned empty response")
	}
	return strings.TrimSpace(resp.Text), nil
}
