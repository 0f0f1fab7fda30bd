// Package llm adapts hosted language models to the summarizer and generator ports.
package llm

import (
	"fmt"
	"strings"

	"NewsDesk/internal/ports"
)

// Client both summarizes and generates.
type Client interface {
	ports.Summarizer
	ports.Generator
}

// New picks a backend by provider name: "openai" (any compatible endpoint),
// "cohere" or "service" (self-hosted inference).
func New(provider string, cfg Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "openai":
		return NewOpenAIClient(cfg), nil
	case "cohere":
		return NewCohereClient(cfg), nil
	case "service":
		return NewServiceClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
