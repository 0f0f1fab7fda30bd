package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ServiceClient talks to a self-hosted inference service exposing
// POST /summarize and POST /generate.
type ServiceClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ Client = (*ServiceClient)(nil)

// NewServiceClient creates a reusable HTTP client.
func NewServiceClient(cfg Config) *ServiceClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ServiceClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}
}

type serviceReply struct {
	Text string `json:"text"`
}

// Summarize requests a summary of the article text.
func (c *ServiceClient) Summarize(ctx context.Context, title, text string) (string, error) {
	var resp serviceReply
	payload := map[string]any{
		"title":   title,
		"content": truncate(text, summaryInputRunes),
	}
	if err := c.post(ctx, "/summarize", payload, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// Generate requests a blog post body for the article.
func (c *ServiceClient) Generate(ctx context.Context, title, body, source string) (string, error) {
	var resp serviceReply
	payload := map[string]any{
		"title":   title,
		"source":  source,
		"content": truncate(body, generateInputRunes),
		"prompt":  generatePrompt(title, body, source),
	}
	if err := c.post(ctx, "/generate", payload, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

func (c *ServiceClient) post(ctx context.Context, path string, payload any, v any) error {
	if c.endpoint == "" {
		return errors.New("inference service endpoint not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service %s returned %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
