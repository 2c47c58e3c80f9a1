// apps/go-server/internal/llm/client.go
//
// OpenAI-compatible chat completions client. It is the production
// pipeline.Collaborator: one stage prompt becomes one POST to
// {BaseURL}/chat/completions and the first choice's message content is
// returned verbatim. Interpreting that text is the pipeline's job.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/pipeline"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// ErrNoChoices is returned when the completion carries no message content.
var ErrNoChoices = errors.New("llm: response has no choices")

// Config configures a Client.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	// Timeout caps the HTTP round trip. The pipeline's per-call deadline
	// applies as well; whichever is shorter wins.
	Timeout time.Duration
}

// Client talks to a chat completions endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

var _ pipeline.Collaborator = (*Client)(nil)

// New builds a Client, filling defaults for empty fields.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type requestBody struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// Generate sends p and returns the model's reply text.
func (c *Client) Generate(ctx context.Context, p pipeline.Prompt) (string, error) {
	body, err := json.Marshal(requestBody{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		Temperature:    c.cfg.Temperature,
		MaxTokens:      c.cfg.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post chat completion: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	log.Debug().Str("stage", string(p.Stage)).Str("model", c.cfg.Model).
		Int("status", resp.StatusCode).Int("bytes", len(raw)).Dur("latency", time.Since(start)).
		Msg("chat completion")

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", fmt.Errorf("chat completion status %d: %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("chat completion: malformed response envelope")
	}
	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() {
		return "", ErrNoChoices
	}
	return content.String(), nil
}
