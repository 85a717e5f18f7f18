package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultAnthropicURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
)

// ClaudeClient generates completions through the Anthropic Messages API.
// It does not retry; callers decide what to do with a RetryableError.
type ClaudeClient struct {
	http      *resty.Client
	model     string
	url       string
	ctxWindow int
}

// ClaudeOption configures a ClaudeClient.
type ClaudeOption func(*ClaudeClient)

// WithClaudeURL overrides the Messages endpoint.
func WithClaudeURL(url string) ClaudeOption {
	return func(c *ClaudeClient) { c.url = url }
}

// WithClaudeContextWindow sets the token budget a prompt must stay under.
func WithClaudeContextWindow(n int) ClaudeOption {
	return func(c *ClaudeClient) { c.ctxWindow = n }
}

func WithClaudeTimeout(d time.Duration) ClaudeOption {
	return func(c *ClaudeClient) { c.http.SetTimeout(d) }
}

func NewClaudeClient(apiKey, model string, opts ...ClaudeOption) *ClaudeClient {
	c := &ClaudeClient{
		http: resty.New().
			SetTimeout(120*time.Second).
			SetHeader("x-api-key", apiKey).
			SetHeader("anthropic-version", anthropicVersion).
			SetHeader("Content-Type", "application/json"),
		model: model,
		url:   defaultAnthropicURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messagesRequest struct {
	Model         string    `json:"model"`
	MaxTokens     int       `json:"max_tokens"`
	Temperature   float64   `json:"temperature"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
	Messages      []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type messagesError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *ClaudeClient) Model() string { return c.model }

// Complete sends prompt as a single user message. Only temperature is sent
// for sampling: the Messages API has no penalties, and current models reject
// temperature and top_p together.
func (c *ClaudeClient) Complete(ctx context.Context, prompt string, params GenerationParams) (Generation, error) {
	if err := checkPromptSize(prompt, c.ctxWindow); err != nil {
		return nil, err
	}

	var out messagesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(messagesRequest{
			Model:         c.model,
			MaxTokens:     params.MaxTokens,
			Temperature:   params.Temperature,
			StopSequences: params.Stop,
			Messages:      []message{{Role: "user", Content: prompt}},
		}).
		SetResult(&out).
		ForceContentType("application/json").
		Post(c.url)
	if err != nil && (resp == nil || resp.RawResponse == nil) {
		return nil, fmt.Errorf("claude api: %w", err)
	}

	status := resp.StatusCode()
	if status == http.StatusTooManyRequests || status >= 500 {
		return nil, &RetryableError{StatusCode: status, Message: truncate(resp.String(), 200)}
	}
	if resp.IsError() {
		var apiErr messagesError
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("claude api status %d: %s: %s", status, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("claude api status %d: %s", status, truncate(resp.String(), 200))
	}
	if err != nil {
		return nil, fmt.Errorf("claude api: decode response: %w", err)
	}

	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return nil, fmt.Errorf("claude (stop_reason %q): %w", out.StopReason, ErrEmptyCompletion)
	}
	return TextGeneration{Text: sb.String()}, nil
}

// Close releases idle connections.
func (c *ClaudeClient) Close() {
	c.http.GetClient().CloseIdleConnections()
}
