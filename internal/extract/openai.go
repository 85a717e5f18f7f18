package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint,
// such as a local vLLM server.
type OpenAIClient struct {
	client     *openai.Client
	model      string
	ctxWindow  int
	structured bool
	schema     *jsonschema.Definition
}

// OpenAIConfig holds the connection settings for NewOpenAIClient.
type OpenAIConfig struct {
	BaseURL       string
	APIKey        string
	Model         string
	ContextWindow int
	Structured    bool
	HTTPClient    *http.Client
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	c := &OpenAIClient{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		ctxWindow:  cfg.ContextWindow,
		structured: cfg.Structured,
	}
	if cfg.Structured {
		schema, err := jsonschema.GenerateSchemaForType(StructuredGeneration{})
		if err != nil {
			return nil, fmt.Errorf("qa schema: %w", err)
		}
		c.schema = schema
	}
	return c, nil
}

func (c *OpenAIClient) Model() string { return c.model }

// Complete runs one chat completion. RepetitionPenalty has no field in the
// OpenAI request shape and is not sent.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, params GenerationParams) (Generation, error) {
	if err := checkPromptSize(prompt, c.ctxWindow); err != nil {
		return nil, err
	}
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:        params.MaxTokens,
		Temperature:      sampling(params.Temperature),
		TopP:             sampling(params.TopP),
		FrequencyPenalty: sampling(params.FrequencyPenalty),
		PresencePenalty:  sampling(params.PresencePenalty),
		Stop:             params.Stop,
	}
	if c.structured {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "qa_pair",
				Schema: c.schema,
				Strict: true,
			},
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: %w", ErrEmptyCompletion)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("openai: %w", ErrEmptyCompletion)
	}

	if c.structured {
		var sg StructuredGeneration
		if err := json.Unmarshal([]byte(content), &sg); err == nil {
			return sg, nil
		}
	}
	return TextGeneration{Text: content}, nil
}

// sampling converts a sampling parameter for the request. go-openai omits
// zero floats from the JSON body, so an explicit 0 is sent as the smallest
// nonzero float32 to keep the server default from applying.
func sampling(v float64) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(v)
}

func classifyOpenAIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return &RetryableError{StatusCode: status, Message: err.Error()}
	}
	return fmt.Errorf("openai: %w", err)
}
