package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const OpenAIAgentName = "openai"

// OpenAIConfig holds settings for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	EmbedModel string
	Dimensions int
}

type openAIService struct {
	client     *openai.Client
	model      string
	embedModel openai.EmbeddingModel
	dimensions int
	logger     *zap.Logger
}

// OpenAIService is both an Agent and an Embedder.
type OpenAIService interface {
	Agent
	Embedder
}

func NewOpenAIService(cfg OpenAIConfig, log *zap.Logger) (OpenAIService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &openAIService{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		embedModel: openai.EmbeddingModel(cfg.EmbedModel),
		dimensions: cfg.Dimensions,
		logger:     log.Named("openai"),
	}, nil
}

func (o *openAIService) Name() string {
	return OpenAIAgentName
}

// Generate implements Agent.
func (o *openAIService) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: opts.Temperature,
		MaxTokens:   int(opts.MaxOutputTokens),
	}
	if opts.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", parseOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty chat completion response: %w", ErrUpstreamCall)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("no text content in response: %w", ErrUpstreamCall)
	}

	o.logger.Debug("chat completion response",
		zap.String("model", o.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return text, nil
}

// Embed implements Embedder.
func (o *openAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          o.embedModel,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if o.dimensions > 0 {
		req.Dimensions = o.dimensions
	}

	resp, err := o.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, parseOpenAIError(err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response: %w", ErrUpstreamCall)
	}

	return resp.Data[0].Embedding, nil
}

// parseOpenAIError extracts a human-readable error from the API response.
func parseOpenAIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractErrorDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("openai API error %d: %s: %w", reqErr.HTTPStatusCode, detail, ErrUpstreamCall)
		}
		return fmt.Errorf("openai API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), ErrUpstreamCall)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, ErrUpstreamCall)
	}

	return fmt.Errorf("openai request failed: %v: %w", err, ErrUpstreamCall)
}

func extractErrorDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
