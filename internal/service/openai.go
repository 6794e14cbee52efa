package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/logger"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/recipe"
)

const (
	chatCompletionsPath  = "/v1/chat/completions"
	imageGenerationsPath = "/v1/images/generations"
	// maxErrorBody bounds how much of an upstream error body is kept
	maxErrorBody = 512
)

// Completer sends a single prompt to a chat model and returns the raw reply
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// UpstreamError is returned when the completion or image provider cannot
// produce a usable answer.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: upstream returned status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": upstream failure"
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Kind() recipe.ErrorKind { return recipe.KindUpstream }

// OpenAIConfig holds the settings for OpenAIClient
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	ChatModel    string
	ImageModel   string
	ImageSize    string
	ImageQuality string
	// Timeout bounds each HTTP call. Zero means no client-side limit.
	Timeout time.Duration
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the chat completions API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse represents the response from the chat completions API
type ChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// ImageGenerationRequest represents a request to the DALL-E API
type ImageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

// ImageGenerationResponse represents the response from DALL-E API
type ImageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// OpenAIClient talks to the OpenAI chat completions and image generation
// endpoints. It is safe for concurrent use.
type OpenAIClient struct {
	cfg    OpenAIConfig
	client *http.Client
	tracer trace.Tracer
	log    *logger.Logger
}

// NewOpenAIClient creates a client. Defaults are filled in for empty fields.
// A missing API key is not an error; requests are sent without credentials
// and fail upstream.
func NewOpenAIClient(cfg OpenAIConfig, log *logger.Logger) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "dall-e-3"
	}
	if cfg.ImageSize == "" {
		cfg.ImageSize = "1024x1024"
	}
	if cfg.ImageQuality == "" {
		cfg.ImageQuality = "standard"
	}
	if cfg.APIKey == "" {
		log.Warn("OpenAI API key is not set, upstream calls will be rejected")
	}

	return &OpenAIClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		tracer: otel.Tracer("github.com/Rol3ert99/CookbookAPP-backend/internal/service"),
		log:    log,
	}
}

// Complete sends prompt as a single user message at temperature 0 and
// returns the content of the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openai.chat_completion",
		trace.WithAttributes(attribute.String("openai.model", c.cfg.ChatModel)))
	defer span.End()

	reqBody := ChatRequest{
		Model:       c.cfg.ChatModel,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: 0,
	}

	var result ChatResponse
	if err := c.post(ctx, "chat completion", chatCompletionsPath, reqBody, &result); err != nil {
		recordError(span, err)
		return "", err
	}

	if len(result.Choices) == 0 {
		err := &UpstreamError{Op: "chat completion", Err: fmt.Errorf("no choices in API response")}
		recordError(span, err)
		return "", err
	}

	content := result.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("openai.response_length", len(content)))
	return content, nil
}

// GenerateImage requests one image for description and returns its URL
func (c *OpenAIClient) GenerateImage(ctx context.Context, description string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openai.image_generation",
		trace.WithAttributes(
			attribute.String("openai.model", c.cfg.ImageModel),
			attribute.String("openai.image_size", c.cfg.ImageSize),
		))
	defer span.End()

	reqBody := ImageGenerationRequest{
		Model:          c.cfg.ImageModel,
		Prompt:         description,
		N:              1,
		Size:           c.cfg.ImageSize,
		Quality:        c.cfg.ImageQuality,
		ResponseFormat: "url",
	}

	var result ImageGenerationResponse
	if err := c.post(ctx, "image generation", imageGenerationsPath, reqBody, &result); err != nil {
		recordError(span, err)
		return "", err
	}

	if len(result.Data) == 0 || result.Data[0].URL == "" {
		err := &UpstreamError{Op: "image generation", Err: fmt.Errorf("no image URL in API response")}
		recordError(span, err)
		return "", err
	}

	return result.Data[0].URL, nil
}

// post sends body as JSON and decodes a 2xx reply into out. Every failure
// is reported as an *UpstreamError.
func (c *OpenAIClient) post(ctx context.Context, op, path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.log.Debug("openai request finished", "op", op, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: truncate(string(respBody), maxErrorBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
