// Package groq talks to the Groq OpenAI-compatible chat completions API.
package groq

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

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/errs"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "gemma2-9b-it"

	completionsPath = "/chat/completions"
	contentType     = "application/json"
	userAgent       = "spigell/resume-screener"
)

type Client struct {
	apiKey     string
	model      string
	logger     *zap.Logger
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Type       string `mapstructure:"type"`
	Code       string `mapstructure:"code"`
	Message    string `mapstructure:"message"`
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Type != "" {
		return fmt.Sprintf("groq api status %d (%s): %s", e.StatusCode, e.Type, msg)
	}
	return fmt.Sprintf("groq api status %d: %s", e.StatusCode, msg)
}

type completionResponse struct {
	Model   string   `mapstructure:"model"`
	Choices []choice `mapstructure:"choices"`
}

type choice struct {
	FinishReason string `mapstructure:"finish_reason"`
	Message      struct {
		Content string `mapstructure:"content"`
	} `mapstructure:"message"`
}

// New creates a client. An empty api key is a configuration error.
func New(apiKey, model string, logger *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errs.Configuration("groq api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:  apiKey,
		model:   model,
		logger:  logger,
		BaseURL: DefaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		UserAgent: userAgent,
	}, nil
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// GenerateContent sends prompt as a single user message and returns the
// trimmed content of the first choice.
func (c *Client) GenerateContent(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	if c == nil || c.HTTPClient == nil {
		return "", errors.New("groq client is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	body := map[string]any{
		"model":       c.model,
		"temperature": opts.Temperature,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	if opts.MaxOutputTokens > 0 {
		body["max_tokens"] = opts.MaxOutputTokens
	}

	raw, err := c.post(ctx, strings.TrimRight(c.BaseURL, "/")+completionsPath, body)
	if err != nil {
		return "", err
	}

	var response completionResponse
	if err := mapstructure.Decode(raw, &response); err != nil {
		return "", fmt.Errorf("decode groq response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", errors.New("groq api returned no choices")
	}

	first := response.Choices[0]
	output := strings.TrimSpace(first.Message.Content)
	if output == "" {
		return "", errors.New("groq api returned empty response")
	}

	c.logger.Debug("groq completion finished",
		zap.String("finish_reason", first.FinishReason),
		zap.String("served_model", response.Model),
	)

	return output, nil
}

func (c *Client) post(ctx context.Context, url string, payload map[string]any) (map[string]any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)
	req.Header.Set("User-Agent", c.UserAgent)

	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read groq response: %w", err)
	}

	var decoded map[string]any
	decodeErr := json.Unmarshal(respBody, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			if details, ok := decoded["error"].(map[string]any); ok {
				_ = mapstructure.WeakDecode(details, apiErr)
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("decode groq response: %w", decodeErr)
	}

	return decoded, nil
}
