// Package ai talks to an OpenAI-compatible chat completions API and turns its replies into domain values.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

var (
	// ErrProviderUnavailable covers transport failures, timeouts and non-2xx answers.
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	// ErrProviderMalformedReply means the provider answered 2xx but the envelope carried no usable message.
	ErrProviderMalformedReply = errors.New("ai provider returned a malformed reply")
)

const maxReplyBytes = 1 << 20

type ClientOptions struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// RetryInterval is the first backoff delay. Zero means 500ms.
	RetryInterval time.Duration
}

// Client sends chat completion requests. Each attempt is bounded by Timeout.
type Client struct {
	baseURL       string
	apiKey        string
	model         string
	timeout       time.Duration
	maxRetries    int
	retryInterval time.Duration
	httpClient    *http.Client
	logger        *zap.Logger
}

func NewClient(opts ClientOptions, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	return &Client{
		baseURL:       opts.BaseURL,
		apiKey:        opts.APIKey,
		model:         opts.Model,
		timeout:       opts.Timeout,
		maxRetries:    opts.MaxRetries,
		retryInterval: opts.RetryInterval,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger: logger,
	}
}

// Chat completions wire format.
type ChatCompletionRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ChatCompletionResponse struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Message struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete sends a single user message made of parts and returns the text of the first choice.
func (c *Client) Complete(ctx context.Context, parts []ContentPart, maxTokens int) (string, error) {
	body, err := json.Marshal(ChatCompletionRequest{
		Model:     c.model,
		Messages:  []Message{{Role: "user", Content: parts}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	retrier := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx)

	attempt := 0
	reply, err := backoff.RetryWithData(func() (string, error) {
		attempt++
		reply, err := c.send(ctx, body)
		if err != nil && !errors.Is(err, ErrProviderUnavailable) {
			return "", backoff.Permanent(err)
		}
		if err != nil {
			c.logger.Warn("AI provider attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		}
		return reply, err
	}, retrier)
	if err != nil {
		if !errors.Is(err, ErrProviderUnavailable) && !errors.Is(err, ErrProviderMalformedReply) {
			err = fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return "", err
	}

	return reply, nil
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrProviderUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
		// Client errors such as a rejected key will not heal on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(payload, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderMalformedReply, err)
	}
	// An empty string is still a reply; the parsers turn it into an empty result.
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("%w: no message content", ErrProviderMalformedReply)
	}

	c.logger.Debug("AI provider call succeeded",
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
		zap.Int("total_tokens", chatResp.Usage.TotalTokens),
	)

	return *chatResp.Choices[0].Message.Content, nil
}
