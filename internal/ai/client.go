// Package ai is the HTTP client for the external reasoning service. It
// speaks the chat-completion protocol and owns the bounded retry policy; it
// never interprets the returned text beyond unwrapping the message content.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "deepseek/deepseek-r1:free"

	// maxRetries bounds retries on HTTP 429. Any other failure is terminal.
	maxRetries = 3
	baseDelay  = time.Second

	requestTimeout = 30 * time.Second
)

// ErrNotConfigured means no API key is set; callers go straight to the
// fallback path.
var ErrNotConfigured = errors.New("reasoning service not configured")

// ErrRateLimited is returned once 429 retries are exhausted (or immediately
// in fast mode).
var ErrRateLimited = errors.New("reasoning service rate limited")

// Client calls the reasoning service.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client

	// Test configuration
	retryDelay time.Duration
}

// New creates a client. Empty baseURL and model fall back to the OpenRouter
// defaults.
func New(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
		retryDelay: baseDelay,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Complete sends the prompt as a single user message and returns the model's
// text. 429 responses are retried up to maxRetries times with exponential
// backoff plus jitter; every other error fails immediately.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, maxRetries)
}

// CompleteFast is the live-request variant: no retries, so a rate limit
// fails over to the fallback packer without adding user-facing latency.
func (c *Client) CompleteFast(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, 0)
}

func (c *Client) complete(ctx context.Context, prompt string, retries int) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	for attempt := 0; ; attempt++ {
		content, retryable, err := c.doRequest(ctx, prompt)
		if err == nil {
			return content, nil
		}
		if !retryable || attempt >= retries {
			return "", err
		}

		// Exponential backoff with jitter, cancellable between attempts.
		delay := c.retryDelay<<attempt + time.Duration(rand.Int63n(int64(c.retryDelay)))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// doRequest performs one chat-completion round trip. The second return value
// reports whether the failure is retryable (rate limit).
func (c *Client) doRequest(ctx context.Context, prompt string) (string, bool, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.1, // low temperature for consistent scheduling
		MaxTokens:   2000,
	})
	if err != nil {
		return "", false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "TaskAdemic Scheduler")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("reasoning service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", true, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("reasoning service returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", false, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", false, errors.New("reasoning service returned no choices")
	}
	return parsed.Choices[0].Message.Content, false, nil
}
