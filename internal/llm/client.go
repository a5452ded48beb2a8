// Package llm talks to an OpenAI-compatible chat-completions endpoint.
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

	"football-buddy/internal/common/config"
	commonhttp "football-buddy/internal/common/http"
	"football-buddy/internal/common/logger"
)

var (
	ErrLLMTimeout       = errors.New("LLM_TIMEOUT")
	ErrLLMRequestFailed = errors.New("LLM_REQUEST_FAILED")
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

func NewConfig(appConfig *config.Config) *Config {
	return &Config{
		BaseURL:     appConfig.LLM.BaseURL,
		APIKey:      appConfig.LLM.APIKey,
		Model:       appConfig.LLM.Model,
		Timeout:     config.GetDuration(appConfig.LLM.Timeout),
		MaxRetries:  appConfig.LLM.MaxRetries,
		MaxTokens:   appConfig.LLM.MaxTokens,
		Temperature: appConfig.LLM.Temperature,
	}
}

// Chat API types (OpenAI-compatible)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		FinishReason string  `json:"finish_reason"`
		Message      Message `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
}

type Client struct {
	config *Config
	http   *commonhttp.Client
	logger logger.Logger
}

func NewClient(cfg *Config, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		http: commonhttp.NewClient(cfg.Timeout, map[string]string{
			"Authorization": "Bearer " + cfg.APIKey,
			"Content-Type":  "application/json",
		}),
		logger: log.With(map[string]interface{}{
			"component": "llm",
			"model":     cfg.Model,
		}),
	}
}

// Complete sends one chat request and returns the first choice's text.
// Transport errors, 429 and 5xx are retried with exponential backoff.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMRequestFailed, err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"

	var resp *commonhttp.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrLLMTimeout
			}
		}

		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrLLMRequestFailed, err)
		}

		resp, lastErr = c.http.Do(ctx, req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(resp.Body), 200))
			if !retryableStatus(resp.StatusCode) {
				return "", fmt.Errorf("%w: %v", ErrLLMRequestFailed, lastErr)
			}
			resp = nil
		}

		if ctx.Err() != nil {
			return "", ErrLLMTimeout
		}

		c.logger.Warn("llm request failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   lastErr,
		})
	}

	if lastErr != nil {
		if isTimeout(lastErr) {
			return "", ErrLLMTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrLLMRequestFailed, lastErr)
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrLLMRequestFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrLLMRequestFailed)
	}

	fields := map[string]interface{}{
		"finishReason": parsed.Choices[0].FinishReason,
	}
	if parsed.Usage != nil {
		fields["promptTokens"] = parsed.Usage.PromptTokens
		fields["completionTokens"] = parsed.Usage.CompletionTokens
	}
	c.logger.Debug("llm completion received", fields)

	return parsed.Choices[0].Message.Content, nil
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
