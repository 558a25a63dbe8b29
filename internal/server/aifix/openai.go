package aifix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dkravetz/sixtyfix/internal/server/config"
	"golang.org/x/time/rate"
)

const (
	defaultRateLimit = 2  // requests per second
	defaultBurst     = 4
)

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []openAIMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAIClient calls an OpenAI-compatible chat-completion endpoint. The
// HTTP client carries a hard timeout so a stalled backend degrades to the
// local template instead of hanging the request.
type OpenAIClient struct {
	model       string
	apiKey      string
	baseURL     string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewOpenAIClient builds a client from the AI configuration. The caller is
// expected to have checked that APIKey is set.
func NewOpenAIClient(cfg config.AIConfig) *OpenAIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &OpenAIClient{
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}
}

// Complete sends the prompt and returns the generated text.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	req := openAIRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp openAIError
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var aiResp openAIResponse
	if err := json.Unmarshal(body, &aiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(aiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return aiResp.Choices[0].Message.Content, nil
}
