// ABOUTME: OpenAI-compatible chat completions client
// ABOUTME: Requests go through the shared HTTPClient with bearer auth and a per-call timeout

package openai

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

	coreerrors "aiml-digests/core/errors"
	"aiml-digests/core/interfaces"
)

const (
	// DefaultBaseURL is the public OpenAI API root
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout bounds a single completion call
	DefaultTimeout = 120 * time.Second

	maxErrorBody = 1024
)

// Client implements interfaces.LLMClient against /chat/completions
type Client struct {
	http    interfaces.HTTPClient
	apiKey  string
	baseURL string
	timeout time.Duration
}

// NewClient creates a client; an empty baseURL selects DefaultBaseURL and a zero timeout DefaultTimeout
func NewClient(httpClient interfaces.HTTPClient, apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    httpClient,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Enabled reports true; a Client is only built when an API key exists
func (c *Client) Enabled() bool { return true }

// Complete sends one chat completion and returns the first choice's content, trimmed
func (c *Client) Complete(ctx context.Context, req interfaces.ChatRequest) (string, error) {
	if c.http == nil {
		return "", errors.New("HTTP client not configured")
	}

	var msgs []message
	if req.SystemPrompt != "" {
		msgs = append(msgs, message{Role: "system", Content: req.SystemPrompt})
	}
	msgs = append(msgs, message{Role: "user", Content: req.UserPrompt})

	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.Post(ctx, c.baseURL+"/chat/completions", bytes.NewReader(body), map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body().Close()

	if resp.StatusCode() != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body(), maxErrorBody))
		return "", &coreerrors.ExternalAPIError{
			API:        "openai",
			StatusCode: resp.StatusCode(),
			Message:    strings.TrimSpace(string(payload)),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body()).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", &coreerrors.ExternalAPIError{API: "openai", StatusCode: resp.StatusCode(), Message: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat response contained no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

var _ interfaces.LLMClient = (*Client)(nil)
