package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/reachpoint/crm-backend/internal/config"
)

// FallbackTemplate is the deterministic campaign message used when text
// generation is unavailable. It carries the same personalization tokens the
// generated copy would, so downstream personalization still functions.
const FallbackTemplate = "Hi {customername},\n\nWe have an exclusive offer picked out just for you. Don't miss out!\n\nThe ReachPoint Team"

// FallbackSubject is the deterministic subject line paired with FallbackTemplate
const FallbackSubject = "Something special for you, {customerFirstName}"

// Generator produces campaign message copy from an operator prompt
type Generator interface {
	Generate(ctx context.Context, prompt, audienceDescription string) (string, error)
}

// Client calls a chat-completions style text generation API
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// MockClient returns canned copy for local development
type MockClient struct{}

// NewClient creates a new text generation Client
func NewClient(cfg *config.Config) Generator {
	return &Client{
		baseURL: cfg.TextGen.BaseURL,
		apiKey:  cfg.TextGen.APIKey,
		model:   cfg.TextGen.Model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewMockClient creates a new MockClient
func NewMockClient() Generator {
	return &MockClient{}
}

// Generate asks the API for campaign copy targeting the described audience.
// Callers substitute FallbackTemplate when an error is returned.
func (c *Client) Generate(ctx context.Context, prompt, audienceDescription string) (string, error) {
	system := "You write short marketing emails. Address the reader as {customername}. " +
		"Target audience: " + audienceDescription
	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", errors.New("text generation returned no content")
	}

	return response.Choices[0].Message.Content, nil
}

// Generate returns the fallback template so local flows stay deterministic
func (c *MockClient) Generate(ctx context.Context, prompt, audienceDescription string) (string, error) {
	return FallbackTemplate, nil
}
