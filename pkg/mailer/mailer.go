package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/reachpoint/crm-backend/internal/config"
)

// Email is one personalized message ready for delivery
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// SendResult is the settled outcome of one delivery attempt. Per-recipient
// failures are reported through the result, never raised as errors, so the
// dispatcher can account for them without aborting a wave.
type SendResult struct {
	Success   bool
	MessageID string
	Error     string
}

// Mailer represents an outbound mail gateway. The handle is created at
// startup, health-checked, and closed at shutdown; it is handed to the
// dispatcher rather than held as ambient global state.
type Mailer interface {
	Send(ctx context.Context, email *Email) *SendResult
	HealthCheck(ctx context.Context) error
	Close() error
}

// HTTPGateway delivers mail through a JSON-over-HTTP mail provider API
type HTTPGateway struct {
	baseURL    string
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
}

// MockGateway simulates deliveries for local development and testing
type MockGateway struct{}

// NewHTTPGateway creates a new HTTPGateway
func NewHTTPGateway(cfg *config.Config) Mailer {
	return &HTTPGateway{
		baseURL:   cfg.Mail.BaseURL,
		apiKey:    cfg.Mail.APIKey,
		fromEmail: cfg.Mail.FromEmail,
		fromName:  cfg.Mail.FromName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewMockGateway creates a new MockGateway
func NewMockGateway() Mailer {
	return &MockGateway{}
}

// Send delivers one email through the provider API. Any transport or
// provider error is folded into the returned result.
func (g *HTTPGateway) Send(ctx context.Context, email *Email) *SendResult {
	requestBody := map[string]interface{}{
		"from": map[string]string{
			"email": g.fromEmail,
			"name":  g.fromName,
		},
		"to":      email.To,
		"subject": email.Subject,
		"text":    email.Text,
		"html":    email.HTML,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return &SendResult{Error: fmt.Sprintf("failed to marshal request body: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return &SendResult{Error: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &SendResult{Error: fmt.Sprintf("failed to send request: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &SendResult{Error: fmt.Sprintf("failed to read response body: %v", err)}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return &SendResult{Error: fmt.Sprintf("request failed with status %d: %s", resp.StatusCode, string(body))}
	}

	var response struct {
		MessageID string `json:"messageId"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return &SendResult{Error: fmt.Sprintf("failed to parse response: %v", err)}
	}

	return &SendResult{Success: true, MessageID: response.MessageID}
}

// HealthCheck verifies the provider API is reachable
func (g *HTTPGateway) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mail gateway health check failed with status %d", resp.StatusCode)
	}
	return nil
}

// Close releases the gateway's idle connections
func (g *HTTPGateway) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}

// Send simulates a successful delivery
func (g *MockGateway) Send(ctx context.Context, email *Email) *SendResult {
	return &SendResult{
		Success:   true,
		MessageID: fmt.Sprintf("MOCK-MSG-%d", time.Now().UnixNano()),
	}
}

// HealthCheck always succeeds for the mock gateway
func (g *MockGateway) HealthCheck(ctx context.Context) error {
	return nil
}

// Close is a no-op for the mock gateway
func (g *MockGateway) Close() error {
	return nil
}
