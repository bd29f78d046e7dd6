package vapi

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
)

// ErrUpstream wraps any failure talking to the calling service. Callers log
// the detail and surface a generic failure; upstream errors never cross the
// API boundary verbatim.
var ErrUpstream = errors.New("vapi: upstream request failed")

// Client is the REST adapter for the calling service.
//
// Rules (same as any provider adapter here):
// - No service calls outside this adapter.
// - Responses are passed through as raw maps; the service's response shape
//   is not ours to freeze into structs.
type Client struct {
	baseURL     string
	apiKey      string
	assistantID string
	http        *http.Client
}

// NewClient builds a client. An empty apiKey is allowed; Configured()
// reports false and every request fails fast.
func NewClient(baseURL, apiKey, assistantID string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		assistantID: assistantID,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether real outbound calls can be placed.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.assistantID != ""
}

// CreateCallRequest is the outbound call creation payload.
type CreateCallRequest struct {
	Customer           Customer       `json:"customer"`
	AssistantOverrides map[string]any `json:"assistantOverrides,omitempty"`
}

type Customer struct {
	Number string `json:"number"`
	Name   string `json:"name,omitempty"`
}

// CreateCall places an outbound call and returns the raw service response.
// The assistant id from config is always attached.
func (c *Client) CreateCall(ctx context.Context, req CreateCallRequest) (map[string]any, error) {
	body := map[string]any{
		"assistantId": c.assistantID,
		"customer":    req.Customer,
	}
	if len(req.AssistantOverrides) > 0 {
		body["assistantOverrides"] = req.AssistantOverrides
	}
	return c.do(ctx, http.MethodPost, "/call", body)
}

// GetCall fetches the service's view of a single call.
func (c *Client) GetCall(ctx context.Context, callID string) (map[string]any, error) {
	if callID == "" {
		return nil, fmt.Errorf("vapi: call id is required")
	}
	return c.do(ctx, http.MethodGet, "/call/"+callID, nil)
}

// GetAssistant fetches assistant metadata.
func (c *Client) GetAssistant(ctx context.Context, assistantID string) (map[string]any, error) {
	if assistantID == "" {
		return nil, fmt.Errorf("vapi: assistant id is required")
	}
	return c.do(ctx, http.MethodGet, "/assistant/"+assistantID, nil)
}

// ListPhoneNumbers lists numbers provisioned at the service.
func (c *Client) ListPhoneNumbers(ctx context.Context) (any, error) {
	return c.doRaw(ctx, http.MethodGet, "/phone-number", nil)
}

// ListCalls lists calls as the service sees them.
func (c *Client) ListCalls(ctx context.Context) (any, error) {
	return c.doRaw(ctx, http.MethodGet, "/call", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (map[string]any, error) {
	out, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	m, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected response shape for %s %s", ErrUpstream, method, path)
	}
	return m, nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, body any) (any, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key not configured", ErrUpstream)
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("vapi: encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("vapi: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", ErrUpstream, method, path, resp.StatusCode, truncate(data, 512))
	}

	var out any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
		}
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
