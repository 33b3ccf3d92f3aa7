package ecofleet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPAPIClient implements APIClient using real HTTP calls to Ecofleet with
// a static bearer key.
type HTTPAPIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetQuote prices a prospective order against the rate card.
func (c *HTTPAPIClient) GetQuote(ctx context.Context, req *OrderPayload) (*QuoteResult, error) {
	var result QuoteResult
	if err := c.post(ctx, "/api/v1/quote", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateOrder submits an order.
func (c *HTTPAPIClient) CreateOrder(ctx context.Context, req *OrderPayload) (*OrderResult, error) {
	var result OrderResult
	if err := c.post(ctx, "/api/v1/order", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// post sends an authenticated JSON POST and decodes the response into out.
func (c *HTTPAPIClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseError(respBody, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func parseError(body []byte, statusCode int) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		apiErr = APIError{
			Code:    "HTTP_ERROR",
			Message: strings.TrimSpace(string(body)),
		}
	}
	apiErr.StatusCode = statusCode
	return &apiErr
}

// Verify interface compliance.
var _ APIClient = (*HTTPAPIClient)(nil)
