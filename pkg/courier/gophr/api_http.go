package gophr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPAPIClient implements APIClient using real HTTP calls to the
// Gophr commercial API.
type HTTPAPIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPAPIClient creates a new HTTP-based API client.
func NewHTTPAPIClient(baseURL string) *HTTPAPIClient {
	return &HTTPAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetQuote prices a prospective job.
func (c *HTTPAPIClient) GetQuote(ctx context.Context, req *QuoteRequest) (*QuoteResult, error) {
	var result QuoteResult
	if err := c.postForm(ctx, "/v1/commercial-api/get-a-quote", req.Values(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateConfirmJob creates and confirms a job in one call.
func (c *HTTPAPIClient) CreateConfirmJob(ctx context.Context, req *JobRequest) (*JobResult, error) {
	var result JobResult
	if err := c.postForm(ctx, "/v1/commercial-api/create-confirm-job", req.Values(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// postForm sends a form-url-encoded POST and decodes the data block of the
// response envelope into out. Gophr signals business errors with
// success=false inside a 200 response, so both paths go through the
// envelope check.
func (c *HTTPAPIClient) postForm(ctx context.Context, path string, values url.Values, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{
				Code:       "HTTP_ERROR",
				Message:    fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
				StatusCode: resp.StatusCode,
			}
		}
		return fmt.Errorf("decoding response: %w", err)
	}

	if !envelope.Success {
		apiErr := envelope.Error
		if apiErr == nil {
			apiErr = &APIError{Code: "UNKNOWN", Message: "request failed"}
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decoding data: %w", err)
		}
	}
	return nil
}

// Verify interface compliance.
var _ APIClient = (*HTTPAPIClient)(nil)
