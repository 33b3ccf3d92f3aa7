package streetstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPAPIClient implements APIClient using real HTTP calls to StreetStream.
// StreetStream issues a session token per login and returns it in the
// Authorization response header, so each operation logs in first and carries
// that token on the actual call.
type HTTPAPIClient struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		email:    cfg.Email,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetEstimate prices a prospective point-to-point job.
func (c *HTTPAPIClient) GetEstimate(ctx context.Context, req *EstimateRequest) (*EstimateResult, error) {
	token, err := c.login(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("startPostcode", req.StartPostcode)
	query.Set("endPostcode", req.EndPostcode)
	query.Set("packageTypeId", req.PackageTypeID)

	var result EstimateResult
	if err := c.do(ctx, http.MethodGet, "/api/estimate?"+query.Encode(), token, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateJob submits a point-to-point job.
func (c *HTTPAPIClient) CreateJob(ctx context.Context, req *JobRequest) (*JobResult, error) {
	token, err := c.login(ctx)
	if err != nil {
		return nil, err
	}

	var result JobResult
	if err := c.do(ctx, http.MethodPost, "/api/job/pointtopoint", token, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// login exchanges credentials for a session token. The token comes back in
// the Authorization response header, not the body.
func (c *HTTPAPIClient) login(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling login: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/tokens", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating login request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending login request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{
			Code:       ErrCodeAuthFailed,
			Message:    fmt.Sprintf("login returned status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	token := resp.Header.Get("Authorization")
	if token == "" {
		return "", &APIError{
			Code:       ErrCodeAuthFailed,
			Message:    "login response missing authorization header",
			StatusCode: resp.StatusCode,
		}
	}
	return token, nil
}

// do performs an authenticated request and decodes the JSON response.
func (c *HTTPAPIClient) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", token)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

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
			Code:    ErrCodeBadRequest,
			Message: strings.TrimSpace(string(body)),
		}
	}
	apiErr.StatusCode = statusCode
	return &apiErr
}

// Verify interface compliance.
var _ APIClient = (*HTTPAPIClient)(nil)
