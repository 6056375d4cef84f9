package hawkbit

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hawkroll/hawkroll/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second

	// apiPrefix is the management-API path prefix shared by all resources
	apiPrefix = "/rest/v1"
)

// Client is an HTTP client for the device-management REST API.
//
// Retries are confined to single HTTP calls: a call that fails with a
// transient error (timeout, connection refused/reset, 5xx) is retried up to
// MaxRetries times with capped exponential backoff before the error
// surfaces. This budget is separate from any higher-level polling loop.
type Client struct {
	// BaseURL is the server base URL (e.g., "https://hawkbit.example.com")
	BaseURL string

	// Username for HTTP Basic Auth
	Username string

	// Password for HTTP Basic Auth
	Password string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool
}

// NewClient creates a new management-API client.
// baseURL: server base URL without the /rest/v1 suffix.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		BaseURL:               strings.TrimRight(baseURL, "/"),
		Username:              username,
		Password:              password,
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// SetInsecureTLS disables server certificate verification. Intended for lab
// instances with self-signed certificates.
func (c *Client) SetInsecureTLS(insecure bool) {
	c.HTTPClient.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
	}
}

// Ping performs a simple reachability and credential check against the
// distribution-set listing endpoint.
func (c *Client) Ping() error {
	_, _, err := c.do(http.MethodGet, "/distributionsets?limit=1", nil)
	return err
}

// do executes one API request with the retry budget applied.
// Returns the response body and status code for any 2xx response; non-2xx
// responses and transport failures are returned as *APIError.
func (c *Client) do(method, path string, body []byte) ([]byte, int, error) {
	var lastErr error
	currentDelay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			logging.LogRetry(method, c.BaseURL+apiPrefix+path, attempt, currentDelay, lastErr)
			time.Sleep(currentDelay)

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		respBody, status, err := c.doAttempt(method, path, body)
		if err == nil {
			return respBody, status, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return nil, 0, err
		}
	}

	return nil, 0, lastErr
}

// doAttempt performs a single API request.
func (c *Client) doAttempt(method, path string, body []byte) ([]byte, int, error) {
	url := c.BaseURL + apiPrefix + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, 0, NewNetworkError("failed to create request", err)
	}

	req.SetBasicAuth(c.Username, c.Password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logging.LogAPIRequest(method, url)
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, NewNetworkError("request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	logging.LogAPIResponse(method, url, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, 0, NewAuthError("authentication failed (check credentials)")
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, NewNetworkError("failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("%s %s failed with status %d", method, path, resp.StatusCode)
		if len(respBody) > 0 {
			msg += ": " + truncate(string(respBody), 200)
		}
		return nil, 0, NewHTTPError(resp.StatusCode, msg)
	}

	return respBody, resp.StatusCode, nil
}

// getJSON performs a GET and unmarshals the response into out.
// Returns the HTTP status code so callers can distinguish 204 (no content).
func (c *Client) getJSON(path string, out any) (int, error) {
	body, status, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}

	if status == http.StatusNoContent || len(body) == 0 {
		return status, nil
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return 0, NewParseError("failed to parse response", err)
		}
	}
	return status, nil
}

// postJSON performs a POST with a JSON body and unmarshals the response
// into out (when out is non-nil and the response has a body).
func (c *Client) postJSON(path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return NewParseError("failed to encode request body", err)
		}
	}

	respBody, _, err := c.do(http.MethodPost, path, body)
	if err != nil {
		return err
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return NewParseError("failed to parse response", err)
		}
	}
	return nil
}

// putJSON performs a PUT with a JSON body.
func (c *Client) putJSON(path string, in any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return NewParseError("failed to encode request body", err)
	}

	_, _, err = c.do(http.MethodPut, path, body)
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
