package venue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trading-console/internal/interfaces"
	"trading-console/internal/logger"
)

// ErrMissingCredentials is returned by signed endpoints when the client was
// built without an API key and secret.
var ErrMissingCredentials = errors.New("api key and secret are not configured")

// Client talks to the venue's REST API. Market-data endpoints are public;
// account endpoints are signed with the configured credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
	recvWindow int64
}

var _ interfaces.Exchange = (*Client)(nil)

// ClientOption configures the venue client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL sets the base URL for all requests
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithCredentials sets the API key and secret used by signed endpoints
func WithCredentials(key, secret string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
		c.apiSecret = secret
	}
}

// WithRecvWindow sets the signed-request validity window in milliseconds
func WithRecvWindow(ms int64) ClientOption {
	return func(c *Client) {
		c.recvWindow = ms
	}
}

// NewClient creates a venue REST client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:    "https://api.binance.com",
		recvWindow: 5000,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCredentials reports whether signed endpoints can be used.
func (c *Client) HasCredentials() bool {
	return c.apiKey != "" && c.apiSecret != ""
}

// APIError is a non-2xx response from the venue.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("venue API error: status=%d code=%d msg=%q", e.Status, e.Code, e.Message)
}

// AsAPIError extracts an APIError from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// publicGet performs an unauthenticated GET.
func (c *Client) publicGet(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, false, out)
}

// keyedCall performs a request authenticated by API key header only.
func (c *Client) keyedCall(ctx context.Context, method, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return ErrMissingCredentials
	}
	return c.do(ctx, method, path, params, true, out)
}

// signedCall performs a request with a timestamp, recvWindow and HMAC
// signature appended to the query string.
func (c *Client) signedCall(ctx context.Context, method, path string, params url.Values, out any) error {
	if !c.HasCredentials() {
		return ErrMissingCredentials
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("recvWindow", strconv.FormatInt(c.recvWindow, 10))
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("signature", sign(c.apiSecret, params.Encode()))
	return c.do(ctx, method, path, params, true, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, keyed bool, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	if keyed {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response for %s failed: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var detail struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if json.Unmarshal(body, &detail) == nil {
			apiErr.Code = detail.Code
			apiErr.Message = detail.Msg
		}
		logger.Warn(ctx, "Venue API call rejected", "path", path, "status", resp.StatusCode, "code", apiErr.Code)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response for %s failed: %w", path, err)
	}
	return nil
}

// parseDecimal converts the venue's decimal-string wire format. Malformed
// values decode as zero; the venue does not send malformed numbers.
func parseDecimal(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
