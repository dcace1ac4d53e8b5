package client

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

	"github.com/alfredjeanlab/mirage/internal/model"
)

var (
	// ErrTransport wraps network-level failures (dial, TLS, timeouts, reads).
	ErrTransport = errors.New("mirage: transport failure")
	// ErrMalformedResponse wraps response bodies that are not the expected JSON object.
	ErrMalformedResponse = errors.New("mirage: malformed response")
)

// HTTPClient implements MirageClient over HTTP POST with JSON bodies.
type HTTPClient struct {
	baseURL    string
	agent      string
	httpClient *http.Client
	observer   Observer
}

var _ MirageClient = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithAgent overrides the User-Agent value.
func WithAgent(agent string) Option {
	return func(c *HTTPClient) {
		if agent != "" {
			c.agent = agent
		}
	}
}

// WithTimeout sets an overall per-request timeout. Zero keeps the
// net/http default (no timeout).
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver reports every request to o.
func WithObserver(o Observer) Option {
	return func(c *HTTPClient) { c.observer = o }
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "https://api.mirage.example/").
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		agent:      DefaultAgent,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// BaseURL returns the normalized base URL.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// --- Session ---

func (c *HTTPClient) Connect(ctx context.Context, deviceID model.DeviceID) (*model.Session, error) {
	var session model.Session
	if err := c.doJSON(ctx, EndpointConnect, &ConnectRequest{DeviceID: deviceID}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// --- Transactions ---

func (c *HTTPClient) SendTransaction(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error) {
	var resp TransactionResponse
	if err := c.doJSON(ctx, EndpointTransaction, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) TicketResult(ctx context.Context, req *TicketRequest) (*model.TicketStatus, error) {
	var status model.TicketStatus
	if err := c.doJSON(ctx, EndpointResult, req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// --- Calls ---

// CallMethod returns the response body unparsed.
func (c *HTTPClient) CallMethod(ctx context.Context, req *TransactionRequest) ([]byte, error) {
	return c.do(ctx, EndpointCallMethod, req)
}

func (c *HTTPClient) UploadABI(ctx context.Context, abi string) (string, error) {
	var resp ABIResponse
	if err := c.doJSON(ctx, EndpointUploadABI, &ABIRequest{ABI: abi}, &resp); err != nil {
		return "", err
	}
	return resp.ABIHash, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON posts body and decodes the JSON object response into result.
func (c *HTTPClient) doJSON(ctx context.Context, endpoint string, body, result any) error {
	start := time.Now()
	respBody, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.observe(endpoint, outcomeOf(err), start)
		return err
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		c.observe(endpoint, OutcomeMalformed, start)
		return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, endpoint, err)
	}
	c.observe(endpoint, OutcomeOK, start)
	return nil
}

// do posts body and returns the raw response. An error status that came
// with a body still returns the body, so callers see e.g. revert reasons.
func (c *HTTPClient) do(ctx context.Context, endpoint string, body any) ([]byte, error) {
	start := time.Now()
	respBody, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.observe(endpoint, outcomeOf(err), start)
		var apiErr *APIError
		if errors.As(err, &apiErr) && len(respBody) > 0 {
			return respBody, nil
		}
		return nil, err
	}
	c.observe(endpoint, OutcomeOK, start)
	return respBody, nil
}

// post sends body to endpoint. On an error status it returns the response
// body along with the *APIError.
func (c *HTTPClient) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.agent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %w", ErrTransport, endpoint, err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return respBody, &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return respBody, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return respBody, nil
}

func (c *HTTPClient) observe(endpoint, outcome string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, outcome, time.Since(start))
	}
}

func outcomeOf(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return OutcomeAPI
	case errors.Is(err, ErrTransport):
		return OutcomeTransport
	default:
		return OutcomeMalformed
	}
}
