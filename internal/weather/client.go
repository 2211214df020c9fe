package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const (
	// ToolName is the single tool this bridge exposes
	ToolName = "weather_info"

	probePath  = "/mcp"
	lookupPath = "/mcp/tool/" + ToolName
)

// ErrUnreachable marks transport-level failures where the backend could not
// be reached at all, as opposed to the backend answering with an error.
var ErrUnreachable = errors.New("weather backend unreachable")

// StatusError reports a non-200 response from the backend
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// Arguments are the arguments of a weather_info tool call. Cities is
// omitted when empty so an absent arguments object posts {} on the wire.
type Arguments struct {
	Cities []string `json:"cities,omitempty"`
}

// Client issues requests against the weather backend's HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for backend requests
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger for backend diagnostics
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Probe checks backend liveness with a single GET. Intended for the one-time
// startup check; a failure is advisory, not fatal.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+probePath, nil)
	if err != nil {
		return fmt.Errorf("creating probe request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Lookup requests weather for the given cities. Failures are classified so
// the caller can map them onto the wire error taxonomy: *StatusError for a
// non-200 answer, ErrUnreachable when no connection could be made, and a
// plain error for everything else (timeouts included).
func (c *Client) Lookup(ctx context.Context, args Arguments) (*Report, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encoding arguments: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+lookupPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling weather backend", "cities", len(args.Cities))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, fmt.Errorf("weather lookup timed out: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading backend response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	var report Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("decoding backend response: %w", err)
	}
	if report.Timestamp == "" || report.Results == nil {
		return nil, errors.New("malformed backend response: missing timestamp or results")
	}
	return &report, nil
}

// errorMessage extracts the backend's error field, falling back to a
// generic message when the body is absent or not decodable.
func errorMessage(body []byte) string {
	var decoded struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error != "" {
		return decoded.Error
	}
	return "HTTP request failed"
}
