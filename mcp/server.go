package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wxbridge/wxbridge/internal/weather"
	"github.com/wxbridge/wxbridge/jsonrpc"
)

const (
	serverName    = "wxbridge"
	serverVersion = "0.3.0"

	// defaultCallTimeout bounds a single backend call so one stuck request
	// cannot hang the process indefinitely
	defaultCallTimeout = 10 * time.Second
)

// Server processes JSON-RPC requests, delegating tool calls to the weather
// backend. It is stateless across requests.
type Server struct {
	client  *weather.Client
	logger  *slog.Logger
	timeout time.Duration
	info    ServerInfo
}

// ServerOption configures a Server
type ServerOption func(*Server) error

// WithClient sets the weather backend client
func WithClient(client *weather.Client) ServerOption {
	return func(s *Server) error {
		if client == nil {
			return fmt.Errorf("weather client cannot be nil")
		}
		s.client = client
		return nil
	}
}

// WithLogger sets the logger for side-channel diagnostics
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithTimeout bounds each backend call
func WithTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		s.timeout = timeout
		return nil
	}
}

// WithServerInfo overrides the advertised server name and version
func WithServerInfo(name, version string) ServerOption {
	return func(s *Server) error {
		if name == "" {
			return fmt.Errorf("server name cannot be empty")
		}
		s.info = ServerInfo{Name: name, Version: version}
		return nil
	}
}

// NewServer creates a new bridge server instance
func NewServer(opts ...ServerOption) (*Server, error) {
	s := &Server{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: defaultCallTimeout,
		info:    ServerInfo{Name: serverName, Version: serverVersion},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.client == nil {
		return nil, fmt.Errorf("no weather client provided")
	}
	return s, nil
}

// Handle processes a single JSON-RPC request and returns a response.
// A nil return means nothing is written back: either the method is a
// notification or the request carried no id to correlate a response to.
func (s *Server) Handle(ctx context.Context, request jsonrpc.Request) *jsonrpc.Response {
	s.logger.Debug("received request", "method", request.Method)

	var response jsonrpc.Response
	switch request.Method {
	case "initialize":
		response = s.handleInitialize(request)
	case "tools/list":
		response = s.handleToolsList(request)
	case "tools/call":
		response = s.handleToolsCall(ctx, request)
	case "ping":
		response = jsonrpc.NewResponse(request.ID, PingResponse{}, nil)
	case "notifications/initialized":
		// fire-and-forget acknowledgment
		return nil
	default:
		response = jsonrpc.NewResponse(request.ID, nil,
			jsonrpc.NewError(jsonrpc.ErrMethodNotFound, fmt.Sprintf("Method not found: %s", request.Method)))
	}

	if request.IsNotification() {
		return nil
	}
	return &response
}

func (s *Server) handleInitialize(request jsonrpc.Request) jsonrpc.Response {
	result := InitializeResponse{
		ProtocolVersion: Version,
		Capabilities: ServerCapabilities{
			Tools: &struct {
				ListChanged bool `json:"listChanged,omitempty"`
			}{},
		},
		ServerInfo: s.info,
	}
	return jsonrpc.NewResponse(request.ID, result, nil)
}

func (s *Server) handleToolsList(request jsonrpc.Request) jsonrpc.Response {
	return jsonrpc.NewResponse(request.ID, ToolsListResponse{Tools: []Tool{weatherTool()}}, nil)
}

func (s *Server) handleToolsCall(ctx context.Context, request jsonrpc.Request) jsonrpc.Response {
	var params ToolCallParams
	if len(request.Params) > 0 {
		if err := json.Unmarshal(request.Params, &params); err != nil {
			s.logger.Error("undecodable tool call params", "error", err)
			return jsonrpc.NewResponse(request.ID, nil,
				jsonrpc.NewError(jsonrpc.ErrInternal, fmt.Sprintf("Internal error: %v", err)))
		}
	}

	if params.Name != weather.ToolName {
		return jsonrpc.NewResponse(request.ID, nil,
			jsonrpc.NewError(jsonrpc.ErrMethodNotFound, fmt.Sprintf("Unknown tool: %s", params.Name)))
	}

	var args weather.Arguments
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			s.logger.Error("undecodable tool call arguments", "error", err)
			return jsonrpc.NewResponse(request.ID, nil,
				jsonrpc.NewError(jsonrpc.ErrInternal, fmt.Sprintf("Internal error: %v", err)))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.client.Lookup(ctx, args)
	if err != nil {
		return jsonrpc.NewResponse(request.ID, nil, s.lookupError(err))
	}

	result := ToolCallResponse{
		Content: []Content{NewTextContent(report.Format())},
	}
	return jsonrpc.NewResponse(request.ID, result, nil)
}

// lookupError maps a backend failure onto the wire error taxonomy: the HTTP
// status code mirrored verbatim for a non-200 answer, -32603 otherwise.
func (s *Server) lookupError(err error) *jsonrpc.Error {
	var statusErr *weather.StatusError
	switch {
	case errors.As(err, &statusErr):
		return jsonrpc.NewStatusError(statusErr.Status, statusErr.Message)
	case errors.Is(err, weather.ErrUnreachable):
		return jsonrpc.NewError(jsonrpc.ErrInternal,
			fmt.Sprintf("Cannot connect to the weather backend. Please ensure the backend server is running at %s.", s.client.BaseURL()))
	default:
		s.logger.Error("weather lookup failed", "error", err)
		return jsonrpc.NewError(jsonrpc.ErrInternal, fmt.Sprintf("Internal error: %v", err))
	}
}

// weatherTool is the static descriptor of the single supported tool
func weatherTool() Tool {
	return Tool{
		Name:        weather.ToolName,
		Description: "Get current weather information for the specified cities",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"cities": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "List of city names (max 20)",
				},
			},
			Required: []string{"cities"},
		},
	}
}
