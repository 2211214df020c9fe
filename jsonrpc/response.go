package jsonrpc

import "encoding/json"

// Result represents an arbitrary success payload
type Result interface{}

// Response represents a JSON-RPC response object
type Response struct {
	Version string          `json:"jsonrpc"`
	Result  Result          `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// NewResponse creates a new Response object echoing the request's raw id
func NewResponse(id json.RawMessage, result Result, err *Error) Response {
	return Response{
		Version: Version,
		ID:      id,
		Result:  result,
		Error:   err,
	}
}
