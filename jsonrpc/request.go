package jsonrpc

import (
	"bytes"
	"encoding/json"
)

// Version is the JSON-RPC protocol version
const Version = "2.0"

// Request represents a JSON-RPC request object. The ID is kept as raw JSON
// so that an absent id stays absent and is echoed back byte for byte,
// whether the client sent a string or a number.
type Request struct {
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// NewRequest creates a new Request object
func NewRequest(method string, params json.RawMessage, id json.RawMessage) Request {
	return Request{
		Version: Version,
		Method:  method,
		Params:  params,
		ID:      id,
	}
}

// IsNotification reports whether the request carries no id and therefore
// must never produce a response.
func (r Request) IsNotification() bool {
	return len(r.ID) == 0 || bytes.Equal(r.ID, []byte("null"))
}
