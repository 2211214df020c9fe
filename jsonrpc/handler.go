package jsonrpc

import "context"

// Handler defines the interface for handling JSON-RPC requests.
// A nil response means the request was a notification and nothing
// is written back to the client.
type Handler interface {
	Handle(ctx context.Context, request Request) *Response
}
