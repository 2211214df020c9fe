package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/wxbridge/wxbridge/jsonrpc"
)

// maxLineBytes caps how large a single request frame may grow. Longer lines
// are drained and skipped like any other malformed input.
const maxLineBytes = 1024 * 1024

var errLineTooLong = errors.New("request line exceeds maximum length")

// Transport handles the communication between stdin/stdout and the bridge
type Transport struct {
	handler jsonrpc.Handler
	reader  *bufio.Reader
	writer  *json.Encoder
	bufOut  *bufio.Writer
	logger  *slog.Logger
}

// NewStdioTransport creates a new stdio transport
func NewStdioTransport(handler jsonrpc.Handler, in io.Reader, out io.Writer, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	bufOut := bufio.NewWriter(out)
	return &Transport{
		handler: handler,
		reader:  bufio.NewReaderSize(in, 64*1024),
		writer:  json.NewEncoder(bufOut),
		bufOut:  bufOut,
		logger:  logger,
	}
}

// Run starts the transport loop, reading one request per line until the
// input stream ends. Lines that do not decode, or that exceed the frame
// size cap, are reported on the side channel only and skipped: there is no
// id to correlate an error response to. A bad line never terminates the
// loop.
func (t *Transport) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			line, err := t.readLine()
			if err != nil {
				if errors.Is(err, errLineTooLong) {
					t.logger.Warn("skipping oversized request line", "limit", maxLineBytes)
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("reading input: %w", err)
			}

			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}

			var request jsonrpc.Request
			if err := json.Unmarshal(line, &request); err != nil {
				t.logger.Warn("skipping malformed request line", "error", err)
				continue
			}

			response := t.handler.Handle(ctx, request)
			if response == nil {
				continue
			}

			if err := t.writer.Encode(response); err != nil {
				t.logger.Error("encoding response", "error", err)
			}
			t.bufOut.Flush()
		}
	}
}

// readLine reads one newline-terminated frame, enforcing maxLineBytes.
// An over-long line is consumed to its end so the next read starts on a
// fresh frame, then reported as errLineTooLong.
func (t *Transport) readLine() ([]byte, error) {
	var line []byte
	for {
		chunk, isPrefix, err := t.reader.ReadLine()
		if err != nil {
			return nil, err
		}

		if len(line)+len(chunk) > maxLineBytes {
			for isPrefix {
				if _, isPrefix, err = t.reader.ReadLine(); err != nil {
					return nil, err
				}
			}
			return nil, errLineTooLong
		}

		line = append(line, chunk...)
		if !isPrefix {
			return line, nil
		}
	}
}
