package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Transport handles MCP communication over newline-delimited JSON streams
type Transport struct {
	reader *bufio.Reader
	writer io.Writer
	mu     sync.Mutex
}

// NewTransport creates a new stdio transport
func NewTransport(r io.Reader, w io.Writer) *Transport {
	return &Transport{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// ReadMessage reads the next JSON-RPC message. Blank lines are skipped.
// A line that is not valid JSON yields a *ParseErr so callers can keep reading.
func (t *Transport) ReadMessage() (*Request, error) {
	for {
		line, err := t.reader.ReadBytes('\n')
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			if err != nil {
				return nil, err
			}
			continue
		}

		var req Request
		if uerr := json.Unmarshal(trimmed, &req); uerr != nil {
			return nil, &ParseErr{Line: string(trimmed), Err: uerr}
		}
		return &req, nil
	}
}

// WriteResponse writes a JSON-RPC response
func (t *Transport) WriteResponse(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return t.writeLine(data)
}

func (t *Transport) writeLine(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := fmt.Fprintf(t.writer, "%s\n", data)
	return err
}

// ParseErr reports a line that could not be decoded as a JSON-RPC message.
type ParseErr struct {
	Line string
	Err  error
}

func (e *ParseErr) Error() string {
	return fmt.Sprintf("failed to parse message: %v", e.Err)
}

func (e *ParseErr) Unwrap() error { return e.Err }
