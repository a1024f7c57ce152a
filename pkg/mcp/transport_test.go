package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportReadMessageSkipsBlankLines(t *testing.T) {
	in := strings.NewReader("\n  \n{\"jsonrpc\":\"2.0\",\"id\":1,\"method\":\"ping\"}\n")
	tr := NewTransport(in, io.Discard)

	req, err := tr.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "ping", req.Method)
	assert.False(t, req.IsNotification())

	_, err = tr.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTransportReadMessageWithoutTrailingNewline(t *testing.T) {
	tr := NewTransport(strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`), io.Discard)

	req, err := tr.ReadMessage()
	require.NoError(t, err)
	assert.True(t, req.IsNotification())
}

func TestTransportReadMessageParseError(t *testing.T) {
	tr := NewTransport(strings.NewReader("not json\n{\"jsonrpc\":\"2.0\",\"id\":2,\"method\":\"ping\"}\n"), io.Discard)

	_, err := tr.ReadMessage()
	var perr *ParseErr
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "not json", perr.Line)

	req, err := tr.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "ping", req.Method)
}

func TestTransportWriteResponse(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTransport(strings.NewReader(""), &buf)

	resp, err := NewResponse(7, map[string]any{"ok": true})
	require.NoError(t, err)
	require.NoError(t, tr.WriteResponse(resp))
	require.NoError(t, tr.WriteResponse(NewErrorResponse(8, MethodNotFound, "nope")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Nil(t, first.Error)
	assert.JSONEq(t, `{"ok":true}`, string(first.Result))

	var second Response
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.NotNil(t, second.Error)
	assert.Equal(t, MethodNotFound, second.Error.Code)
}
