package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golovatskygroup/mcp-netlify/internal/netlify"
	"github.com/golovatskygroup/mcp-netlify/internal/tools"
	"github.com/golovatskygroup/mcp-netlify/pkg/mcp"
)

func newTestServer(t *testing.T, input string, handler http.HandlerFunc) (*Server, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	reg, err := tools.NewRegistry()
	require.NoError(t, err)
	cl := netlify.NewClientWithOptions(netlify.Options{BaseURL: srv.URL, Token: "t"})

	out := &bytes.Buffer{}
	return New(tools.NewDispatcher(reg, cl), strings.NewReader(input), out, Options{}), out
}

// responses indexes every written response by its numeric id.
func responses(t *testing.T, out *bytes.Buffer) map[int]mcp.Response {
	t.Helper()
	got := map[int]mcp.Response{}
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		var resp struct {
			mcp.Response
			ID int `json:"id"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &resp), sc.Text())
		resp.Response.ID = resp.ID
		got[resp.ID] = resp.Response
	}
	return got
}

func lines(msgs ...string) string { return strings.Join(msgs, "\n") + "\n" }

func TestServer_InitializeAndList(t *testing.T) {
	in := lines(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	)
	s, out := newTestServer(t, in, http.NotFound)
	require.NoError(t, s.Run(context.Background()))

	got := responses(t, out)
	require.Len(t, got, 3)

	var init mcp.InitializeResult
	require.NoError(t, json.Unmarshal(got[1].Result, &init))
	assert.Equal(t, "2024-11-05", init.ProtocolVersion)
	assert.Equal(t, "netlify-mcp-server", init.ServerInfo.Name)
	assert.NotNil(t, init.Capabilities.Tools)
	assert.Contains(t, init.Instructions, "createSiteFromGitHub")

	var list mcp.ListToolsResult
	require.NoError(t, json.Unmarshal(got[2].Result, &list))
	require.Len(t, list.Tools, 4)
	assert.Equal(t, "createSiteFromGitHub", list.Tools[0].Name)
	for _, tool := range list.Tools {
		assert.True(t, json.Valid(tool.InputSchema))
	}

	assert.JSONEq(t, `{}`, string(got[3].Result))
}

func TestServer_UnknownMethod(t *testing.T) {
	s, out := newTestServer(t, lines(`{"jsonrpc":"2.0","id":7,"method":"resources/list"}`), http.NotFound)
	require.NoError(t, s.Run(context.Background()))

	got := responses(t, out)
	require.NotNil(t, got[7].Error)
	assert.Equal(t, mcp.MethodNotFound, got[7].Error.Code)
}

func TestServer_MalformedLineGetsParseError(t *testing.T) {
	in := lines(
		`{not json`,
		``,
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
	)
	s, out := newTestServer(t, in, http.NotFound)
	require.NoError(t, s.Run(context.Background()))

	first, _, _ := strings.Cut(out.String(), "\n")
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`, first)

	got := responses(t, out)
	require.Len(t, got, 2)
	assert.Nil(t, got[1].Error)
}

func TestServer_InvalidRequest(t *testing.T) {
	in := lines(
		`{"id":1,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":2}`,
		`{"id":3,"method":"tools/call","params":{"name":"listSites"}}`,
	)
	var hits atomic.Int32
	s, out := newTestServer(t, in, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
	require.NoError(t, s.Run(context.Background()))

	got := responses(t, out)
	require.Len(t, got, 3)
	for id := 1; id <= 3; id++ {
		require.NotNil(t, got[id].Error, "id %d", id)
		assert.Equal(t, mcp.InvalidRequest, got[id].Error.Code)
	}
	assert.Zero(t, hits.Load())
}

func TestServer_CallToolSuccess(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sites/abc", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"abc","name":"demo"}`))
	}
	in := lines(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"getSite","arguments":{"siteId":"abc"}}}`)
	s, out := newTestServer(t, in, handler)
	require.NoError(t, s.Run(context.Background()))

	got := responses(t, out)
	require.Nil(t, got[1].Error)

	var result mcp.CallToolResult
	require.NoError(t, json.Unmarshal(got[1].Result, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	assert.False(t, result.IsError)
	assert.JSONEq(t, `{"success":true,"site":{"id":"abc","name":"demo"}}`, result.Content[0].Text)
	assert.Contains(t, result.Content[0].Text, "\n  ")
}

func TestServer_CallToolErrorsMapToRPCCodes(t *testing.T) {
	var hits atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method == http.MethodGet && r.URL.Path == "/sites/missing-site" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}
	in := lines(
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope","arguments":{}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"createSiteFromGitHub","arguments":{"name":"x","repo":"bad","buildCommand":"b","publishDir":"d"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"getSite","arguments":{"siteId":"missing-site"}}}`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"listSites"}}`,
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":"oops"}`,
	)
	s, out := newTestServer(t, in, handler)
	require.NoError(t, s.Run(context.Background()))

	got := responses(t, out)
	require.Len(t, got, 5)

	assert.Equal(t, mcp.MethodNotFound, got[1].Error.Code)
	assert.Equal(t, "Unknown tool: nope", got[1].Error.Message)

	assert.Equal(t, mcp.InvalidParams, got[2].Error.Code)

	assert.Equal(t, mcp.InvalidParams, got[3].Error.Code)
	assert.Equal(t, "Site not found: missing-site", got[3].Error.Message)

	assert.Equal(t, mcp.InternalError, got[4].Error.Code)
	assert.Equal(t, "Failed to list sites: boom", got[4].Error.Message)

	assert.Equal(t, mcp.InvalidParams, got[5].Error.Code)

	assert.Equal(t, int32(2), hits.Load())
}

func TestServer_StopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	reg, err := tools.NewRegistry()
	require.NoError(t, err)
	s := New(tools.NewDispatcher(reg, netlify.NewClientWithOptions(netlify.Options{Token: "t"})), pr, io.Discard, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}

	// The input was closed, so the reader goroutine is no longer blocked on it.
	_, err = pw.Write([]byte("{}\n"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
