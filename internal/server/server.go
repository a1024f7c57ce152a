package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/golovatskygroup/mcp-netlify/internal/tools"
	"github.com/golovatskygroup/mcp-netlify/pkg/mcp"
)

const (
	DefaultName    = "netlify-mcp-server"
	DefaultVersion = "0.1.0"
)

// Options configures a Server.
type Options struct {
	Name    string
	Version string
	Logger  zerolog.Logger
}

// Server is the MCP stdio front of the tool dispatcher.
type Server struct {
	in         io.Reader
	transport  *mcp.Transport
	dispatcher *tools.Dispatcher
	info       mcp.ServerInfo
	log        zerolog.Logger
}

// New creates a server reading requests from r and writing responses to w.
func New(d *tools.Dispatcher, r io.Reader, w io.Writer, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	return &Server{
		in:         r,
		transport:  mcp.NewTransport(r, w),
		dispatcher: d,
		info:       mcp.ServerInfo{Name: opts.Name, Version: opts.Version},
		log:        opts.Logger,
	}
}

// Run serves until the input ends or ctx is cancelled. In-flight tool calls
// are waited for before Run returns. On cancel the input is closed when it
// is an io.Closer so the reader goroutine can exit; otherwise it stays
// blocked until the next line or EOF.
func (s *Server) Run(ctx context.Context) error {
	var calls errgroup.Group
	defer calls.Wait()

	msgs := make(chan *mcp.Request)
	done := make(chan error, 1)
	go s.readLoop(ctx, msgs, done)

	s.log.Info().Int("tools", len(s.dispatcher.Registry().List())).Msg("server started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("shutting down")
			if c, ok := s.in.(io.Closer); ok {
				if err := c.Close(); err != nil {
					s.log.Debug().Err(err).Msg("failed to close input")
				}
			}
			return nil
		case err := <-done:
			if err != nil {
				return fmt.Errorf("read request: %w", err)
			}
			s.log.Info().Msg("input closed")
			return nil
		case req := <-msgs:
			if req.Method == "tools/call" && req.JSONRPC == "2.0" {
				calls.Go(func() error {
					s.reply(req, s.handleCallTool(ctx, req))
					return nil
				})
				continue
			}
			s.reply(req, s.handleRequest(req))
		}
	}
}

func (s *Server) readLoop(ctx context.Context, msgs chan<- *mcp.Request, done chan<- error) {
	for {
		req, err := s.transport.ReadMessage()
		if err != nil {
			var perr *mcp.ParseErr
			if errors.As(err, &perr) {
				s.log.Warn().Err(perr.Err).Str("line", truncate(perr.Line, 200)).Msg("malformed message")
				s.writeResponse("", mcp.NewErrorResponse(nil, mcp.ParseError, "Parse error"))
				continue
			}
			if errors.Is(err, io.EOF) {
				err = nil
			}
			done <- err
			return
		}
		select {
		case msgs <- req:
		case <-ctx.Done():
			return
		}
	}
}

// reply writes resp unless req is a notification.
func (s *Server) reply(req *mcp.Request, resp *mcp.Response) {
	if resp == nil || req.IsNotification() {
		return
	}
	s.writeResponse(req.Method, resp)
}

func (s *Server) writeResponse(method string, resp *mcp.Response) {
	if err := s.transport.WriteResponse(resp); err != nil {
		s.log.Error().Err(err).Str("method", method).Msg("failed to write response")
	}
}

func (s *Server) handleRequest(req *mcp.Request) *mcp.Response {
	if req.JSONRPC != "2.0" || req.Method == "" {
		return mcp.NewErrorResponse(req.ID, mcp.InvalidRequest, "Invalid request: expected jsonrpc 2.0 with a method")
	}
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized", "notifications/cancelled":
		return nil
	case "tools/list":
		return s.handleListTools(req)
	case "ping":
		return s.handlePing(req)
	default:
		return mcp.NewErrorResponse(req.ID, mcp.MethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (s *Server) handleInitialize(req *mcp.Request) *mcp.Response {
	result := mcp.InitializeResult{
		ProtocolVersion: mcp.ProtocolVersion,
		Capabilities: mcp.ServerCapabilities{
			Tools: &mcp.ToolsCapability{},
		},
		ServerInfo:   s.info,
		Instructions: s.buildInstructions(),
	}

	resp, err := mcp.NewResponse(req.ID, result)
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) handleListTools(req *mcp.Request) *mcp.Response {
	resp, err := mcp.NewResponse(req.ID, mcp.ListToolsResult{Tools: s.dispatcher.Registry().Tools()})
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) handleCallTool(ctx context.Context, req *mcp.Request) *mcp.Response {
	var params mcp.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InvalidParams, "Invalid params: "+err.Error())
	}

	out, err := s.dispatcher.Dispatch(ctx, params.Name, params.Arguments)
	if err != nil {
		te := tools.AsError(err)
		return mcp.NewErrorResponse(req.ID, te.Kind.RPCCode(), te.Message)
	}

	text, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	resp, err := mcp.NewResponse(req.ID, mcp.CallToolResult{
		Content: []mcp.ContentBlock{{Type: "text", Text: string(text)}},
	})
	if err != nil {
		return mcp.NewErrorResponse(req.ID, mcp.InternalError, err.Error())
	}
	return resp
}

func (s *Server) handlePing(req *mcp.Request) *mcp.Response {
	resp, _ := mcp.NewResponse(req.ID, map[string]any{})
	return resp
}

func (s *Server) buildInstructions() string {
	var sb strings.Builder
	sb.WriteString("Netlify site management over MCP.\n\n")
	sb.WriteString("Available tools:\n")
	for _, t := range s.dispatcher.Registry().Tools() {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", t.Name, t.Description))
	}
	sb.WriteString("\nSites can be addressed by id or by name.\n")
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
