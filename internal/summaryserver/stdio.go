package summaryserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_ytsummary/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// protocolVersion is the MCP revision announced on initialize.
const protocolVersion = "2025-06-18"

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"` // nil marshals as null
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type methodHandler func(ctx context.Context, params json.RawMessage) (any, *rpcError)

// StdioServer answers newline-delimited JSON-RPC requests, one line at a time.
type StdioServer struct {
	name    string
	version string
	methods map[string]methodHandler
}

// NewStdioServer builds the line server with its fixed method table.
func NewStdioServer(name, version string) *StdioServer {
	s := &StdioServer{name: name, version: version}
	s.methods = map[string]methodHandler{
		"initialize": s.initialize,
		"ping":       func(context.Context, json.RawMessage) (any, *rpcError) { return struct{}{}, nil },
		"tools/list": s.listTools,
		"tools/call": s.callTool,
	}
	return s
}

// Serve reads requests from r until EOF or ctx is done, writing one response line per request to w.
// A bad line never stops the loop.
func (s *StdioServer) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	enc := json.NewEncoder(w)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, readErr := br.ReadBytes('\n')
		if line = bytes.TrimSpace(line); len(line) > 0 {
			if resp := s.handleLine(ctx, line); resp != nil {
				if err := enc.Encode(resp); err != nil {
					return fmt.Errorf("write response: %w", err)
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read request: %w", readErr)
		}
	}
}

// handleLine answers a single request line. Notifications get no response (nil).
func (s *StdioServer) handleLine(ctx context.Context, line []byte) *rpcResponse {
	if !json.Valid(line) {
		return errorResponse(nil, codeParseError, "Parse error")
	}
	var req rpcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(nil, codeInvalidRequest, "Invalid Request")
	}
	if isNotification(req) {
		slog.Debug("rpc: notification", slog.String("method", req.Method))
		return nil
	}

	handler, ok := s.methods[req.Method]
	if !ok {
		return errorResponse(req.ID, codeMethodNotFound, "Method not found")
	}

	result, rerr := s.dispatch(ctx, handler, req)
	if rerr != nil {
		return &rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: rerr}
	}
	return &rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *StdioServer) dispatch(ctx context.Context, h methodHandler, req rpcRequest) (result any, rerr *rpcError) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("rpc: handler panic", slog.String("method", req.Method), slog.Any("panic", p))
			result, rerr = nil, &rpcError{Code: codeInternalError, Message: fmt.Sprintf("Internal error: %v", p)}
		}
	}()
	return h(ctx, req.Params)
}

func (s *StdioServer) initialize(context.Context, json.RawMessage) (any, *rpcError) {
	return &mcp.InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    &mcp.ServerCapabilities{Tools: &mcp.ToolCapabilities{}},
		ServerInfo:      &mcp.Implementation{Name: s.name, Version: s.version},
	}, nil
}

func (s *StdioServer) listTools(context.Context, json.RawMessage) (any, *rpcError) {
	return &mcp.ListToolsResult{Tools: []*mcp.Tool{SummaryTool()}}, nil
}

func (s *StdioServer) callTool(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	var p mcp.CallToolParamsRaw
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: "Invalid params: " + err.Error()}
		}
	}
	if p.Name != SummaryToolName {
		return nil, &rpcError{Code: codeInvalidParams, Message: "Unknown tool: " + p.Name}
	}

	res, err := callSummary(ctx, p.Arguments)
	if err != nil {
		if errors.Is(err, toolutil.ErrInvalidArguments) {
			return nil, &rpcError{Code: codeInvalidParams, Message: "Invalid params: " + err.Error()}
		}
		slog.Error("rpc: tool call failed", slog.String("tool", p.Name), slog.Any("error", err))
		return nil, &rpcError{Code: codeInternalError, Message: "Internal error: " + err.Error()}
	}
	return res, nil
}

func isNotification(req rpcRequest) bool {
	return len(req.ID) == 0 && strings.HasPrefix(req.Method, "notifications/")
}

func errorResponse(id json.RawMessage, code int, msg string) *rpcResponse {
	return &rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: msg}}
}

// ServeStdio serves the ytsummary method table over r and w until EOF.
func ServeStdio(ctx context.Context, r io.Reader, w io.Writer, version string) error {
	return NewStdioServer(ServerName, version).Serve(ctx, r, w)
}
