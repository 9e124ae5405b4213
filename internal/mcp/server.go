// Package mcp serves graded candidates to AI assistants over the Model
// Context Protocol (JSON-RPC 2.0, one message per line on stdio).
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tekoetch/investorscout/internal/config"
	"github.com/tekoetch/investorscout/internal/database"
	"github.com/tekoetch/investorscout/internal/firstpass"
	"github.com/tekoetch/investorscout/internal/verify"
)

const protocolVersion = "2024-11-05"

// JSON-RPC error codes
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// maxMessageSize bounds one request line
const maxMessageSize = 4 << 20

// Server answers MCP requests from the candidate store
type Server struct {
	db       *database.DB
	config   *config.Config
	version  string
	logger   *slog.Logger
	first    *firstpass.Scorer
	second   *verify.Scorer
	handlers map[string]ToolHandler
}

// ToolHandler handles one tools/call invocation. A string result is sent
// as is; anything else is rendered as indented JSON.
type ToolHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// notification reports whether the request expects no response
func (r request) notification() bool {
	return len(r.ID) == 0
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func resultFor(id json.RawMessage, v interface{}) *response {
	return &response{JSONRPC: "2.0", ID: id, Result: v}
}

func errorFor(id json.RawMessage, code int, msg string) *response {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return &response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: msg}}
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string `json:"protocolVersion"`
	Capabilities    struct {
		Tools     struct{} `json:"tools"`
		Resources struct{} `json:"resources"`
	} `json:"capabilities"`
	ServerInfo serverInfo `json:"serverInfo"`
}

type toolsListResult struct {
	Tools []Tool `json:"tools"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type callToolResult struct {
	Content []contentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server over db. The scorers behind score_text are built
// from cfg.
func New(db *database.DB, cfg *config.Config, version string, opts ...Option) *Server {
	tax := cfg.Taxonomy()
	s := &Server{
		db:       db,
		config:   cfg,
		version:  version,
		logger:   slog.Default(),
		first:    firstpass.New(cfg.Scoring, tax, cfg.Geo()),
		second:   verify.New(cfg.VerifyConfig(), tax),
		handlers: make(map[string]ToolHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerHandlers()
	return s
}

// Start serves on stdin and stdout
func (s *Server) Start(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve answers newline-delimited requests from r on w until r reaches
// EOF or ctx is cancelled. Blank lines are ignored.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		resp := s.handleMessage(ctx, []byte(line))
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	return nil
}

func (s *Server) handleMessage(ctx context.Context, msg []byte) *response {
	var req request
	if err := json.Unmarshal(msg, &req); err != nil {
		return errorFor(nil, codeParseError, "Parse error")
	}
	s.logger.DebugContext(ctx, "mcp request", "method", req.Method)

	var resp *response
	switch req.Method {
	case "initialize":
		resp = s.handleInitialize(req)
	case "ping":
		resp = resultFor(req.ID, struct{}{})
	case "tools/list":
		resp = resultFor(req.ID, toolsListResult{Tools: ToolDefinitions})
	case "tools/call":
		resp = s.handleToolsCall(ctx, req)
	case "resources/list":
		resp = resultFor(req.ID, resourcesListResult{Resources: ResourceDefinitions})
	case "resources/read":
		resp = s.handleResourcesRead(ctx, req)
	default:
		if req.notification() {
			// initialized, cancelled and other notifications
			return nil
		}
		resp = errorFor(req.ID, codeMethodNotFound, "Method not found")
	}

	if req.notification() {
		return nil
	}
	return resp
}

func (s *Server) handleInitialize(req request) *response {
	result := initializeResult{
		ProtocolVersion: protocolVersion,
		ServerInfo:      serverInfo{Name: "investorscout", Version: s.version},
	}
	return resultFor(req.ID, result)
}

func (s *Server) handleToolsCall(ctx context.Context, req request) *response {
	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorFor(req.ID, codeInvalidParams, "Invalid params")
	}

	handler, ok := s.handlers[params.Name]
	if !ok {
		return errorFor(req.ID, codeInvalidParams, fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	// Tool failures are reported in the result so the assistant can read them.
	result, err := handler(ctx, params.Arguments)
	if err != nil {
		s.logger.DebugContext(ctx, "mcp tool failed", "tool", params.Name, "error", err)
		return resultFor(req.ID, callToolResult{
			Content: []contentItem{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
	}

	text, ok := result.(string)
	if !ok {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return resultFor(req.ID, callToolResult{
				Content: []contentItem{{Type: "text", Text: "failed to encode result: " + err.Error()}},
				IsError: true,
			})
		}
		text = string(data)
	}

	return resultFor(req.ID, callToolResult{Content: []contentItem{{Type: "text", Text: text}}})
}

func (s *Server) handleResourcesRead(ctx context.Context, req request) *response {
	var params readResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorFor(req.ID, codeInvalidParams, "Invalid params")
	}

	text, err := s.handleReadResource(ctx, params.URI)
	if err != nil {
		return errorFor(req.ID, codeInvalidParams, err.Error())
	}

	return resultFor(req.ID, readResourceResult{
		Contents: []resourceContent{{URI: params.URI, MimeType: "text/plain", Text: text}},
	})
}
