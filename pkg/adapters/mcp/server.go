// Package mcp exposes an interpreter as a Model Context Protocol server, so
// that assistants can drive the home automation through the same rules as
// the voice front end.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/JanMattner/cuevox"
	"github.com/JanMattner/cuevox/internal/logging"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RulesURI is the resource listing the registered rules.
const RulesURI = "cuevox://rules"

// MaxUtteranceSize bounds the text accepted by interpret_utterance.
const MaxUtteranceSize = 4 << 10

// InterpretArgs are the arguments of the interpret_utterance tool.
type InterpretArgs struct {
	Text string `json:"text"`
}

// InterpretResult aligns with the HTTP response and provides a unified structure across adapters.
type InterpretResult struct {
	domain.Record
	Error string `json:"error,omitempty" jsonschema_description:"Error returned by a callback action"`
}

// HistoryArgs are the arguments of the recent_interpretations tool.
type HistoryArgs struct {
	Limit int `json:"limit"`
}

// Option configures a Server.
type Option func(*Server)

// WithJournal enables the recent_interpretations tool.
func WithJournal(j ports.Journal) Option {
	return func(s *Server) { s.journal = j }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// Server wraps an Interpreter and exposes it as an MCP Server.
// Tool calls are serialised: the rule engine is not safe for concurrent use.
type Server struct {
	interp    ports.Interpreter
	journal   ports.Journal
	logger    *slog.Logger
	mcpServer *server.MCPServer

	mu sync.Mutex
}

// NewServer creates a new MCP Server instance.
func NewServer(interp ports.Interpreter, opts ...Option) *Server {
	s := &Server{
		interp:    interp,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("cuevox-mcp", strings.TrimSpace(cuevox.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	interpretTool := mcp.NewTool("interpret_utterance",
		mcp.WithDescription("Interpret a spoken command (e.g. 'turn on the kitchen light') and perform its action."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The utterance as recognised by speech-to-text")),
		mcp.WithOutputSchema[InterpretResult](),
	)
	s.mcpServer.AddTool(interpretTool, mcp.NewStructuredToolHandler(s.handleInterpret))

	s.mcpServer.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List the registered grammar rules in evaluation order."),
	), s.handleListRules)

	if s.journal != nil {
		historyTool := mcp.NewTool("recent_interpretations",
			mcp.WithDescription("List the most recent interpretations, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of records (default 10)"), mcp.Min(0)),
		)
		s.mcpServer.AddTool(historyTool, mcp.NewTypedToolHandler(s.handleHistory))
	}
}

func (s *Server) handleInterpret(ctx context.Context, request mcp.CallToolRequest, args InterpretArgs) (InterpretResult, error) {
	if strings.TrimSpace(args.Text) == "" {
		return InterpretResult{}, errors.New("text is required")
	}
	if len(args.Text) > MaxUtteranceSize {
		s.logger.Warn("MCP Interpret: Input rejected", "size", len(args.Text))
		return InterpretResult{}, fmt.Errorf("input rejected: exceeds %d bytes", MaxUtteranceSize)
	}

	s.mu.Lock()
	ann, err := s.interp.InterpretUtterance(ctx, args.Text)
	s.mu.Unlock()

	result := InterpretResult{Record: ann.Record()}
	if err != nil {
		s.logger.Error("MCP Interpret: action failed", "error", err)
		result.Error = err.Error()
	}
	return result, nil
}

func (s *Server) handleListRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := s.rulesJSON()
	if err != nil {
		return mcp.NewToolResultErrorf("list rules failed: %v", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest, args HistoryArgs) (*mcp.CallToolResult, error) {
	limit := args.Limit
	if limit == 0 {
		limit = 10
	}
	records, err := s.journal.List(ctx, limit)
	if err != nil {
		return mcp.NewToolResultErrorf("history failed: %v", err), nil
	}
	if records == nil {
		records = []domain.Record{}
	}
	data, _ := json.Marshal(records)
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(RulesURI, "Registered Rules",
		mcp.WithMIMEType("application/json"),
	), s.readRules)
}

func (s *Server) readRules(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := s.rulesJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RulesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) rulesJSON() ([]byte, error) {
	s.mu.Lock()
	rules := s.interp.Rules()
	s.mu.Unlock()
	if rules == nil {
		rules = []ports.RuleInfo{}
	}
	return json.Marshal(rules)
}
