package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/props"
	"github.com/aretw0/props/internal/logging"
	"github.com/aretw0/props/internal/presentation/graph"
	"github.com/aretw0/props/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DecodeResult is the payload of the decode tool.
type DecodeResult struct {
	Model    string          `json:"model,omitempty" jsonschema_description:"Resolved model name, empty for generic objects"`
	Resolved bool            `json:"resolved" jsonschema_description:"Whether a concrete model was used"`
	Object   map[string]any  `json:"object" jsonschema_description:"The normalized plain mapping"`
	Warnings []props.Warning `json:"warnings,omitempty" jsonschema_description:"Fallback warnings"`
}

// Server exposes a model registry as an MCP server.
type Server struct {
	codec     *props.Codec
	trusted   bool
	version   string
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithTrustedInput makes the decode tool honour class tags. Trust is a
// server setting; tool callers cannot request it.
func WithTrustedInput() Option {
	return func(s *Server) {
		s.trusted = true
	}
}

// WithVersion sets the version advertised to clients.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server for the codec's registry.
func NewServer(codec *props.Codec, opts ...Option) *Server {
	s := &Server{
		codec:   codec,
		version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("props-mcp", s.version)
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on the given port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_models",
		mcp.WithDescription("List the names of all registered models."),
	), s.handleListModels)

	s.mcpServer.AddTool(mcp.NewTool("describe_model",
		mcp.WithDescription("Describe a registered model: its parent and fields."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Model name")),
	), s.handleDescribeModel)

	s.mcpServer.AddTool(mcp.NewTool("decode",
		mcp.WithDescription("Decode a JSON object. With a model name the object is decoded as that model; "+
			"otherwise the embedded class tag is only used if the server trusts its input."),
		mcp.WithString("payload", mcp.Required(), mcp.Description("JSON object to decode")),
		mcp.WithString("model", mcp.Description("Model to decode as (optional)")),
	), s.handleDecode)

	s.mcpServer.AddTool(mcp.NewTool("diagram",
		mcp.WithDescription("Render the registered models as a Mermaid class diagram."),
	), s.handleDiagram)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("props://models", "Registered Models",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource("props://models", schema.DescribeRegistry(s.codec.Registry()))
	})

	s.mcpServer.AddResource(mcp.NewResource("props://openapi", "OpenAPI Schemas",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		doc := schema.OpenAPI(s.codec.Registry(), s.codec.ClassKey(), "props models", s.version)
		return jsonResource("props://openapi", doc)
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleListModels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.codec.Registry().Names())
}

func (s *Server) handleDescribeModel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, ok := s.codec.Registry().Lookup(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown model: %s", name)), nil
	}
	return jsonResult(schema.Describe(m))
}

func (s *Server) handleDecode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := request.RequireString("payload")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var (
		obj      props.Object
		warnings props.WarningRecorder
	)
	if name := request.GetString("model", ""); name != "" {
		m, ok := s.codec.Registry().Lookup(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown model: %s", name)), nil
		}
		obj, err = s.codec.UnmarshalAs(m, []byte(payload))
	} else {
		obj, err = s.codec.Unmarshal([]byte(payload), props.WithTrust(s.trusted), props.OnWarning(warnings.Record))
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("decode failed: %v", err)), nil
	}

	result := DecodeResult{Warnings: warnings.Warnings()}
	switch o := obj.(type) {
	case *props.Instance:
		data, err := s.codec.Serialize(o)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("serialize failed: %v", err)), nil
		}
		result.Model, result.Resolved, result.Object = o.ModelName(), true, data
	case *props.Unresolved:
		result.Object = o.Fields
	default:
		return nil, errors.New("unexpected object type")
	}
	return jsonResult(result)
}

func (s *Server) handleDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var models []*props.Model
	reg := s.codec.Registry()
	for _, name := range reg.Names() {
		if m, ok := reg.Lookup(name); ok {
			models = append(models, m)
		}
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(models, nil)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
