package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/instrument"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/runner"
)

// Resource URIs.
const (
	URITree  = "arbor://tree"
	URIGraph = "arbor://tree.mmd"
)

// CallResponse is the result of the call_member tool.
type CallResponse struct {
	Node   string `json:"node" jsonschema_description:"Dotted path of the node the member was called on"`
	Member string `json:"member" jsonschema_description:"Name of the called member"`
	Result string `json:"result" jsonschema_description:"Description of the returned value or subject"`
}

// Server exposes a tree bound to a session as an MCP Server.
type Server struct {
	tree      *element.Node
	bind      func(context.Context) context.Context
	recorder  *observability.Recorder
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithRecorder enables the get_trace tool.
func WithRecorder(r *observability.Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithLogger sets the logger used for rejected input.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new MCP Server instance. bind attaches the session
// runtime to tool contexts, usually arbor.Session.Context.
func NewServer(tree *element.Node, bind func(context.Context) context.Context, opts ...Option) *Server {
	s := &Server{
		tree:      tree,
		bind:      bind,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("arbor-mcp", arbor.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
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
	// TOOL: inspect_tree
	s.mcpServer.AddTool(mcp.NewTool("inspect_tree",
		mcp.WithDescription("List every node of the page tree with its composed locator and methods."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult(s.treeJSON())
	})

	// TOOL: call_member
	callTool := mcp.NewTool("call_member",
		mcp.WithDescription("Call a method or engine verb on a node of the tree."),
		mcp.WithString("node", mcp.Description("Dotted path of the node, empty for the root")),
		mcp.WithString("member", mcp.Required(), mcp.Description("Method or verb name, e.g. click or should")),
		mcp.WithString("args", mcp.Description("JSON array of arguments (optional)")),
		mcp.WithOutputSchema[CallResponse](),
	)
	s.mcpServer.AddTool(callTool, mcp.NewStructuredToolHandler(s.handleCallMember))

	// TOOL: run_script
	runTool := mcp.NewTool("run_script",
		mcp.WithDescription("Run a YAML step script against the tree and return the report."),
		mcp.WithString("script", mcp.Required(), mcp.Description("The script, as YAML")),
		mcp.WithOutputSchema[runner.Report](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunScript))

	// TOOL: get_trace
	s.mcpServer.AddTool(mcp.NewTool("get_trace",
		mcp.WithDescription("Get the most recent instrumentation spans."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if s.recorder == nil {
			return mcp.NewToolResultError("trace recording is disabled"), nil
		}
		return textResult(json.Marshal(s.recorder.Snapshot()))
	})
}

func textResult(data []byte, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) treeJSON() ([]byte, error) {
	return json.Marshal(element.Describe(s.tree))
}

func (s *Server) handleCallMember(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CallResponse, error) {
	path, _ := args["node"].(string)
	member, _ := args["member"].(string)
	if member == "" {
		return CallResponse{}, fmt.Errorf("member is required")
	}

	var callArgs []any
	if raw, ok := args["args"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &callArgs); err != nil {
			return CallResponse{}, fmt.Errorf("args must be a JSON array: %w", err)
		}
	}
	for i, a := range callArgs {
		text, ok := a.(string)
		if !ok {
			continue
		}
		clean, err := runner.SanitizeInput(text)
		if err != nil {
			s.logger.Warn("MCP call_member: input rejected", "error", err, "size", len(text))
			return CallResponse{}, fmt.Errorf("input rejected: %w", err)
		}
		callArgs[i] = clean
	}

	n, err := element.Lookup(s.tree, path)
	if err != nil {
		return CallResponse{}, err
	}
	out, err := n.Call(s.bind(ctx), member, callArgs...)
	if err != nil {
		return CallResponse{}, fmt.Errorf("%s failed: %w", member, err)
	}
	return CallResponse{Node: path, Member: member, Result: describe(out)}, nil
}

func (s *Server) handleRunScript(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (runner.Report, error) {
	src, _ := args["script"].(string)
	script, err := runner.Parse([]byte(src))
	if err != nil {
		return runner.Report{}, err
	}
	report, err := runner.NewRunner(runner.WithLogger(s.logger)).Run(s.bind(ctx), s.tree, script)
	if err != nil {
		return runner.Report{}, fmt.Errorf("run failed: %w", err)
	}
	return *report, nil
}

func describe(v any) string {
	if sub, ok := v.(*element.Subject); ok && sub != nil {
		return instrument.Describe(sub.Handle())
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (s *Server) registerResources() {
	// EXPOSE: arbor://tree
	s.mcpServer.AddResource(mcp.NewResource(URITree, "Page Tree",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := s.treeJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to describe tree: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      URITree,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: arbor://tree.mmd
	s.mcpServer.AddResource(mcp.NewResource(URIGraph, "Page Tree Diagram",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      URIGraph,
				MIMEType: "text/vnd.mermaid",
				Text:     graph.GenerateMermaid(s.tree, nil),
			},
		}, nil
	})
}
