package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/runner"
)

// maxScriptSize bounds POST /run bodies.
const maxScriptSize = 1 << 20

// Server exposes a loaded tree and its session over HTTP.
type Server struct {
	Tree *element.Node

	// Context binds request contexts to the session runtime.
	// If nil, scripts run without a runtime and every verb is unknown.
	Context func(context.Context) context.Context

	// Recorder backs /trace and the graph overlay. Optional.
	Recorder *observability.Recorder

	// Gatherer backs /metrics. If nil, the default registry is used.
	Gatherer prometheus.Gatherer

	Logger *slog.Logger
}

// NewHandler creates the HTTP handler for s.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}
	gatherer := s.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/tree", s.GetTree)
	r.Get("/tree.mmd", s.GetGraph)
	r.Get("/validate", s.GetValidate)
	r.Get("/trace", s.GetTrace)
	r.Post("/run", s.PostRun)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arbor-http",
		"version": arbor.Version,
	})
}

// GetTree handles GET /tree: the flattened tree as JSON.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, element.Describe(s.Tree))
}

// GetGraph handles GET /tree.mmd. Recorded spans are drawn as an overlay.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.GraphOverlay
	if s.Recorder != nil {
		overlay = graph.OverlayFromSpans(s.Recorder.Snapshot())
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(s.Tree, overlay))
}

// GetValidate handles GET /validate.
func (s *Server) GetValidate(w http.ResponseWriter, r *http.Request) {
	issues := validator.Check(s.Tree)
	if issues == nil {
		issues = []validator.Issue{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"valid":  len(issues) == 0,
		"issues": issues,
	})
}

// GetTrace handles GET /trace.
func (s *Server) GetTrace(w http.ResponseWriter, r *http.Request) {
	if s.Recorder == nil {
		http.Error(w, "Trace recording is disabled", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"total": s.Recorder.Total(),
		"spans": s.Recorder.Snapshot(),
	})
}

// PostRun handles POST /run: the body is a YAML script.
func (s *Server) PostRun(w http.ResponseWriter, r *http.Request) {
	src, err := io.ReadAll(io.LimitReader(r.Body, maxScriptSize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	script, err := runner.Parse(src)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if s.Context != nil {
		ctx = s.Context(ctx)
	}
	report, err := runner.NewRunner(runner.WithLogger(s.Logger)).Run(ctx, s.Tree, script)
	if err != nil {
		http.Error(w, fmt.Sprintf("Run error: %v", err), http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if !report.OK() {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, report)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("encode response", "error", err)
	}
}
