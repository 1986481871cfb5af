package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/htmldoc"
	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/widgets"
)

const todoURL = "https://example.test/todo"

const todoHTML = `<html><head><title>Todo</title></head><body>
<ul class="todo-list"><li>Pay electric bill</li><li>Walk the dog</li></ul>
</body></html>`

func newTestServer(t *testing.T) (*Server, *arbor.Session) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sess, err := arbor.New(
		htmldoc.New(htmldoc.WithPage(todoURL, todoHTML)),
		arbor.WithMetrics(reg),
		arbor.WithRecorder(16),
	)
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })

	return &Server{
		Tree: arbor.El(widgets.Page(todoURL, arbor.Def{
			"name":  "todo",
			"items": widgets.Element(".todo-list li", nil),
		})),
		Context:  sess.Context,
		Recorder: sess.Recorder(),
		Gatherer: reg,
	}, sess
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("GET", path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rr := get(t, NewHandler(s), "/healthz")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	s, _ := newTestServer(t)
	rr := get(t, NewHandler(s), "/info")

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "arbor-http", resp["app"])
	assert.Equal(t, arbor.Version, resp["version"])
}

func TestGetTree(t *testing.T) {
	s, _ := newTestServer(t)
	rr := get(t, NewHandler(s), "/tree")

	assert.Equal(t, http.StatusOK, rr.Code)
	var descs []element.Description
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &descs))
	require.Len(t, descs, 2)
	assert.Equal(t, "<Todo>", descs[0].Path)
	assert.Contains(t, descs[0].Methods, "visit")
	assert.Equal(t, ".todo-list li", descs[1].Chain)
}

func TestGetValidate(t *testing.T) {
	s, _ := newTestServer(t)
	rr := get(t, NewHandler(s), "/validate")

	var resp struct {
		Valid  bool              `json:"valid"`
		Issues []json.RawMessage `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Issues)
}

func TestPostRun(t *testing.T) {
	s, sess := newTestServer(t)
	h := NewHandler(s)

	script := `
name: smoke
steps:
  - call: visit
  - node: items
    call: should
    args: [have.length, 2]
`
	req, _ := http.NewRequest("POST", "/run", strings.NewReader(script))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var report runner.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "smoke", report.Script)
	assert.Equal(t, 2, report.Passed)

	require.NoError(t, sess.Wait(context.Background()))

	trace := get(t, h, "/trace")
	assert.Equal(t, http.StatusOK, trace.Code)
	assert.Contains(t, trace.Body.String(), `.items.should ⤵"`)

	mmd := get(t, h, "/tree.mmd").Body.String()
	assert.Contains(t, mmd, "class root_items visited;")
	assert.Contains(t, mmd, "class root_items current;")

	metrics := get(t, h, "/metrics").Body.String()
	assert.Contains(t, metrics, `arbor_spans_total{kind="delegate",outcome="ok"} 2`)
}

func TestPostRun_Failures(t *testing.T) {
	s, _ := newTestServer(t)
	h := NewHandler(s)

	for _, tc := range []struct {
		body string
		code int
	}{
		{"steps: []", http.StatusBadRequest},
		{"steps:\n  - node: items\n    call: should\n    args: [exist]", http.StatusUnprocessableEntity},
	} {
		req, _ := http.NewRequest("POST", "/run", strings.NewReader(tc.body))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, tc.code, rr.Code, tc.body)
	}
}

func TestPostRun_LocalFilesUnreachable(t *testing.T) {
	secret := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("SECRET_TOKEN=hunter2"), 0o600))

	s, _ := newTestServer(t)
	script := `
steps:
  - call: visit
    args: ["file://` + filepath.ToSlash(secret) + `"]
  - call: should
    args: [have.text, x]
`
	req, _ := http.NewRequest("POST", "/run", strings.NewReader(script))
	rr := httptest.NewRecorder()
	NewHandler(s).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "page not found")
	assert.NotContains(t, rr.Body.String(), "hunter2")
}

func TestGetTrace_Disabled(t *testing.T) {
	s, _ := newTestServer(t)
	s.Recorder = nil
	assert.Equal(t, http.StatusNotFound, get(t, NewHandler(s), "/trace").Code)
}
