package htmldoc

import (
	"context"
	"fmt"
	"log/slog"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// EntryType distinguishes journal lines.
type EntryType string

const (
	EntryCommand   EntryType = "command"
	EntrySpanOpen  EntryType = "span-open"
	EntrySpanClose EntryType = "span-close"
)

// Entry is one line of the engine journal.
type Entry struct {
	Seq     int       `json:"seq"`
	Type    EntryType `json:"type"`
	Name    string    `json:"name"`
	Scope   string    `json:"scope,omitempty"`
	Detail  string    `json:"detail,omitempty"`
	Grouped bool      `json:"grouped,omitempty"`
	Err     string    `json:"error,omitempty"`
}

func (e Entry) String() string {
	var sb strings.Builder
	sb.WriteString(string(e.Type))
	sb.WriteString(" ")
	sb.WriteString(e.Name)
	if e.Scope != "" {
		sb.WriteString(" [" + e.Scope + "]")
	}
	if e.Detail != "" {
		sb.WriteString(" " + e.Detail)
	}
	if e.Err != "" {
		sb.WriteString(" err=" + e.Err)
	}
	return sb.String()
}

// Submission records a submitted form.
type Submission struct {
	Form   string
	Values url.Values
}

// Engine serves a set of pages and keeps the currently visited document.
type Engine struct {
	mu      sync.Mutex
	pages   map[string]string
	doc     *goquery.Document
	current *url.URL
	focused *goquery.Selection
	submits []Submission
	journal []Entry
	logger  *slog.Logger
	// fileRoot bounds file:// visits. Empty disables them.
	fileRoot string
}

var _ ports.Engine = (*Engine)(nil)

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the logger used for engine commands.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPage serves html at rawURL.
func WithPage(rawURL, html string) Option {
	return func(e *Engine) {
		e.pages[rawURL] = html
	}
}

// WithPages serves every entry of pages.
func WithPages(pages map[string]string) Option {
	return func(e *Engine) {
		for u, html := range pages {
			e.pages[u] = html
		}
	}
}

// WithFileRoot lets visit read file:// URLs that resolve under dir.
// Without it only served pages can be visited.
func WithFileRoot(dir string) Option {
	return func(e *Engine) {
		e.fileRoot = dir
	}
}

// New creates an engine with no document loaded.
func New(opts ...Option) *Engine {
	e := &Engine{
		pages:  make(map[string]string),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Verbs lists every verb the engine understands.
func (e *Engine) Verbs() []string {
	return []string{
		domain.VerbShould, domain.VerbClick, domain.VerbDblClick, domain.VerbRightClick,
		domain.VerbType, domain.VerbClear, domain.VerbCheck, domain.VerbUncheck,
		domain.VerbSelect, domain.VerbSubmit, domain.VerbFocus, domain.VerbBlur,
		domain.VerbScrollIntoView, domain.VerbScrollTo, domain.VerbContains,
		domain.VerbFind, domain.VerbParent, domain.VerbFirst, domain.VerbLast,
		domain.VerbEq, domain.VerbInvoke, domain.VerbVisit, domain.VerbTitle,
		domain.VerbURL, domain.VerbHash,
	}
}

// Load replaces the current document with html, as if rawURL was visited.
func (e *Engine) Load(rawURL, html string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(rawURL, html)
}

func (e *Engine) load(rawURL, html string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse document %q: %w", rawURL, err)
	}
	e.doc = doc
	e.current = u
	e.focused = nil
	return nil
}

// visit loads a served page, or a file under the file root.
func (e *Engine) visit(rawURL string) error {
	key := rawURL
	if i := strings.IndexByte(key, '#'); i >= 0 {
		key = key[:i]
	}
	html, ok := e.pages[key]
	if !ok {
		path, isFile := strings.CutPrefix(key, "file://")
		if !isFile || e.fileRoot == "" {
			return fmt.Errorf("%w: %s", ErrPageNotFound, rawURL)
		}
		raw, err := e.readFile(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrPageNotFound, rawURL, err)
		}
		html = string(raw)
	}
	return e.load(rawURL, html)
}

// readFile reads path through an os.Root, so neither ".." nor symlinks
// can leave the file root.
func (e *Engine) readFile(path string) ([]byte, error) {
	rootDir, err := filepath.Abs(e.fileRoot)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(rootDir, path)
	}
	rel, err := filepath.Rel(rootDir, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, ErrOutsideRoot
	}

	root, err := os.OpenRoot(rootDir)
	if err != nil {
		return nil, err
	}
	defer root.Close()
	f, err := root.Open(rel)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Journal returns a copy of the ordered command and span log.
func (e *Engine) Journal() []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Entry(nil), e.journal...)
}

// Submissions returns the forms submitted so far.
func (e *Engine) Submissions() []Submission {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Submission(nil), e.submits...)
}

func (e *Engine) record(entry Entry) {
	entry.Seq = len(e.journal) + 1
	e.journal = append(e.journal, entry)
}

// Get queries the whole document.
func (e *Engine) Get(ctx context.Context, loc string) (ports.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.record(Entry{Type: EntryCommand, Name: "get", Detail: loc})
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	return &Selection{engine: e, sel: e.doc.Find(loc), query: loc}, nil
}

// Find on the engine is the same as Get.
func (e *Engine) Find(ctx context.Context, loc string) (ports.Handle, error) {
	return e.Get(ctx, loc)
}

// Do runs verb on the ambient scope: page-level verbs act on the window,
// element verbs on the document root.
func (e *Engine) Do(ctx context.Context, verb string, args ...any) (ports.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.record(Entry{Type: EntryCommand, Name: verb, Detail: formatArgs(args)})
	e.logger.Debug("engine command", "verb", verb, "args", args)

	switch verb {
	case domain.VerbVisit:
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: visit needs a url", ErrUnsupported)
		}
		if err := e.visit(fmt.Sprint(args[0])); err != nil {
			return nil, err
		}
		return e, nil
	case domain.VerbTitle, domain.VerbURL, domain.VerbHash:
		if e.doc == nil {
			return nil, ErrNoDocument
		}
		return &Selection{engine: e, value: e.windowValue(verb), hasValue: true, query: verb}, nil
	}

	if e.doc == nil {
		return nil, ErrNoDocument
	}
	root := &Selection{engine: e, sel: e.doc.Selection, query: "document"}
	return handle(root.do(verb, args))
}

func (e *Engine) windowValue(verb string) string {
	switch verb {
	case domain.VerbTitle:
		return strings.TrimSpace(e.doc.Find("title").First().Text())
	case domain.VerbURL:
		return e.current.String()
	}
	if e.current.Fragment == "" {
		return ""
	}
	return "#" + e.current.Fragment
}

func (e *Engine) String() string { return "window" }

// LogOpen appends a span to the journal.
func (e *Engine) LogOpen(ctx context.Context, desc domain.SpanDescriptor) ports.Span {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(Entry{
		Type:    EntrySpanOpen,
		Name:    desc.DisplayName,
		Detail:  desc.Locator,
		Grouped: desc.Grouped,
	})
	return &span{engine: e, desc: desc}
}

type span struct {
	engine *Engine
	desc   domain.SpanDescriptor
}

func (s *span) Close(result ports.Handle, err error) {
	e := s.engine
	entry := Entry{Type: EntrySpanClose, Name: s.desc.DisplayName}
	if result != nil {
		entry.Detail = fmt.Sprint(result)
	}
	if err != nil {
		entry.Err = err.Error()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(entry)
}

func formatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	return strings.Join(parts, " ")
}
