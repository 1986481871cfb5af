package htmldoc

import "errors"

var (
	// ErrNoDocument is returned when a query runs before any page was visited.
	ErrNoDocument = errors.New("no document loaded")
	// ErrPageNotFound is returned by visit for URLs the engine does not serve.
	ErrPageNotFound = errors.New("page not found")
	// ErrOutsideRoot is returned by visit for file:// URLs outside the file root.
	ErrOutsideRoot = errors.New("path outside file root")
	// ErrNotFound is returned when an action targets an empty selection.
	ErrNotFound = errors.New("element not found")
	// ErrAssertion is returned when a should chainer fails.
	ErrAssertion = errors.New("assertion failed")
	// ErrUnsupported is returned for verbs or chainers the engine does not know,
	// and for actions on the wrong kind of element.
	ErrUnsupported = errors.New("unsupported")
)
