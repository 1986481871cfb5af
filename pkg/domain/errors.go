package domain

import "errors"

// ErrMalformedDefinition is returned when a node definition is neither a locator nor a Def,
// or when one of its reserved entries has the wrong shape.
var ErrMalformedDefinition = errors.New("malformed node definition")

// ErrUnknownMember is returned by convenience callers when a name resolves to nothing.
// Plain member lookups never fail; they report the Unknown sentinel instead.
var ErrUnknownMember = errors.New("unknown member")

// ErrNotCallable is returned when a call targets a member that is not a method or a verb.
var ErrNotCallable = errors.New("member is not callable")

// ErrNoRuntime is returned when a delegated call is made with a context that carries no runtime.
var ErrNoRuntime = errors.New("no runtime in context")

// ErrSpanClosed is returned when a span is closed more than once.
var ErrSpanClosed = errors.New("span already closed")
