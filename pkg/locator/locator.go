package locator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/ports"
)

// Kind discriminates the Locator variants.
type Kind int

const (
	KindNone Kind = iota
	KindText
	KindRoot
	KindResolver
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindRoot:
		return "root"
	case KindResolver:
		return "resolver"
	}
	return "none"
}

// ResolverFunc derives a handle from the parent's handle. For the first
// fragment of a chain, parent is the engine itself (the ambient scope).
//
// Resolvers run on the command queue, between other engine commands. They
// must only use the handle they receive: ctx carries no runtime, so calls
// through a node from inside a resolver fail with domain.ErrNoRuntime.
type ResolverFunc func(ctx context.Context, parent ports.Handle) (ports.Handle, error)

// Locator is a tagged union. The zero value is "no locator".
type Locator struct {
	kind Kind
	text string
	fn   ResolverFunc
}

// Text returns a relative textual locator.
func Text(s string) Locator {
	return Locator{kind: KindText, text: s}
}

// Resolve wraps fn as a resolver locator.
func Resolve(fn ResolverFunc) Locator {
	return Locator{kind: KindResolver, fn: fn}
}

// Kind reports the variant.
func (l Locator) Kind() Kind { return l.kind }

// IsZero reports whether l carries no locator.
func (l Locator) IsZero() bool { return l.kind == KindNone }

// IsTextual is true for Text and Root locators.
func (l Locator) IsTextual() bool { return l.kind == KindText || l.kind == KindRoot }

// Resolver returns the resolver function, or nil for textual locators.
func (l Locator) Resolver() ResolverFunc { return l.fn }

// String returns the raw text. Resolvers print as a placeholder.
func (l Locator) String() string {
	switch l.kind {
	case KindText, KindRoot:
		return l.text
	case KindResolver:
		return "<resolver>"
	}
	return ""
}

// Parse turns a locator-shaped value into a Locator.
// Accepted shapes are string, Locator, ResolverFunc and a plain function with
// the ResolverFunc signature. ok is false for anything else.
func Parse(v any) (Locator, bool) {
	switch t := v.(type) {
	case Locator:
		return t, !t.IsZero()
	case string:
		return Text(t), true
	case ResolverFunc:
		if t == nil {
			return Locator{}, false
		}
		return Resolve(t), true
	case func(context.Context, ports.Handle) (ports.Handle, error):
		if t == nil {
			return Locator{}, false
		}
		return Resolve(t), true
	}
	return Locator{}, false
}

// Join concatenates the text of textual locators with a single space.
// Resolver and zero locators are skipped.
func Join(locs ...Locator) string {
	parts := make([]string, 0, len(locs))
	for _, l := range locs {
		if l.IsTextual() {
			parts = append(parts, l.text)
		}
	}
	return strings.Join(parts, " ")
}

// GoString helps test failure output.
func (l Locator) GoString() string {
	return fmt.Sprintf("locator.%s(%q)", l.kind, l.String())
}
