package locator

import (
	"context"
	"strings"

	"github.com/aretw0/arbor/pkg/ports"
)

// Step is one stage of a Plan: either a textual Query or a Resolver call.
type Step struct {
	Query   string
	Resolve ResolverFunc
}

// Plan is the collapsed form of a locator chain.
type Plan []Step

// Compose collapses a root-to-leaf chain. Consecutive textual fragments are
// joined with a single space into one Query step; every resolver becomes
// its own step. Empty text contributes nothing.
func Compose(chain []Locator) Plan {
	var (
		plan Plan
		text []string
	)
	flush := func() {
		if len(text) > 0 {
			plan = append(plan, Step{Query: strings.Join(text, " ")})
			text = nil
		}
	}
	for _, l := range chain {
		switch l.kind {
		case KindText, KindRoot:
			if l.text != "" {
				text = append(text, l.text)
			}
		case KindResolver:
			flush()
			plan = append(plan, Step{Resolve: l.fn})
		}
	}
	flush()
	return plan
}

// Empty reports whether the plan narrows nothing.
func (p Plan) Empty() bool { return len(p) == 0 }

// Text returns the composite query of a text-only plan.
// ok is false when the plan contains resolver steps.
func (p Plan) Text() (string, bool) {
	switch {
	case len(p) == 0:
		return "", true
	case len(p) == 1 && p[0].Resolve == nil:
		return p[0].Query, true
	}
	return "", false
}

// String renders the plan for logs: queries verbatim, resolvers as a placeholder.
func (p Plan) String() string {
	parts := make([]string, 0, len(p))
	for _, s := range p {
		if s.Resolve != nil {
			parts = append(parts, "<resolver>")
			continue
		}
		parts = append(parts, s.Query)
	}
	return strings.Join(parts, " ")
}

// Execute threads handles through the plan. The first Query runs through
// engine.Get and later ones through Find on the current handle. A resolver
// receives the current handle, or the engine itself when nothing was
// resolved yet. An empty plan yields the engine (the ambient scope).
func (p Plan) Execute(ctx context.Context, engine ports.Engine) (ports.Handle, error) {
	var cur ports.Handle
	for _, s := range p {
		var err error
		switch {
		case s.Resolve != nil:
			parent := cur
			if parent == nil {
				parent = engine
			}
			cur, err = s.Resolve(ctx, parent)
		case cur == nil:
			cur, err = engine.Get(ctx, s.Query)
		default:
			cur, err = cur.Find(ctx, s.Query)
		}
		if err != nil {
			return cur, err
		}
	}
	if cur == nil {
		return engine, nil
	}
	return cur, nil
}
