package element

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/instrument"
	"github.com/aretw0/arbor/pkg/ports"
)

// Member is the result of a member lookup. Its dynamic type is one of
// Field, *Node, *BoundMethod, Data, *Verb or the Unknown sentinel.
type Member interface {
	isMember()
}

// Field is a reserved introspection entry (el, name, @parent).
type Field struct {
	Key   string
	Value any
}

// Data is a plain, non-callable member of the definition.
type Data struct {
	Key   string
	Value any
}

type unknown struct{}

// Unknown is returned for names that are neither fields, own members nor
// verbs of the bound engine. It is a value, not an error, so speculative
// lookups are harmless.
var Unknown Member = unknown{}

func (Field) isMember()        {}
func (Data) isMember()         {}
func (unknown) isMember()      {}
func (*Node) isMember()        {}
func (*BoundMethod) isMember() {}
func (*Verb) isMember()        {}

// Get classifies name. Without a runtime in ctx no name is a verb.
// A nil node has no members.
func (n *Node) Get(ctx context.Context, name string) Member {
	if n == nil {
		return Unknown
	}
	switch name {
	case domain.KeyLocator:
		return Field{Key: name, Value: n.loc}
	case domain.KeyName:
		return Field{Key: name, Value: n.name}
	case domain.KeyParent:
		return Field{Key: name, Value: n.Link()}
	}

	if c, ok := n.children[name]; ok {
		return c
	}
	if fn, ok := n.methods[name]; ok {
		return &BoundMethod{node: n, name: name, fn: fn}
	}
	if v, ok := n.data[name]; ok {
		return Data{Key: name, Value: v}
	}
	if rt, ok := FromContext(ctx); ok && rt.HasVerb(name) {
		return &Verb{node: n, name: name, rt: rt}
	}
	return Unknown
}

// Call looks name up and invokes it. Methods return their own result;
// verbs return a *Subject.
func (n *Node) Call(ctx context.Context, name string, args ...any) (any, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: %s on a missing node", domain.ErrUnknownMember, name)
	}
	switch m := n.Get(ctx, name).(type) {
	case *BoundMethod:
		return m.Call(ctx, args...)
	case *Verb:
		s, err := m.Call(ctx, args...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case unknown:
		if _, ok := FromContext(ctx); !ok {
			return nil, fmt.Errorf("%w: cannot resolve %s", domain.ErrNoRuntime, FormatPath(n, name))
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMember, FormatPath(n, name))
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotCallable, FormatPath(n, name))
}

// Delegate forwards verb straight to the engine, skipping own members.
// Widgets use it so that a method named like a verb can still reach it.
func (n *Node) Delegate(ctx context.Context, verb string, args ...any) (*Subject, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: %s on a missing node", domain.ErrUnknownMember, verb)
	}
	rt, ok := FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: cannot delegate %s", domain.ErrNoRuntime, FormatPath(n, verb))
	}
	if !rt.HasVerb(verb) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMember, FormatPath(n, verb))
	}
	return (&Verb{node: n, name: verb, rt: rt}).Call(ctx, args...)
}

// BoundMethod is a node method ready to be called with the node as receiver.
type BoundMethod struct {
	node *Node
	name string
	fn   Method
}

// Name returns the method name.
func (m *BoundMethod) Name() string { return m.name }

// Call logs an ungrouped method entry and runs the method.
// The result is returned unchanged.
func (m *BoundMethod) Call(ctx context.Context, args ...any) (any, error) {
	rt, ok := FromContext(ctx)
	if !ok {
		return m.fn(ctx, m.node, args...)
	}

	span := rt.log.Emit(ctx, instrument.Entry{
		Kind: domain.KindMethod,
		Path: FormatPath(m.node, m.name),
		Props: map[string]any{
			"method": m.name,
			"args":   args,
		},
	})
	res, err := m.fn(ctx, m.node, args...)
	h, _ := res.(ports.Handle)
	if s, ok := res.(*Subject); ok && s != nil {
		h = s.handle
	}
	_ = span.Close(ctx, h, err)
	return res, err
}

// Verb is an engine verb scoped to a node.
type Verb struct {
	node *Node
	name string
	rt   *Runtime
}

// Name returns the verb name.
func (v *Verb) Name() string { return v.name }

// Call resolves the node's locator chain, narrows the engine to it and runs
// the verb there, inside a delegate span. An empty chain runs the verb on
// the ambient engine scope and logs an ungrouped entry. Engine errors are
// returned as they are, after the span closed.
func (v *Verb) Call(ctx context.Context, args ...any) (*Subject, error) {
	plan := ResolvePlan(v.node)
	path := FormatPath(v.node, v.name)

	span := v.rt.log.Emit(ctx, instrument.Entry{
		Kind:    domain.KindDelegate,
		Path:    path,
		Locator: plan.String(),
		Grouped: !plan.Empty(),
		Props: map[string]any{
			"verb": v.name,
			"args": args,
		},
	})

	result, err := v.rt.exec(ctx, "delegate:"+path, func(ctx context.Context) (ports.Handle, error) {
		scope, err := plan.Execute(ctx, v.rt.engine)
		if err != nil {
			return nil, err
		}
		return scope.Do(ctx, v.name, args...)
	})
	_ = span.Close(ctx, result, err)
	if err != nil {
		return nil, err
	}
	return &Subject{rt: v.rt, handle: result, path: path}, nil
}
