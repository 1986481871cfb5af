package element

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/locator"
)

// Build constructs a node tree.
//
// v is either locator-shaped (string, locator.Locator, resolver function),
// which is shorthand for Def{"el": v}, a Def (or map[string]any), or an
// already built *Node, which is cloned from its definition.
func Build(v any) (*Node, error) {
	switch t := v.(type) {
	case *Node:
		if t == nil {
			return nil, fmt.Errorf("%w: nil node", domain.ErrMalformedDefinition)
		}
		return build(t.config)
	case Def:
		return build(cloneDef(t))
	case map[string]any:
		return build(cloneDef(t))
	}
	if loc, ok := locator.Parse(v); ok {
		return build(Def{domain.KeyLocator: loc})
	}
	return nil, fmt.Errorf("%w: expected a locator or a Def, got %T", domain.ErrMalformedDefinition, v)
}

// MustBuild is like Build but panics on error. It is meant for
// package-level declarations.
func MustBuild(v any) *Node {
	n, err := Build(v)
	if err != nil {
		panic(err)
	}
	return n
}

// build instantiates def. def is owned by the new node from here on.
func build(def Def) (*Node, error) {
	n := &Node{
		config:   def,
		children: make(map[string]*Node),
		methods:  make(map[string]Method),
		data:     make(map[string]any),
	}

	// Sorted for deterministic error reporting.
	for _, key := range slices.Sorted(maps.Keys(def)) {
		val := def[key]

		switch {
		case key == domain.KeyLocator:
			if val == nil {
				continue
			}
			loc, ok := locator.Parse(val)
			if !ok {
				return nil, fmt.Errorf("%w: %q must be a locator, got %T", domain.ErrMalformedDefinition, key, val)
			}
			n.loc = loc
			continue
		case key == domain.KeyName:
			if val == nil {
				continue
			}
			name, ok := val.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %q must be a string, got %T", domain.ErrMalformedDefinition, key, val)
			}
			n.name = name
			continue
		case strings.HasPrefix(key, domain.ReservedPrefix):
			return nil, fmt.Errorf("%w: key %q is reserved", domain.ErrMalformedDefinition, key)
		}

		switch t := val.(type) {
		case *Node:
			if t == nil {
				return nil, fmt.Errorf("%w: child %q is a nil node", domain.ErrMalformedDefinition, key)
			}
			// Always a fresh instance: the same node value may be embedded elsewhere.
			child, err := build(t.config)
			if err != nil {
				return nil, fmt.Errorf("child %q: %w", key, err)
			}
			child.attach(n, key)
			n.children[key] = child
		case Def:
			if err := n.addNested(key, t); err != nil {
				return nil, err
			}
		case map[string]any:
			if err := n.addNested(key, t); err != nil {
				return nil, err
			}
		case Method:
			if t == nil {
				return nil, fmt.Errorf("%w: method %q is nil", domain.ErrMalformedDefinition, key)
			}
			n.methods[key] = t
		case func(context.Context, *Node, ...any) (any, error):
			if t == nil {
				return nil, fmt.Errorf("%w: method %q is nil", domain.ErrMalformedDefinition, key)
			}
			n.methods[key] = t
		default:
			// Bare strings and locators stay data; children need El or a Def.
			n.data[key] = val
		}
	}
	return n, nil
}

func (n *Node) addNested(key string, def map[string]any) error {
	child, err := build(Def(def))
	if err != nil {
		return fmt.Errorf("child %q: %w", key, err)
	}
	child.attach(n, key)
	n.children[key] = child
	return nil
}

// cloneDef copies def deeply enough that later edits of the caller's maps
// never reach a built node. Built nodes inside it are shared: they are
// immutable and cloned again on every embedding.
func cloneDef(def map[string]any) Def {
	if def == nil {
		return Def{}
	}
	out := make(Def, len(def))
	for k, v := range def {
		switch t := v.(type) {
		case Def:
			out[k] = cloneDef(t)
		case map[string]any:
			out[k] = cloneDef(t)
		default:
			out[k] = v
		}
	}
	return out
}
