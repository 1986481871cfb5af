package dsl

import (
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/locator"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	def      element.Def
	children map[string]*NodeBuilder
}

func newNodeBuilder() *NodeBuilder {
	return &NodeBuilder{
		def:      make(element.Def),
		children: make(map[string]*NodeBuilder),
	}
}

// El sets the node locator: a string, a locator.Locator or a resolver.
func (n *NodeBuilder) El(loc any) *NodeBuilder {
	n.def[domain.KeyLocator] = loc
	return n
}

// Root sets a root-anchored locator, ignoring every ancestor.
func (n *NodeBuilder) Root(parts ...any) *NodeBuilder {
	n.def[domain.KeyLocator] = locator.Root(parts...)
	return n
}

// Name sets the display name used in log paths.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.def[domain.KeyName] = name
	return n
}

// Method adds a callable member bound to the node.
func (n *NodeBuilder) Method(name string, fn element.Method) *NodeBuilder {
	n.def[name] = fn
	return n
}

// Data adds a plain member.
func (n *NodeBuilder) Data(key string, value any) *NodeBuilder {
	n.def[key] = value
	return n
}

// With merges a prepared definition (a widget, for instance) into the node.
func (n *NodeBuilder) With(def element.Def) *NodeBuilder {
	for k, v := range def {
		n.def[k] = v
	}
	return n
}

// Child returns the builder of the named child, creating it on first use.
func (n *NodeBuilder) Child(name string) *NodeBuilder {
	if c, ok := n.children[name]; ok {
		return c
	}
	c := newNodeBuilder()
	n.children[name] = c
	return c
}

// Def returns the node definition, children included.
func (n *NodeBuilder) Def() element.Def {
	def := make(element.Def, len(n.def)+len(n.children))
	for k, v := range n.def {
		def[k] = v
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def[name] = n.children[name].Def()
	}
	return def
}
