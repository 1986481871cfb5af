package element

import (
	"context"
	"maps"
	"slices"

	"github.com/aretw0/arbor/pkg/locator"
)

// Def is the literal definition of a node.
//
// Recognised entries: "el" (a locator-shaped value), "name" (string),
// nested nodes (*Node or Def), methods (Method or a func with the same
// signature). Anything else is kept as plain data.
type Def map[string]any

// Method is a user function attached to a node. self is the node the
// method was looked up on.
type Method func(ctx context.Context, self *Node, args ...any) (any, error)

// ParentLink records where a node is attached.
type ParentLink struct {
	Parent *Node
	Name   string
}

// Node is a unit of the declared hierarchy. Nodes are immutable once
// Build returned them.
type Node struct {
	loc      locator.Locator
	name     string
	children map[string]*Node
	methods  map[string]Method
	data     map[string]any
	parent   *ParentLink

	// config is the snapshot the node was built from.
	config Def
}

// Locator returns the node's own locator (zero when it has none).
func (n *Node) Locator() locator.Locator { return n.loc }

// Name returns the raw display name.
func (n *Node) Name() string { return n.name }

// Parent returns the node this one is attached to, or nil for a root.
func (n *Node) Parent() *Node {
	if n.parent == nil {
		return nil
	}
	return n.parent.Parent
}

// Link returns the parent link, or nil for a root.
func (n *Node) Link() *ParentLink {
	if n.parent == nil {
		return nil
	}
	link := *n.parent
	return &link
}

// Child returns the named child, or nil. Lookups through a nil node
// yield nil, so chains like n.Child("a").Child("b") never panic.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	return n.children[name]
}

// Children returns child names in lexical order.
func (n *Node) Children() []string {
	return slices.Sorted(maps.Keys(n.children))
}

// Methods returns method names in lexical order.
func (n *Node) Methods() []string {
	return slices.Sorted(maps.Keys(n.methods))
}

// Config returns a copy of the definition the node was built from.
func (n *Node) Config() Def {
	return cloneDef(n.config)
}

// Set is the write side of member access. Nodes reject every assignment:
// parent links are written by Build only, before a node is exposed.
func (n *Node) Set(name string, value any) bool {
	return false
}

// attach is called by the parent's construction step, once per node.
func (n *Node) attach(parent *Node, name string) {
	if n.parent != nil {
		panic("element: parent link already set for " + name)
	}
	n.parent = &ParentLink{Parent: parent, Name: name}
}
