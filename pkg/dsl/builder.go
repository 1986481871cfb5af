package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/element"
)

// Builder manages the tree construction.
type Builder struct {
	root *NodeBuilder
}

// New creates a new tree builder.
func New() *Builder {
	return &Builder{root: newNodeBuilder()}
}

// Root returns the builder of the root node.
func (b *Builder) Root() *NodeBuilder {
	return b.root
}

// Add returns the builder of the node at path, a dotted list of child
// names. Missing nodes along the way are created.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(path string) *NodeBuilder {
	nb := b.root
	if path == "" {
		return nb
	}
	for _, name := range strings.Split(path, ".") {
		nb = nb.Child(name)
	}
	return nb
}

// Def assembles the nested definition without building it.
func (b *Builder) Def() element.Def {
	return b.root.Def()
}

// Build compiles the definition into a tree.
func (b *Builder) Build() (*element.Node, error) {
	n, err := element.Build(b.root.Def())
	if err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}
	return n, nil
}
