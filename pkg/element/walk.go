package element

import (
	"errors"
	"fmt"
	"strings"
)

// SkipChildren can be returned by a WalkFunc to skip a node's subtree.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every node. key is the dotted member path from the
// walk's root ("" for the root itself).
type WalkFunc func(key string, n *Node) error

// Walk visits n and its descendants depth-first, children in lexical order.
func Walk(n *Node, fn WalkFunc) error {
	return walk("", n, fn)
}

func walk(key string, n *Node, fn WalkFunc) error {
	if err := fn(key, n); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	for _, name := range n.Children() {
		childKey := name
		if key != "" {
			childKey = key + "." + name
		}
		if err := walk(childKey, n.children[name], fn); err != nil {
			return err
		}
	}
	return nil
}

// Lookup follows a dotted member path ("todo.items") from n.
// An empty path returns n.
func Lookup(n *Node, path string) (*Node, error) {
	if path == "" {
		return n, nil
	}
	cur := n
	for _, seg := range strings.Split(path, ".") {
		next := cur.children[seg]
		if next == nil {
			return nil, fmt.Errorf("no child %q under %q", seg, displayPath(cur))
		}
		cur = next
	}
	return cur, nil
}

// Description is a flat, serialisable view of one node.
type Description struct {
	Key      string   `json:"key"`
	Path     string   `json:"path"`
	Type     string   `json:"type,omitempty"`
	Locator  string   `json:"locator,omitempty"`
	Kind     string   `json:"kind"`
	Chain    string   `json:"chain"`
	Children []string `json:"children,omitempty"`
	Methods  []string `json:"methods,omitempty"`
}

// Describe flattens the tree rooted at n.
func Describe(n *Node) []Description {
	var out []Description
	_ = Walk(n, func(key string, node *Node) error {
		typ, _ := FormatType(node)
		out = append(out, Description{
			Key:      key,
			Path:     displayPath(node),
			Type:     typ,
			Locator:  node.loc.String(),
			Kind:     node.loc.Kind().String(),
			Chain:    ResolvePlan(node).String(),
			Children: node.Children(),
			Methods:  node.Methods(),
		})
		return nil
	})
	return out
}

func displayPath(n *Node) string {
	if p := FormatPath(n, ""); p != "" {
		return p
	}
	return "<root>"
}
