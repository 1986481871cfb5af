package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/locator"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
// Entries are node display paths as reported by element.Describe.
type GraphOverlay struct {
	VisitedNodes []string
	FailedNodes  []string
	CurrentNode  string
}

// OverlayFromSpans marks the nodes touched by the given span events.
// The most recent event's node becomes the current node.
func OverlayFromSpans(events []domain.SpanEvent) *GraphOverlay {
	o := &GraphOverlay{}
	for _, ev := range events {
		node := nodePath(ev.Path)
		o.VisitedNodes = append(o.VisitedNodes, node)
		if ev.IsError {
			o.FailedNodes = append(o.FailedNodes, node)
		}
		o.CurrentNode = node
	}
	return o
}

// nodePath drops the trailing member from a span path: "<Todo>.items.should"
// becomes "<Todo>.items". A bare member belongs to the unnamed root.
func nodePath(spanPath string) string {
	i := strings.LastIndex(spanPath, ".")
	if i <= 0 {
		return "<root>"
	}
	return spanPath[:i]
}

// GenerateMermaid produces a Mermaid flowchart of the tree rooted at root.
// It applies semantic styling:
// - Root-anchored locator: [[Subroutine]]
// - Resolver: {{Hexagon}}
// - No locator: (Rounded)
// - Default: [Rectangle]
// It also applies overlay styles (Visited/Failed/Current) if provided.
func GenerateMermaid(root *element.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	descs := element.Describe(root)
	ids := make(map[string]string, len(descs))
	for _, d := range descs {
		ids[d.Path] = mermaidID(d.Key)
	}

	for _, d := range descs {
		id := mermaidID(d.Key)

		opener, closer := "[", "]"
		switch d.Kind {
		case locator.KindRoot.String():
			opener, closer = "[[", "]]"
		case locator.KindResolver.String():
			opener, closer = "{{", "}}"
		case locator.KindNone.String():
			opener, closer = "(", ")"
		}

		label := escapeLabel(nodeLabel(d))
		if d.Locator != "" {
			label += "<br/>" + escapeLabel(d.Locator)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label, closer)

		for _, child := range d.Children {
			childKey := child
			if d.Key != "" {
				childKey = d.Key + "." + child
			}
			fmt.Fprintf(&sb, "    %s --> %s\n", id, mermaidID(childKey))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		writeClass(&sb, ids, overlay.VisitedNodes, "visited")
		writeClass(&sb, ids, overlay.FailedNodes, "failed")
		if id, ok := ids[overlay.CurrentNode]; ok {
			fmt.Fprintf(&sb, "    class %s current;\n", id)
		}
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, ids map[string]string, paths []string, class string) {
	seen := make(map[string]bool)
	for _, p := range paths {
		// Spans may name nodes that are not part of this tree.
		id, ok := ids[p]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		fmt.Fprintf(sb, "    class %s %s;\n", id, class)
	}
}

func nodeLabel(d element.Description) string {
	if d.Key == "" {
		return d.Path
	}
	name := d.Key[strings.LastIndex(d.Key, ".")+1:]
	if d.Type != "" {
		return name + " " + d.Type
	}
	return name
}

func escapeLabel(s string) string {
	return strings.NewReplacer(`"`, "'", "<", "&lt;", ">", "&gt;").Replace(s)
}

// mermaidID keeps ids clear of Mermaid keywords such as "end".
func mermaidID(key string) string {
	if key == "" {
		return "root"
	}
	return "root_" + sanitizeMermaidID(key)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
