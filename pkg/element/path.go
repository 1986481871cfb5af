package element

import (
	"strings"
	"unicode/utf8"
)

// FormatType returns the PascalCase form of the node's display name.
// ok is false when the node has no name.
func FormatType(n *Node) (typ string, ok bool) {
	if n.name == "" {
		return "", false
	}
	camel := camelCase(n.name)
	if camel == "" {
		return "", false
	}
	return upperFirst(camel), true
}

// FormatPath returns a human-readable path for n, built from names only.
// op, when non-empty, is appended as a trailing ".op" segment.
//
//	<Root>              a named root
//	<Root>.child1       an unnamed child
//	<Root>.child2<Kid>  a named child; the type follows the segment
//	<Root>.child1.click a trailing operation
func FormatPath(n *Node, op string) string {
	typ, hasType := FormatType(n)

	if n.parent == nil {
		switch {
		case op == "" && !hasType:
			return ""
		case op == "":
			return "<" + typ + ">"
		case !hasType:
			return "." + op
		}
		return "<" + typ + ">." + op
	}

	path := FormatPath(n.parent.Parent, n.parent.Name)
	if hasType {
		path += "<" + typ + ">"
	}

	parts := make([]string, 0, 2)
	for _, p := range []string{path, op} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// camelCase lower-camel-cases s with ASCII-only case folding.
// Words split on separators, lower-to-upper transitions, the end of an
// acronym ("XMLHttp" -> XML, Http) and letter/digit edges.
func camelCase(s string) string {
	var sb strings.Builder
	for i, w := range splitWords(s) {
		w = lowerASCII(w)
		if i > 0 {
			w = upperFirst(w)
		}
		sb.WriteString(w)
	}
	return sb.String()
}

type charClass int

const (
	classSep charClass = iota
	classLower
	classUpper
	classDigit
)

func classify(r rune) charClass {
	switch {
	case r >= 'a' && r <= 'z':
		return classLower
	case r >= 'A' && r <= 'Z':
		return classUpper
	case r >= '0' && r <= '9':
		return classDigit
	case r >= utf8.RuneSelf:
		// Non-ASCII runes belong to words but never fold.
		return classLower
	}
	return classSep
}

func splitWords(s string) []string {
	runes := []rune(s)
	var (
		words []string
		start = -1
	)
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		c := classify(r)
		if c == classSep {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := classify(runes[i-1])
		switch {
		case prev == classLower && c == classUpper:
			flush(i)
			start = i
		case (prev == classDigit) != (c == classDigit):
			flush(i)
			start = i
		case prev == classUpper && c == classUpper &&
			i+1 < len(runes) && classify(runes[i+1]) == classLower:
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return words
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func upperFirst(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-('a'-'A')) + s[1:]
}
