package locator

import (
	"fmt"
	"strings"
)

// Root marks text as root-anchored. The parts are rendered with fmt.Sprint
// and concatenated without separators, so interpolated pieces print exactly
// as naive concatenation would:
//
//	Root(".list ", id, " li").String() == ".list " + fmt.Sprint(id) + " li"
func Root(parts ...any) Locator {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(fmt.Sprint(p))
	}
	return Locator{kind: KindRoot, text: sb.String()}
}

// Rootf is the printf flavour of Root.
func Rootf(format string, args ...any) Locator {
	return Locator{kind: KindRoot, text: fmt.Sprintf(format, args...)}
}

// IsRootAnchored reports whether v is a root-anchored Locator.
// Plain strings are never root-anchored, whatever their content.
func IsRootAnchored(v any) bool {
	l, ok := v.(Locator)
	return ok && l.kind == KindRoot
}
