package element

import (
	"slices"

	"github.com/aretw0/arbor/pkg/locator"
)

// ResolveChain returns the locator fragments addressing n, root to leaf.
//
// The walk goes upward from n. Nodes without a locator are skipped. The
// first root-anchored fragment met ends the textual part of the chain:
// text above it is ignored. Resolver fragments above it still take part,
// because they compose by handle rather than by text.
//
// The chain is recomputed on every call.
func ResolveChain(n *Node) []locator.Locator {
	var (
		chain    []locator.Locator
		anchored bool
	)
	for cur := n; cur != nil; cur = cur.Parent() {
		l := cur.loc
		switch {
		case l.IsZero():
		case l.Kind() == locator.KindText && l.String() == "":
		case anchored:
			if l.Kind() == locator.KindResolver {
				chain = append(chain, l)
			}
		default:
			chain = append(chain, l)
			if l.Kind() == locator.KindRoot {
				anchored = true
			}
		}
	}
	slices.Reverse(chain)
	return chain
}

// ResolvePlan is ResolveChain collapsed into an executable plan.
func ResolvePlan(n *Node) locator.Plan {
	return locator.Compose(ResolveChain(n))
}
