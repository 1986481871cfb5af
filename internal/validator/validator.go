package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/element"
)

// Issue is one problem found in a tree.
type Issue struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("'%s': %s", i.Key, i.Message)
}

// Check reports children whose composed chain is empty and distinct nodes
// that compose to the same textual locator.
func Check(root *element.Node) []Issue {
	var issues []Issue
	byChain := make(map[string][]string)

	for _, d := range element.Describe(root) {
		if d.Key == "" {
			continue
		}
		if d.Chain == "" {
			// A node that only groups children is fine.
			if len(d.Children) == 0 {
				issues = append(issues, Issue{Key: d.Key, Message: "composed locator is empty; verbs act on the whole page"})
			}
			continue
		}
		if strings.Contains(d.Chain, "<resolver>") {
			continue
		}
		byChain[d.Chain] = append(byChain[d.Chain], d.Key)
	}

	chains := make([]string, 0, len(byChain))
	for c := range byChain {
		chains = append(chains, c)
	}
	sort.Strings(chains)
	for _, c := range chains {
		keys := byChain[c]
		if len(keys) < 2 {
			continue
		}
		for _, k := range keys[1:] {
			issues = append(issues, Issue{Key: k, Message: fmt.Sprintf("same locator %q as '%s'", c, keys[0])})
		}
	}
	return issues
}

// ValidateTree returns an error listing every issue, or nil.
func ValidateTree(root *element.Node) error {
	issues := Check(root)
	if len(issues) == 0 {
		return nil
	}
	lines := make([]string, len(issues))
	for i, is := range issues {
		lines[i] = is.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(issues), strings.Join(lines, "\n- "))
}
