package cli

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/element"
)

// InspectMarkdown renders the tree as a Markdown table, one row per node.
func InspectMarkdown(title string, tree *element.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	sb.WriteString("| key | path | locator | chain | methods |\n|---|---|---|---|---|\n")
	for _, d := range element.Describe(tree) {
		key := d.Key
		if key == "" {
			key = "(root)"
		}
		loc := d.Locator
		if d.Kind == "root" {
			loc = "⚓ " + loc
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s | %s |\n",
			key, cell(d.Path), cell(loc), cell(d.Chain), strings.Join(d.Methods, ", "))
	}
	return sb.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + strings.ReplaceAll(s, "|", `\|`) + "`"
}
