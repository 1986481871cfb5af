package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/element"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List every node of the page file",
	Long:  `Prints each node with its display path, own locator, composed locator chain and methods.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, cfg, err := cli.LoadTree(projectOptions(cmd))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(element.Describe(tree))
		}

		md := cli.InspectMarkdown(filepath.Base(cfg.PageFile), tree)
		if plain, _ := cmd.Flags().GetBool("plain"); !plain {
			if rendered, err := tui.NewRenderer()(md); err == nil {
				md = rendered
			}
		}
		fmt.Fprint(out, md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("json", false, "Print the nodes as JSON")
	inspectCmd.Flags().Bool("plain", false, "Print raw Markdown")
}
