package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the tree visualization",
	Long:  `Inspects the page file and outputs a Mermaid diagram (graph TD) of the node tree.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, _, err := cli.LoadTree(projectOptions(cmd))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(tree, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
