package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the page file for consistency",
	Long:  `Builds the page file and reports nodes whose composed locator is empty and nodes that compose to the same locator.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, _, err := cli.LoadTree(projectOptions(cmd))
		if err != nil {
			return err
		}
		if err := validator.ValidateTree(tree); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Page file is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
