package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "arbor",
	Short:         "Arbor drives page-object trees against HTML pages",
	Long:          `Arbor loads a page file (a tree of named UI regions with composed locators) and runs scripts, inspections and a small HTTP API against it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultFile, "Project configuration file")
	rootCmd.PersistentFlags().String("pages", "", "Page file (overrides page_file from the config)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log debug output to stderr")
}

func projectOptions(cmd *cobra.Command) cli.ProjectOptions {
	cfgPath, _ := cmd.Flags().GetString("config")
	pages, _ := cmd.Flags().GetString("pages")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.ProjectOptions{
		ConfigPath: cfgPath,
		PageFile:   pages,
		Debug:      debug,
	}
}
