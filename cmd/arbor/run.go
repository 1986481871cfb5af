package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <script.yaml>",
	Short: "Run a step script against the page file",
	Long:  `Loads the page file, opens the configured pages in the HTML engine and runs each step of the script, reporting spans and assertion failures.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{
			ProjectOptions: projectOptions(cmd),
			ScriptPath:     args[0],
		}
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")
		opts.Interactive, _ = cmd.Flags().GetBool("interactive")
		opts.Trace, _ = cmd.Flags().GetBool("trace")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
		opts.Skip, _ = cmd.Flags().GetString("skip")
		opts.StepTimeout, _ = cmd.Flags().GetDuration("step-timeout")
		opts.Stdout = cmd.OutOrStdout()
		opts.Stdin = os.Stdin

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.Execute(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Write NDJSON events instead of text")
	runCmd.Flags().BoolP("quiet", "q", false, "Only print the summary")
	runCmd.Flags().BoolP("interactive", "i", false, "Confirm every step before it runs")
	runCmd.Flags().Bool("trace", false, "Print the recorded spans after the run")
	runCmd.Flags().BoolP("watch", "w", false, "Re-run whenever the script, config or pages change")
	runCmd.Flags().Bool("continue-on-error", false, "Keep going after a failed step")
	runCmd.Flags().String("skip", "", "Comma-separated step labels to skip (e.g. items.click)")
	runCmd.Flags().Duration("step-timeout", 0, "Per-step timeout (overrides the config)")
}
