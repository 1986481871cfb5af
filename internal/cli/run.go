package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/runner"
)

// ErrScriptFailed is returned when at least one step failed.
var ErrScriptFailed = errors.New("script failed")

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	ProjectOptions

	ScriptPath      string
	JSON            bool
	Quiet           bool
	Interactive     bool
	Trace           bool
	Watch           bool
	ContinueOnError bool
	Skip            string // Comma-separated step labels
	StepTimeout     time.Duration

	// Stdout and Stdin default to the process streams.
	Stdout io.Writer
	Stdin  io.Reader
}

func (o *RunOptions) resolveDefaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
}

// Execute handles the 'run' command logic, dispatching to a single run or
// Watch mode.
func Execute(ctx context.Context, opts RunOptions) error {
	opts.resolveDefaults()
	if opts.Watch {
		if opts.JSON || opts.Interactive {
			return fmt.Errorf("--watch cannot be combined with --json or --interactive")
		}
		return handleExecutionError(RunWatch(ctx, opts))
	}

	report, err := RunOnce(ctx, opts)
	if err := handleExecutionError(err); err != nil {
		return err
	}
	if report != nil && !report.OK() {
		return ErrScriptFailed
	}
	return nil
}

// RunOnce opens the project, runs the script once and closes the project.
func RunOnce(ctx context.Context, opts RunOptions) (*runner.Report, error) {
	opts.resolveDefaults()
	script, err := runner.Load(opts.ScriptPath)
	if err != nil {
		return nil, err
	}

	// Local runs may visit files next to the project; servers never do.
	if opts.FileRoot == "" {
		opts.FileRoot = projectDir(opts.ProjectOptions)
	}
	p, err := OpenProject(opts.ProjectOptions)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	if !opts.JSON && !opts.Quiet && isTerminal(opts.Stdout) {
		tui.PrintBanner(opts.Stdout, arbor.Version)
	}

	r := runner.NewRunner(createRunnerOptions(p, opts)...)
	report, err := r.Run(p.Session.Context(ctx), p.Tree, script)
	if err != nil {
		return report, err
	}

	if opts.Trace && !opts.JSON {
		if err := p.Session.Wait(ctx); err != nil {
			return report, err
		}
		printTrace(opts.Stdout, p)
	}
	return report, nil
}

// createRunnerOptions prepares the functional options for the Runner.
func createRunnerOptions(p *Project, opts RunOptions) []runner.Option {
	runOpts := []runner.Option{
		runner.WithLogger(p.Logger),
		runner.WithContinueOnError(opts.ContinueOnError || p.Config.Runner.ContinueOnError),
		runner.WithStepTimeout(p.Config.Runner.StepTimeout),
	}
	if opts.StepTimeout > 0 {
		runOpts = append(runOpts, runner.WithStepTimeout(opts.StepTimeout))
	}

	var interceptors []runner.StepInterceptor
	if skip := splitList(opts.Skip); len(skip) > 0 {
		interceptors = append(interceptors, runner.SkipMiddleware(skip...))
	}

	if opts.JSON {
		runOpts = append(runOpts, runner.WithHandler(runner.NewJSONHandler(opts.Stdout)))
	} else {
		thOpts := []runner.TextHandlerOption{
			runner.WithTextHandlerInput(opts.Stdin),
			runner.WithTextHandlerQuiet(opts.Quiet),
		}
		if isTerminal(opts.Stdout) {
			thOpts = append(thOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
		}
		h := runner.NewTextHandler(opts.Stdout, thOpts...)
		runOpts = append(runOpts, runner.WithHandler(h))
		if opts.Interactive {
			interceptors = append(interceptors, runner.ConfirmationMiddleware(h))
		}
	}

	if len(interceptors) > 0 {
		runOpts = append(runOpts, runner.WithInterceptor(runner.MultiInterceptor(interceptors...)))
	}
	return runOpts
}

func printTrace(w io.Writer, p *Project) {
	rec := p.Session.Recorder()
	if rec == nil {
		return
	}
	fmt.Fprintln(w)
	printSystemMessage(w, "Trace (%d spans)", rec.Total())
	for _, ev := range rec.Snapshot() {
		status := "ok  "
		if ev.IsError {
			status = "FAIL"
		}
		line := fmt.Sprintf("  %s %s", status, ev.DisplayName)
		if ev.Locator != "" {
			line += "  " + ev.Locator
		}
		fmt.Fprintln(w, line)
	}
}
