package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/instrument"
)

// ErrUnexpectedSuccess fails a step that was expected to fail but did not.
var ErrUnexpectedSuccess = errors.New("expected an error")

// Runner executes scripts against a tree.
// The context passed to Run must carry the session runtime for engine verbs
// to resolve.
type Runner struct {
	// Handler reports progress. If nil, events are discarded.
	Handler Handler

	// Interceptor runs before each step. If nil, every step runs.
	Interceptor StepInterceptor

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	ContinueOnError bool
	StepTimeout     time.Duration

	now func() time.Time
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Handler:     nopHandler{},
		Interceptor: AutoApproveMiddleware(),
		Logger:      logging.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes script step by step. Step failures are recorded in the
// report; the returned error is reserved for handler, interceptor and
// context failures.
func (r *Runner) Run(ctx context.Context, tree *element.Node, script *Script) (*Report, error) {
	r.resolveDefaults()
	started := r.now()
	report := &Report{Script: script.Name}
	keepGoing := r.ContinueOnError || script.ContinueOnError
	halted := false

	for i, step := range script.Steps {
		index := i + 1
		if err := ctx.Err(); err != nil {
			report.Duration = r.now().Sub(started)
			return report, err
		}

		if halted {
			if err := r.finish(ctx, report, StepResult{Index: index, Step: step, Status: StatusSkipped}); err != nil {
				return report, err
			}
			continue
		}

		allowed, err := r.Interceptor(ctx, index, step)
		if err != nil {
			return report, fmt.Errorf("step interceptor: %w", err)
		}
		if !allowed {
			r.Logger.Debug("step skipped by policy", "index", index, "step", step.Label())
			if err := r.finish(ctx, report, StepResult{Index: index, Step: step, Status: StatusSkipped}); err != nil {
				return report, err
			}
			continue
		}

		if err := r.Handler.StepStarted(ctx, index, step); err != nil {
			return report, fmt.Errorf("handler: %w", err)
		}
		res := r.runStep(ctx, tree, script, index, step)
		if err := r.finish(ctx, report, res); err != nil {
			return report, err
		}
		if res.Status == StatusFailed && !keepGoing {
			halted = true
		}
	}

	report.Duration = r.now().Sub(started)
	if err := r.Handler.Summary(ctx, report); err != nil {
		return report, fmt.Errorf("handler: %w", err)
	}
	return report, nil
}

func (r *Runner) resolveDefaults() {
	if r.Handler == nil {
		r.Handler = nopHandler{}
	}
	if r.Interceptor == nil {
		r.Interceptor = AutoApproveMiddleware()
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
}

func (r *Runner) finish(ctx context.Context, report *Report, res StepResult) error {
	report.add(res)
	if err := r.Handler.StepFinished(ctx, res); err != nil {
		return fmt.Errorf("handler: %w", err)
	}
	return nil
}

func (r *Runner) timeout(script *Script, step Step) time.Duration {
	switch {
	case step.Timeout > 0:
		return step.Timeout
	case script.Timeout > 0:
		return script.Timeout
	}
	return r.StepTimeout
}

func (r *Runner) runStep(ctx context.Context, tree *element.Node, script *Script, index int, step Step) StepResult {
	res := StepResult{Index: index, Step: step}
	if d := r.timeout(script, step); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	started := r.now()
	out, err := call(ctx, tree, step)
	res.Duration = r.now().Sub(started)

	switch {
	case step.ExpectError && err != nil:
		res.Status = StatusPassed
		res.Result = "failed as expected: " + err.Error()
	case step.ExpectError:
		res.Status = StatusFailed
		res.Error = ErrUnexpectedSuccess.Error()
	case err != nil:
		res.Status = StatusFailed
		res.Error = err.Error()
	default:
		res.Status = StatusPassed
		res.Result = out
	}
	r.Logger.Debug("step finished",
		"index", index,
		"step", step.Label(),
		"status", res.Status,
		"duration", res.Duration,
		"error", err,
	)
	return res
}

func call(ctx context.Context, tree *element.Node, step Step) (string, error) {
	n, err := element.Lookup(tree, step.Node)
	if err != nil {
		return "", err
	}
	out, err := n.Call(ctx, step.Call, step.Args...)
	if err != nil {
		return "", err
	}
	for _, c := range step.Then {
		subject, ok := out.(*element.Subject)
		if !ok || subject == nil {
			return "", fmt.Errorf("%s returned %T, nothing to chain %s on", step.Label(), out, c.Call)
		}
		if out, err = subject.Do(ctx, c.Call, c.Args...); err != nil {
			return "", err
		}
	}
	return describe(out), nil
}

func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case *element.Subject:
		if t == nil {
			return ""
		}
		return instrument.Describe(t.Handle())
	}
	return fmt.Sprint(v)
}
