package runner

import (
	"context"
	"fmt"
	"strings"
)

// StepInterceptor is a middleware that can block a step before it runs.
// It returns true if execution should proceed; a blocked step is reported
// as skipped.
type StepInterceptor func(ctx context.Context, index int, step Step) (bool, error)

// MultiInterceptor chains multiple interceptors.
func MultiInterceptor(interceptors ...StepInterceptor) StepInterceptor {
	return func(ctx context.Context, index int, step Step) (bool, error) {
		for _, interceptor := range interceptors {
			allowed, err := interceptor(ctx, index, step)
			if err != nil {
				return false, err
			}
			if !allowed {
				return false, nil
			}
		}
		return true, nil
	}
}

// ConfirmationMiddleware asks before every step. "y", "yes" or an empty
// answer run the step; anything else skips it.
func ConfirmationMiddleware(p Prompter) StepInterceptor {
	return func(ctx context.Context, index int, step Step) (bool, error) {
		msg := fmt.Sprintf("Step %d: %s %v\nRun it? [Y/n]", index, step.Label(), step.Args)
		if err := p.SystemOutput(ctx, msg); err != nil {
			return false, err
		}

		input, err := p.Input(ctx)
		if err != nil {
			return false, err
		}

		switch strings.TrimSpace(strings.ToLower(input)) {
		case "", "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

// SkipMiddleware skips the steps whose label is listed.
func SkipMiddleware(labels ...string) StepInterceptor {
	skip := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		skip[l] = struct{}{}
	}
	return func(_ context.Context, _ int, step Step) (bool, error) {
		_, blocked := skip[step.Label()]
		return !blocked, nil
	}
}

// AutoApproveMiddleware allows everything.
func AutoApproveMiddleware() StepInterceptor {
	return func(context.Context, int, Step) (bool, error) {
		return true, nil
	}
}
