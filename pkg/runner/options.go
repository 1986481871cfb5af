package runner

import (
	"log/slog"
	"time"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithHandler configures how progress is reported.
func WithHandler(handler Handler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithInterceptor configures the step middleware.
func WithInterceptor(interceptor StepInterceptor) Option {
	return func(r *Runner) {
		r.Interceptor = interceptor
	}
}

// WithContinueOnError runs every step even after a failure, overriding the script.
func WithContinueOnError(enabled bool) Option {
	return func(r *Runner) {
		r.ContinueOnError = enabled
	}
}

// WithStepTimeout bounds steps that set no timeout of their own and belong
// to a script without one.
func WithStepTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.StepTimeout = d
	}
}
