package ports

import "context"

// Command is a unit of work submitted to a Queue.
type Command struct {
	// Name is used for diagnostics only.
	Name string
	Run  func(ctx context.Context) error
}

// Queue runs commands one at a time, in submission order.
type Queue interface {
	// Enqueue schedules cmd and returns a channel that receives its result
	// exactly once. Callers that do not care about completion may drop it.
	Enqueue(ctx context.Context, cmd Command) <-chan error
}
