package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/ports"
)

// ErrClosed is returned for commands enqueued after Close.
var ErrClosed = errors.New("queue closed")

type job struct {
	ctx  context.Context
	cmd  ports.Command
	done chan error
}

// Serial runs commands on a single worker goroutine in FIFO order.
type Serial struct {
	mu     sync.Mutex
	closed bool
	jobs   chan job
	idle   chan struct{}

	buffer int
	logger *slog.Logger
}

var _ ports.Queue = (*Serial)(nil)

// Option configures a Serial queue.
type Option func(*Serial)

// WithLogger configures a logger for command failures.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Serial) {
		q.logger = logger
	}
}

// WithBuffer sets how many commands may wait before Enqueue blocks.
func WithBuffer(n int) Option {
	return func(q *Serial) {
		if n > 0 {
			q.buffer = n
		}
	}
}

// NewSerial starts the worker and returns the queue.
func NewSerial(opts ...Option) *Serial {
	q := &Serial{
		buffer: 64,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan job, q.buffer)
	q.idle = make(chan struct{})
	go q.work()
	return q
}

func (q *Serial) work() {
	defer close(q.idle)
	for j := range q.jobs {
		j.done <- q.run(j)
		close(j.done)
	}
}

// run skips commands whose context ended while they were waiting.
func (q *Serial) run(j job) (err error) {
	if err := j.ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %q panicked: %v", j.cmd.Name, r)
		}
		if err != nil {
			q.logger.Debug("command failed", "command", j.cmd.Name, "error", err)
		}
	}()
	return j.cmd.Run(j.ctx)
}

// Enqueue schedules cmd. The returned channel is buffered, so dropping it
// never blocks the worker.
func (q *Serial) Enqueue(ctx context.Context, cmd ports.Command) <-chan error {
	done := make(chan error, 1)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		done <- ErrClosed
		close(done)
		return done
	}
	q.jobs <- job{ctx: ctx, cmd: cmd, done: done}
	return done
}

// Close stops accepting commands and waits until the pending ones ran.
func (q *Serial) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	<-q.idle
	return nil
}

// Await enqueues cmd and waits for its result, or for ctx to end.
func Await(ctx context.Context, q ports.Queue, cmd ports.Command) error {
	select {
	case err := <-q.Enqueue(ctx, cmd):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
