package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerial_RunsInSubmissionOrder(t *testing.T) {
	q := queue.NewSerial()
	defer q.Close()

	var (
		mu    sync.Mutex
		order []int
	)
	var waits []<-chan error
	for i := 0; i < 50; i++ {
		i := i
		waits = append(waits, q.Enqueue(context.Background(), ports.Command{
			Name: "append",
			Run: func(ctx context.Context) error {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, i)
				return nil
			},
		}))
	}
	for _, w := range waits {
		require.NoError(t, <-w)
	}

	require.Len(t, order, 50)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestSerial_NotOnCallerStack(t *testing.T) {
	q := queue.NewSerial()
	defer q.Close()

	ran := make(chan struct{})
	release := make(chan struct{})
	q.Enqueue(context.Background(), ports.Command{Name: "block", Run: func(ctx context.Context) error {
		<-release
		return nil
	}})
	done := q.Enqueue(context.Background(), ports.Command{Name: "mark", Run: func(ctx context.Context) error {
		close(ran)
		return nil
	}})

	select {
	case <-ran:
		t.Fatal("command ran before the one ahead of it finished")
	default:
	}
	close(release)
	require.NoError(t, <-done)
	<-ran
}

func TestSerial_PropagatesErrors(t *testing.T) {
	q := queue.NewSerial()
	defer q.Close()

	boom := errors.New("boom")
	err := queue.Await(context.Background(), q, ports.Command{Name: "fail", Run: func(ctx context.Context) error {
		return boom
	}})
	assert.Same(t, boom, err)
}

func TestSerial_RecoversPanics(t *testing.T) {
	q := queue.NewSerial()
	defer q.Close()

	err := queue.Await(context.Background(), q, ports.Command{Name: "explode", Run: func(ctx context.Context) error {
		panic("kaboom")
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")

	// The worker survives.
	assert.NoError(t, queue.Await(context.Background(), q, ports.Command{Name: "ok", Run: func(ctx context.Context) error { return nil }}))
}

func TestSerial_SkipsCanceledCommands(t *testing.T) {
	q := queue.NewSerial()
	defer q.Close()

	release := make(chan struct{})
	q.Enqueue(context.Background(), ports.Command{Name: "block", Run: func(ctx context.Context) error {
		<-release
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	done := q.Enqueue(ctx, ports.Command{Name: "late", Run: func(ctx context.Context) error {
		ran = true
		return nil
	}})
	cancel()
	close(release)

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, ran)
}

func TestSerial_Close(t *testing.T) {
	q := queue.NewSerial(queue.WithBuffer(4))

	var count int
	for i := 0; i < 3; i++ {
		q.Enqueue(context.Background(), ports.Command{Name: "slow", Run: func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			count++
			return nil
		}})
	}
	require.NoError(t, q.Close())
	assert.Equal(t, 3, count, "Close drains pending commands")

	err := <-q.Enqueue(context.Background(), ports.Command{Name: "after", Run: func(ctx context.Context) error { return nil }})
	assert.ErrorIs(t, err, queue.ErrClosed)
	assert.NoError(t, q.Close(), "Close is idempotent")
}
