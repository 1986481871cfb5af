package observability

import (
	"context"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// DefaultCapacity is the number of spans a Recorder keeps when none is given.
const DefaultCapacity = 256

// Recorder keeps the last closed spans in a ring buffer.
type Recorder struct {
	mu    sync.RWMutex
	buf   []domain.SpanEvent
	next  int
	full  bool
	total uint64
}

// NewRecorder creates a recorder holding up to capacity spans.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{buf: make([]domain.SpanEvent, capacity)}
}

// Hooks returns lifecycle hooks feeding the recorder.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSpanClose: func(_ context.Context, e *domain.SpanEvent) {
			r.Record(*e)
		},
	}
}

// Record stores e, evicting the oldest span when full.
func (r *Recorder) Record(e domain.SpanEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = e
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
	r.total++
}

// Snapshot returns the recorded spans, oldest first.
func (r *Recorder) Snapshot() []domain.SpanEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.full {
		return append([]domain.SpanEvent(nil), r.buf[:r.next]...)
	}
	out := make([]domain.SpanEvent, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// Total returns how many spans were recorded, including evicted ones.
func (r *Recorder) Total() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}

// Failed returns the recorded spans that closed with an error.
func (r *Recorder) Failed() []domain.SpanEvent {
	var out []domain.SpanEvent
	for _, e := range r.Snapshot() {
		if e.IsError {
			out = append(out, e)
		}
	}
	return out
}
