package element

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Subject is the narrowed scope returned by a verb. Further calls apply to
// that scope and go through the same queue.
type Subject struct {
	rt     *Runtime
	handle ports.Handle
	path   string
}

// Handle returns the engine handle.
func (s *Subject) Handle() ports.Handle { return s.handle }

// Path returns the path of the call that produced the subject.
func (s *Subject) Path() string { return s.path }

// Do runs verb on the subject's scope.
func (s *Subject) Do(ctx context.Context, verb string, args ...any) (*Subject, error) {
	path := s.path + "." + verb
	h, err := s.rt.exec(ctx, "chain:"+path, func(ctx context.Context) (ports.Handle, error) {
		return s.handle.Do(ctx, verb, args...)
	})
	if err != nil {
		return nil, err
	}
	return &Subject{rt: s.rt, handle: h, path: path}, nil
}

// Find narrows the subject by a relative locator.
func (s *Subject) Find(ctx context.Context, loc string) (*Subject, error) {
	path := s.path + ".find"
	h, err := s.rt.exec(ctx, "chain:"+path, func(ctx context.Context) (ports.Handle, error) {
		return s.handle.Find(ctx, loc)
	})
	if err != nil {
		return nil, err
	}
	return &Subject{rt: s.rt, handle: h, path: path}, nil
}

// Should is shorthand for Do(ctx, "should", args...).
func (s *Subject) Should(ctx context.Context, args ...any) (*Subject, error) {
	return s.Do(ctx, domain.VerbShould, args...)
}
