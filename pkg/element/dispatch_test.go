package element_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/arbor/internal/testutils"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/instrument"
	"github.com/aretw0/arbor/pkg/locator"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine *testutils.Engine
	queue  ports.Queue
	rt     *element.Runtime
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	eng := testutils.NewEngine("should", "click", "visit", "type")
	q := testutils.NewQueue(t)
	rt := element.NewRuntime(eng, q, nil)
	return &fixture{
		engine: eng,
		queue:  q,
		rt:     rt,
		ctx:    element.NewContext(context.Background(), rt),
	}
}

func (f *fixture) trace(t *testing.T) []string {
	t.Helper()
	testutils.Drain(t, f.queue)
	return f.engine.Trace()
}

func TestGet_ReservedFields(t *testing.T) {
	f := newFixture(t)
	tree := element.MustBuild(element.Def{"el": ".root", "name": "page", "item": element.MustBuild(".item")})
	item := tree.Child("item")

	el, ok := item.Get(f.ctx, domain.KeyLocator).(element.Field)
	require.True(t, ok)
	assert.Equal(t, ".item", el.Value.(locator.Locator).String())

	name, ok := tree.Get(f.ctx, domain.KeyName).(element.Field)
	require.True(t, ok)
	assert.Equal(t, "page", name.Value)

	link, ok := item.Get(f.ctx, domain.KeyParent).(element.Field)
	require.True(t, ok)
	require.IsType(t, &element.ParentLink{}, link.Value)
	assert.Same(t, tree, link.Value.(*element.ParentLink).Parent)
	assert.Equal(t, "item", link.Value.(*element.ParentLink).Name)

	rootLink := tree.Get(f.ctx, domain.KeyParent).(element.Field)
	assert.Nil(t, rootLink.Value)

	// Fields are never logged.
	assert.Empty(t, f.trace(t))
}

func TestGet_OwnMembers(t *testing.T) {
	f := newFixture(t)
	tree := element.MustBuild(element.Def{
		"item":  element.MustBuild(".item"),
		"limit": 3,
		"click": element.Method(func(ctx context.Context, self *element.Node, args ...any) (any, error) {
			return "own click", nil
		}),
	})

	assert.Same(t, tree.Child("item"), tree.Get(f.ctx, "item"))
	assert.Equal(t, element.Data{Key: "limit", Value: 3}, tree.Get(f.ctx, "limit"))

	// An own method shadows the engine verb of the same name.
	m, ok := tree.Get(f.ctx, "click").(*element.BoundMethod)
	require.True(t, ok)
	assert.Equal(t, "click", m.Name())
}

func TestGet_VerbsNeedARuntime(t *testing.T) {
	f := newFixture(t)
	n := element.MustBuild(".item")

	v, ok := n.Get(f.ctx, "should").(*element.Verb)
	require.True(t, ok)
	assert.Equal(t, "should", v.Name())

	assert.Equal(t, element.Unknown, n.Get(context.Background(), "should"))
}

func TestGet_UnknownIsStable(t *testing.T) {
	f := newFixture(t)
	n := element.MustBuild(".item")

	first := n.Get(f.ctx, "notAThing")
	second := n.Get(f.ctx, "notAThing")

	assert.Equal(t, element.Unknown, first)
	assert.Equal(t, first, second)
	assert.Empty(t, f.trace(t), "probing logs nothing")
}

func TestMissingChild_IsForgiving(t *testing.T) {
	f := newFixture(t)
	tree := element.MustBuild(element.Def{"el": ".root", "item": element.MustBuild(".item")})

	missing := tree.Child("nope")
	require.Nil(t, missing)
	assert.Nil(t, missing.Child("deeper"))
	assert.Equal(t, element.Unknown, missing.Get(f.ctx, "click"))

	_, err := missing.Call(f.ctx, "click")
	assert.ErrorIs(t, err, domain.ErrUnknownMember)
	_, err = tree.Child("nope").Child("deeper").Delegate(f.ctx, "click")
	assert.ErrorIs(t, err, domain.ErrUnknownMember)
	assert.Empty(t, f.trace(t), "nothing reaches the engine")
}

func TestVerb_ComposedScope(t *testing.T) {
	f := newFixture(t)
	parent := element.MustBuild(element.Def{"el": ".root", "item": element.MustBuild(".item")})

	res, err := parent.Child("item").Call(f.ctx, "should", "have.text", "local item")
	require.NoError(t, err)

	subject, ok := res.(*element.Subject)
	require.True(t, ok)
	assert.Equal(t, ".root .item", subject.Handle().(*testutils.Handle).Scope)
	assert.Equal(t, ".item.should", subject.Path())

	assert.Equal(t, []string{
		"log-open .item.should ⤵ (grouped)",
		"get .root .item",
		"do [.root .item] should have.text local item",
		"log-close .item.should ⤵ -> [.root .item]",
	}, f.trace(t))
	assert.Zero(t, f.rt.Instrument().Open())
}

// Scenario D.
func TestVerb_EmptyChainUsesAmbientScope(t *testing.T) {
	f := newFixture(t)
	page := element.MustBuild(element.Def{"name": "page"})

	_, err := page.Call(f.ctx, "visit", "https://example.test/todo")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"log-open <Page>.visit ⤵",
		"do [] visit https://example.test/todo",
		"log-close <Page>.visit ⤵ -> engine",
	}, f.trace(t))
}

func TestVerb_RootAnchoredScope(t *testing.T) {
	f := newFixture(t)
	parent := element.MustBuild(element.Def{"el": ".root", "item": element.MustBuild(locator.Root(".item"))})

	_, err := parent.Child("item").Call(f.ctx, "should", "have.length", 2)
	require.NoError(t, err)
	assert.Contains(t, f.trace(t), "get .item")
}

func TestVerb_ResolverThreadsHandles(t *testing.T) {
	f := newFixture(t)
	custom := element.MustBuild(element.Def{
		"el": func(ctx context.Context, parent ports.Handle) (ports.Handle, error) {
			return parent.Find(ctx, "h1")
		},
	})
	parent := element.MustBuild(element.Def{"el": ".parent", "custom": custom})

	_, err := parent.Child("custom").Call(f.ctx, "should", "exist")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"log-open .custom.should ⤵ (grouped)",
		"get .parent",
		"find [.parent] h1",
		"do [.parent > h1] should exist",
		"log-close .custom.should ⤵ -> [.parent > h1]",
	}, f.trace(t))

	// Without a parent the resolver starts from the engine.
	_, err = custom.Call(f.ctx, "click")
	require.NoError(t, err)
	assert.Contains(t, f.trace(t), "get h1")
}

func TestVerb_ResolverCannotReenterRuntime(t *testing.T) {
	f := newFixture(t)
	other := element.MustBuild(".other")
	reentrant := element.MustBuild(element.Def{
		"el": func(ctx context.Context, parent ports.Handle) (ports.Handle, error) {
			_, err := other.Call(ctx, "click")
			return nil, err
		},
	})

	done := make(chan error, 1)
	go func() {
		_, err := reentrant.Call(f.ctx, "click")
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrNoRuntime)
	case <-time.After(5 * time.Second):
		t.Fatal("resolver re-entering the runtime blocked the queue")
	}
	assert.Zero(t, f.rt.Instrument().Open())
}

func TestVerb_ErrorsPropagateUnchanged(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("expected <div> to have text 'x'")
	f.engine.FailOn("should", boom)

	n := element.MustBuild(element.Def{"name": "item", "el": ".item"})
	_, err := n.Call(f.ctx, "should", "have.text", "x")
	assert.Same(t, boom, err)

	trace := f.trace(t)
	require.Len(t, trace, 4)
	assert.Equal(t, "log-close <Item>.should ⤵ err=expected <div> to have text 'x'", trace[3])
	assert.Zero(t, f.rt.Instrument().Open(), "the span is closed on failure too")
}

func TestVerb_OrderPreserved(t *testing.T) {
	f := newFixture(t)
	n := element.MustBuild(".btn")

	_, err := n.Call(f.ctx, "click")
	require.NoError(t, err)
	_, err = n.Call(f.ctx, "should", "have.class", "active")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"log-open .click ⤵ (grouped)",
		"get .btn",
		"do [.btn] click",
		"log-close .click ⤵ -> [.btn]",
		"log-open .should ⤵ (grouped)",
		"get .btn",
		"do [.btn] should have.class active",
		"log-close .should ⤵ -> [.btn]",
	}, f.trace(t))
}

func TestMethod_LogsThenRunsWithReceiver(t *testing.T) {
	f := newFixture(t)
	button := element.MustBuild(element.Def{
		"name": "button",
		"el":   ".btn",
		"press": element.Method(func(ctx context.Context, self *element.Node, args ...any) (any, error) {
			return self.Delegate(ctx, "click")
		}),
		"label": element.Method(func(ctx context.Context, self *element.Node, args ...any) (any, error) {
			return self.Name() + ":" + args[0].(string), nil
		}),
	})

	res, err := button.Call(f.ctx, "label", "ok")
	require.NoError(t, err)
	assert.Equal(t, "button:ok", res)

	_, err = button.Call(f.ctx, "press")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"log-open <Button>.label()",
		"log-close <Button>.label()",
		"log-open <Button>.press()",
		"log-open <Button>.click ⤵ (grouped)",
		"get .btn",
		"do [.btn] click",
		"log-close <Button>.click ⤵ -> [.btn]",
		"log-close <Button>.press() -> [.btn]",
	}, f.trace(t))
}

func TestMethod_WorksWithoutRuntime(t *testing.T) {
	n := element.MustBuild(element.Def{
		"double": element.Method(func(ctx context.Context, self *element.Node, args ...any) (any, error) {
			return args[0].(int) * 2, nil
		}),
	})
	res, err := n.Call(context.Background(), "double", 21)
	require.NoError(t, err)
	assert.Equal(t, 42, res)
}

func TestCall_Errors(t *testing.T) {
	f := newFixture(t)
	n := element.MustBuild(element.Def{"name": "x", "limit": 3, "kid": element.MustBuild(".kid")})

	_, err := n.Call(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownMember)
	assert.Contains(t, err.Error(), "<X>.nope")

	_, err = n.Call(context.Background(), "click")
	assert.ErrorIs(t, err, domain.ErrNoRuntime)

	_, err = n.Call(f.ctx, "limit")
	assert.ErrorIs(t, err, domain.ErrNotCallable)

	_, err = n.Call(f.ctx, "kid")
	assert.ErrorIs(t, err, domain.ErrNotCallable)

	_, err = n.Delegate(f.ctx, "hover")
	assert.ErrorIs(t, err, domain.ErrUnknownMember)

	_, err = n.Delegate(context.Background(), "click")
	assert.ErrorIs(t, err, domain.ErrNoRuntime)
}

func TestSubject_Chaining(t *testing.T) {
	f := newFixture(t)
	list := element.MustBuild(element.Def{"el": ".list"})

	s, err := list.Delegate(f.ctx, "should", "exist")
	require.NoError(t, err)
	s, err = s.Find(f.ctx, "li")
	require.NoError(t, err)
	s, err = s.Should(f.ctx, "have.length", 3)
	require.NoError(t, err)
	assert.Equal(t, ".should.find.should", s.Path())

	trace := f.trace(t)
	assert.Equal(t, []string{
		"find [.list] li",
		"do [.list > li] should have.length 3",
	}, trace[len(trace)-2:])
}

func TestRuntime_FromContext(t *testing.T) {
	_, ok := element.FromContext(context.Background())
	assert.False(t, ok)

	f := newFixture(t)
	rt, ok := element.FromContext(f.ctx)
	require.True(t, ok)
	assert.Same(t, f.rt, rt)
	assert.True(t, rt.HasVerb("click"))
	assert.False(t, rt.HasVerb("hover"))
	assert.Equal(t, f.engine, rt.Engine())
}

func TestRuntime_CustomInstrument(t *testing.T) {
	eng := testutils.NewEngine("click")
	q := testutils.NewQueue(t)

	var closed []string
	log := instrument.New(eng, q, instrument.WithLifecycleHooks(domain.LifecycleHooks{
		OnSpanClose: func(ctx context.Context, e *domain.SpanEvent) {
			closed = append(closed, e.Path)
		},
	}))
	rt := element.NewRuntime(eng, q, log)
	ctx := element.NewContext(context.Background(), rt)

	_, err := element.MustBuild(element.Def{"name": "btn", "el": "button"}).Call(ctx, "click")
	require.NoError(t, err)
	testutils.Drain(t, q)
	assert.Equal(t, []string{"<Btn>.click"}, closed)
}
