package widgets_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/testutils"
	"github.com/aretw0/arbor/pkg/adapters/htmldoc"
	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/widgets"
)

const todoURL = "https://example.test/todo"

const todoHTML = `<html><head><title>Todo</title></head><body>
<form id="new-todo-form"><input data-test="new-todo" name="todo"></form>
<ul class="todo-list">
<li><div class="view"><input class="toggle" type="checkbox"><label>Pay electric bill</label></div></li>
<li><div class="view"><input class="toggle" type="checkbox"><label>Walk the dog</label></div></li>
</ul>
<button class="todo-button clear-completed">Clear completed</button>
<form id="prefs"><select name="sort"><option value="asc">Oldest</option><option value="desc">Newest</option></select></form>
</body></html>`

func setCompleted(ctx context.Context, self *element.Node, args ...any) (any, error) {
	s, err := self.Delegate(ctx, "contains", args[0])
	if err != nil {
		return nil, err
	}
	if s, err = s.Do(ctx, "parent"); err != nil {
		return nil, err
	}
	if s, err = s.Find(ctx, "input[type=checkbox]"); err != nil {
		return nil, err
	}
	return s.Do(ctx, "check")
}

func todoPage() *element.Node {
	return element.MustBuild(widgets.Page(todoURL, element.Def{
		"name": "todo",
		"items": widgets.Element(".todo-list li", element.Def{
			"setCompleted": element.Method(setCompleted),
		}),
		"newTodoField":         widgets.Input("[data-test=new-todo]", nil),
		"clearCompletedButton": widgets.Element("button.todo-button.clear-completed", nil),
		"prefs": widgets.Form("#prefs", element.Def{
			"sort": widgets.Select("select[name=sort]", nil),
		}),
	}))
}

type harness struct {
	engine *htmldoc.Engine
	ctx    context.Context
	drain  func()
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	eng := htmldoc.New(htmldoc.WithPage(todoURL, todoHTML))
	q := testutils.NewQueue(t)
	rt := element.NewRuntime(eng, q, nil)
	return &harness{
		engine: eng,
		ctx:    element.NewContext(context.Background(), rt),
		drain:  func() { testutils.Drain(t, q) },
	}
}

func (h *harness) spans() []string {
	h.drain()
	var out []string
	for _, e := range h.engine.Journal() {
		if e.Type != htmldoc.EntryCommand {
			out = append(out, e.String())
		}
	}
	return out
}

func TestPage_VisitDefaultURL(t *testing.T) {
	h := newHarness(t)
	page := todoPage()

	_, err := page.Call(h.ctx, "visit")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"span-open <Todo>.visit()",
		"span-open <Todo>.visit ⤵",
		"span-close <Todo>.visit ⤵ window",
		"span-close <Todo>.visit() window",
	}, h.spans())
	assert.Equal(t, "command visit "+todoURL, h.engine.Journal()[2].String())
}

func TestPage_Getters(t *testing.T) {
	h := newHarness(t)
	page := todoPage()
	_, err := page.Call(h.ctx, "visit")
	require.NoError(t, err)

	res, err := page.Call(h.ctx, "getTitle")
	require.NoError(t, err)
	title, ok := res.(*element.Subject).Handle().(*htmldoc.Selection).Value()
	require.True(t, ok)
	assert.Equal(t, "Todo", title)

	res, err = page.Call(h.ctx, "getUrl")
	require.NoError(t, err)
	_, err = res.(*element.Subject).Should(h.ctx, "eq", todoURL)
	assert.NoError(t, err)
}

func TestElement_ComposedLocator(t *testing.T) {
	h := newHarness(t)
	page := todoPage()
	_, err := page.Call(h.ctx, "visit")
	require.NoError(t, err)

	_, err = page.Child("items").Call(h.ctx, "should", "have.length", 2)
	require.NoError(t, err)

	spans := h.spans()
	assert.Equal(t, "span-open <Todo>.items.should ⤵ .todo-list li", spans[len(spans)-2])
	assert.Equal(t, "span-close <Todo>.items.should ⤵ <li> (2)", spans[len(spans)-1])
}

func TestElement_CustomMethod(t *testing.T) {
	h := newHarness(t)
	page := todoPage()
	_, err := page.Call(h.ctx, "visit")
	require.NoError(t, err)

	items := page.Child("items")
	_, err = items.Call(h.ctx, "setCompleted", "Pay electric bill")
	require.NoError(t, err)

	s, err := items.Delegate(h.ctx, "first")
	require.NoError(t, err)
	s, err = s.Find(h.ctx, ".toggle")
	require.NoError(t, err)
	_, err = s.Should(h.ctx, "be.checked")
	assert.NoError(t, err)
}

func TestInput_TypeAndSubmit(t *testing.T) {
	h := newHarness(t)
	page := todoPage()
	_, err := page.Call(h.ctx, "visit")
	require.NoError(t, err)

	field := page.Child("newTodoField")
	_, err = field.Call(h.ctx, "type", "Feed the cat{enter}")
	require.NoError(t, err)
	_, err = field.Call(h.ctx, "should", "have.value", "Feed the cat")
	require.NoError(t, err)

	subs := h.engine.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "Feed the cat", subs[0].Values.Get("todo"))

	_, err = field.Call(h.ctx, "clear")
	require.NoError(t, err)
	_, err = field.Call(h.ctx, "should", "have.value", "")
	assert.NoError(t, err)
}

func TestSelect_SetAndGetValue(t *testing.T) {
	h := newHarness(t)
	page := todoPage()
	_, err := page.Call(h.ctx, "visit")
	require.NoError(t, err)

	prefs := page.Child("prefs")
	sort := prefs.Child("sort")

	_, err = sort.Call(h.ctx, "setValue", "Newest")
	require.NoError(t, err)

	res, err := sort.Call(h.ctx, "getValue")
	require.NoError(t, err)
	v, _ := res.(*element.Subject).Handle().(*htmldoc.Selection).Value()
	assert.Equal(t, "desc", v)

	_, err = prefs.Call(h.ctx, "submit")
	require.NoError(t, err)
	subs := h.engine.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "desc", subs[0].Values.Get("sort"))
}

func TestWidget_ErrorsReachTheCaller(t *testing.T) {
	h := newHarness(t)
	page := todoPage()

	// Nothing visited yet.
	_, err := page.Child("clearCompletedButton").Call(h.ctx, "click")
	assert.ErrorIs(t, err, htmldoc.ErrNoDocument)

	spans := h.spans()
	assert.Equal(t, "span-close <Todo>.clearCompletedButton.click() err=no document loaded", spans[len(spans)-1])
}

func TestWidget_MembersOverrideMethods(t *testing.T) {
	called := false
	def := widgets.Element(".btn", element.Def{
		"click": element.Method(func(ctx context.Context, self *element.Node, args ...any) (any, error) {
			called = true
			return nil, nil
		}),
	})
	_, err := element.MustBuild(def).Call(context.Background(), "click")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRegister(t *testing.T) {
	r := widgets.NewRegistry()
	assert.Equal(t, []string{"element", "form", "input", "page", "select"}, r.Kinds())

	def, err := r.Define(widgets.KindPage, nil, element.Def{"url": todoURL})
	require.NoError(t, err)
	n := element.MustBuild(def)
	assert.True(t, n.Locator().IsZero())
	assert.Contains(t, n.Methods(), "visit")

	def, err = r.Define(widgets.KindInput, "input.q", nil)
	require.NoError(t, err)
	n = element.MustBuild(def)
	assert.Equal(t, "input.q", n.Locator().String())
	assert.Contains(t, n.Methods(), "type")
}
