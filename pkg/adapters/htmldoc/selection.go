package htmldoc

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Selection is a scope of the document: a set of elements, or a plain
// value yielded by invoke, title, url or hash.
type Selection struct {
	engine   *Engine
	sel      *goquery.Selection
	query    string
	value    any
	hasValue bool
}

var _ ports.Handle = (*Selection)(nil)

// Len returns the number of selected elements.
func (s *Selection) Len() int {
	if s.sel == nil {
		return 0
	}
	return s.sel.Length()
}

// Text returns the combined text of the selection.
func (s *Selection) Text() string {
	if s.sel == nil {
		return ""
	}
	return s.sel.Text()
}

// Value returns the yielded value and whether the selection carries one.
func (s *Selection) Value() (any, bool) {
	return s.value, s.hasValue
}

func (s *Selection) String() string {
	if s.hasValue {
		return fmt.Sprintf("%q", fmt.Sprint(s.value))
	}
	if s.Len() == 0 {
		return s.query + " (none)"
	}
	return fmt.Sprintf("%s (%d)", describeNode(s.sel.First()), s.Len())
}

func describeNode(sel *goquery.Selection) string {
	var sb strings.Builder
	sb.WriteString("<" + goquery.NodeName(sel))
	if id, ok := sel.Attr("id"); ok && id != "" {
		sb.WriteString("#" + id)
	}
	if class, ok := sel.Attr("class"); ok && class != "" {
		sb.WriteString("." + strings.Join(strings.Fields(class), "."))
	}
	sb.WriteString(">")
	return sb.String()
}

// Find narrows the selection to matching descendants.
func (s *Selection) Find(ctx context.Context, loc string) (ports.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	e.record(Entry{Type: EntryCommand, Name: "find", Scope: s.query, Detail: loc})
	return handle(s.find(loc))
}

func (s *Selection) find(loc string) (*Selection, error) {
	if s.sel == nil {
		return nil, fmt.Errorf("%w: find on a value subject", ErrUnsupported)
	}
	return s.derive(s.sel.Find(loc), s.query+" "+loc), nil
}

func (s *Selection) derive(sel *goquery.Selection, query string) *Selection {
	return &Selection{engine: s.engine, sel: sel, query: query}
}

func (s *Selection) yield(v any) *Selection {
	return &Selection{engine: s.engine, sel: s.sel, query: s.query, value: v, hasValue: true}
}

// Do runs verb on the selection.
func (s *Selection) Do(ctx context.Context, verb string, args ...any) (ports.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	e.record(Entry{Type: EntryCommand, Name: verb, Scope: s.query, Detail: formatArgs(args)})
	e.logger.Debug("engine command", "verb", verb, "scope", s.query, "args", args)
	return handle(s.do(verb, args))
}

// handle keeps a failed result from becoming a non-nil interface.
func handle(s *Selection, err error) (ports.Handle, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// do runs with the engine lock held.
func (s *Selection) do(verb string, args []any) (*Selection, error) {
	switch verb {
	case domain.VerbShould:
		if err := s.should(args); err != nil {
			return nil, err
		}
		return s, nil
	case domain.VerbFind:
		loc, err := stringArg(verb, args, 0)
		if err != nil {
			return nil, err
		}
		return s.find(loc)
	case domain.VerbContains:
		return s.contains(args)
	case domain.VerbInvoke:
		return s.invoke(args)
	case domain.VerbTitle, domain.VerbURL, domain.VerbHash:
		return s.yield(s.engine.windowValue(verb)), nil
	}

	if s.sel == nil {
		return nil, fmt.Errorf("%w: %s on a value subject", ErrUnsupported, verb)
	}

	switch verb {
	case domain.VerbParent:
		return s.derive(s.sel.Parent(), s.query+" < parent"), nil
	case domain.VerbFirst:
		return s.derive(s.sel.First(), s.query+":first"), nil
	case domain.VerbLast:
		return s.derive(s.sel.Last(), s.query+":last"), nil
	case domain.VerbEq:
		i, err := intArg(verb, args, 0)
		if err != nil {
			return nil, err
		}
		return s.derive(s.sel.Eq(i), fmt.Sprintf("%s:eq(%d)", s.query, i)), nil
	}

	if s.Len() == 0 {
		return nil, fmt.Errorf("%w: %s on %q", ErrNotFound, verb, s.query)
	}

	switch verb {
	case domain.VerbClick:
		return s, s.click()
	case domain.VerbDblClick, domain.VerbRightClick, domain.VerbScrollIntoView, domain.VerbScrollTo:
		return s, nil
	case domain.VerbType:
		text, err := stringArg(verb, args, 0)
		if err != nil {
			return nil, err
		}
		return s, s.typeText(text)
	case domain.VerbClear:
		return s, s.eachControl(verb, func(c *goquery.Selection) { setValue(c, "") })
	case domain.VerbCheck:
		return s, s.setChecked(verb, true)
	case domain.VerbUncheck:
		return s, s.setChecked(verb, false)
	case domain.VerbSelect:
		return s, s.selectOption(args)
	case domain.VerbSubmit:
		if !s.sel.Is("form") {
			return nil, fmt.Errorf("%w: submit on <%s>", ErrUnsupported, goquery.NodeName(s.sel))
		}
		s.submit(s.sel.First())
		return s, nil
	case domain.VerbFocus:
		s.engine.focused = s.sel.First()
		return s, nil
	case domain.VerbBlur:
		if f := s.engine.focused; f == nil || !f.IsSelection(s.sel.First()) {
			return nil, fmt.Errorf("%w: blur on an element without focus", ErrUnsupported)
		}
		s.engine.focused = nil
		return s, nil
	}
	return nil, fmt.Errorf("%w: verb %q", ErrUnsupported, verb)
}

func (s *Selection) click() error {
	el := s.sel.First()
	switch {
	case el.Is("input[type=checkbox]"):
		_, checked := el.Attr("checked")
		toggleChecked(el, !checked)
	case el.Is("input[type=radio]"):
		toggleChecked(el, true)
	case el.Is("a[href]"):
		href, _ := el.Attr("href")
		if frag, ok := strings.CutPrefix(href, "#"); ok {
			s.engine.current.Fragment = frag
		}
	case el.Is("button[type=submit], input[type=submit]"), el.Is("form button:not([type])"):
		if form := el.Closest("form"); form.Length() > 0 {
			s.submit(form)
		}
	}
	return nil
}

func (s *Selection) typeText(text string) error {
	enter := strings.HasSuffix(text, "{enter}")
	text = strings.TrimSuffix(text, "{enter}")

	el := s.sel.First()
	if !isControl(el) {
		return fmt.Errorf("%w: type on <%s>", ErrUnsupported, goquery.NodeName(el))
	}
	setValue(el, currentValue(el)+text)
	s.engine.focused = el

	if enter {
		if form := el.Closest("form"); form.Length() > 0 {
			s.submit(form)
		}
	}
	return nil
}

func (s *Selection) eachControl(verb string, fn func(*goquery.Selection)) error {
	var err error
	s.sel.EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if !isControl(c) {
			err = fmt.Errorf("%w: %s on <%s>", ErrUnsupported, verb, goquery.NodeName(c))
			return false
		}
		fn(c)
		return true
	})
	return err
}

func (s *Selection) setChecked(verb string, on bool) error {
	boxes := s.sel.Filter("input[type=checkbox], input[type=radio]")
	if boxes.Length() == 0 {
		return fmt.Errorf("%w: %s needs a checkbox or radio", ErrUnsupported, verb)
	}
	boxes.Each(func(_ int, c *goquery.Selection) { toggleChecked(c, on) })
	return nil
}

func (s *Selection) selectOption(args []any) error {
	want, err := stringArg(domain.VerbSelect, args, 0)
	if err != nil {
		return err
	}
	sel := s.sel.First()
	if !sel.Is("select") {
		return fmt.Errorf("%w: select on <%s>", ErrUnsupported, goquery.NodeName(sel))
	}
	opts := sel.Find("option")
	match := opts.FilterFunction(func(_ int, o *goquery.Selection) bool {
		return optionValue(o) == want || strings.TrimSpace(o.Text()) == want
	})
	if match.Length() == 0 {
		return fmt.Errorf("%w: no option %q", ErrNotFound, want)
	}
	opts.RemoveAttr("selected")
	match.First().SetAttr("selected", "selected")
	return nil
}

func (s *Selection) submit(form *goquery.Selection) {
	values := url.Values{}
	form.Find("input[name], textarea[name], select[name]").Each(func(_ int, c *goquery.Selection) {
		name, _ := c.Attr("name")
		if c.Is("input[type=checkbox], input[type=radio]") {
			if _, on := c.Attr("checked"); !on {
				return
			}
		}
		values.Add(name, currentValue(c))
	})
	id := form.AttrOr("id", form.AttrOr("name", ""))
	s.engine.submits = append(s.engine.submits, Submission{Form: id, Values: values})
}

// contains yields the deepest elements of the scope whose text includes the
// given text. An optional leading selector filters candidates.
func (s *Selection) contains(args []any) (*Selection, error) {
	if s.sel == nil {
		return nil, fmt.Errorf("%w: contains on a value subject", ErrUnsupported)
	}
	var filter, text string
	switch len(args) {
	case 1:
		text = fmt.Sprint(args[0])
	case 2:
		filter, text = fmt.Sprint(args[0]), fmt.Sprint(args[1])
	default:
		return nil, fmt.Errorf("%w: contains takes [selector] text", ErrUnsupported)
	}

	candidates := s.sel.Find("*").AddSelection(s.sel)
	if filter != "" {
		candidates = candidates.Filter(filter)
	}
	has := func(_ int, c *goquery.Selection) bool {
		return strings.Contains(c.Text(), text)
	}
	deepest := candidates.FilterFunction(has).FilterFunction(func(_ int, c *goquery.Selection) bool {
		inner := c.Find("*")
		if filter != "" {
			inner = inner.Filter(filter)
		}
		return inner.FilterFunction(has).Length() == 0
	})
	query := fmt.Sprintf("%s:contains(%q)", s.query, text)
	if deepest.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, query)
	}
	return s.derive(deepest.First(), query), nil
}

func (s *Selection) invoke(args []any) (*Selection, error) {
	name, err := stringArg(domain.VerbInvoke, args, 0)
	if err != nil {
		return nil, err
	}
	if s.sel == nil || s.Len() == 0 {
		return nil, fmt.Errorf("%w: invoke %s on %q", ErrNotFound, name, s.query)
	}
	el := s.sel.First()
	switch name {
	case "val":
		return s.yield(currentValue(el)), nil
	case "text":
		return s.yield(s.sel.Text()), nil
	case "html":
		html, err := el.Html()
		if err != nil {
			return nil, err
		}
		return s.yield(html), nil
	case "attr", "prop":
		key, err := stringArg(name, args, 1)
		if err != nil {
			return nil, err
		}
		if name == "prop" && key == "checked" {
			_, on := el.Attr("checked")
			return s.yield(on), nil
		}
		return s.yield(el.AttrOr(key, "")), nil
	}
	return nil, fmt.Errorf("%w: invoke %q", ErrUnsupported, name)
}

func isControl(el *goquery.Selection) bool {
	return el.Is("input, textarea, select")
}

func currentValue(el *goquery.Selection) string {
	switch {
	case el.Is("textarea"):
		return el.Text()
	case el.Is("select"):
		opt := el.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = el.Find("option").First()
		}
		return optionValue(opt)
	}
	return el.AttrOr("value", "")
}

func setValue(el *goquery.Selection, v string) {
	if el.Is("textarea") {
		el.SetText(v)
		return
	}
	el.SetAttr("value", v)
}

func optionValue(o *goquery.Selection) string {
	if v, ok := o.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(o.Text())
}

func toggleChecked(el *goquery.Selection, on bool) {
	if el.Is("input[type=radio]") && on {
		if name, ok := el.Attr("name"); ok {
			el.Closest("form, body").Find(fmt.Sprintf("input[type=radio][name=%q]", name)).RemoveAttr("checked")
		}
	}
	if on {
		el.SetAttr("checked", "checked")
		return
	}
	el.RemoveAttr("checked")
}

func stringArg(verb string, args []any, i int) (string, error) {
	if len(args) <= i {
		return "", fmt.Errorf("%w: %s: missing argument %d", ErrUnsupported, verb, i+1)
	}
	return fmt.Sprint(args[i]), nil
}

func intArg(verb string, args []any, i int) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("%w: %s: missing argument %d", ErrUnsupported, verb, i+1)
	}
	switch v := args[i].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	}
	n, err := strconv.Atoi(fmt.Sprint(args[i]))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v is not an index", ErrUnsupported, verb, args[i])
	}
	return n, nil
}
