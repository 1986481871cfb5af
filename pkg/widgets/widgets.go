package widgets

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/registry"
)

// Kind names understood by Register.
const (
	KindElement = "element"
	KindInput   = "input"
	KindSelect  = "select"
	KindForm    = "form"
	KindPage    = "page"
)

// KeyURL is the data member Page uses as the default visit target.
const KeyURL = "url"

func forward(verb string) element.Method {
	return func(ctx context.Context, self *element.Node, args ...any) (any, error) {
		s, err := self.Delegate(ctx, verb, args...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func compose(loc any, members element.Def, methods map[string]element.Method) element.Def {
	def := make(element.Def, len(methods)+len(members)+1)
	for name, m := range methods {
		def[name] = m
	}
	for k, v := range members {
		def[k] = v
	}
	if loc != nil {
		def[domain.KeyLocator] = loc
	}
	return def
}

func elementMethods() map[string]element.Method {
	return map[string]element.Method{
		domain.VerbClick:          forward(domain.VerbClick),
		domain.VerbDblClick:       forward(domain.VerbDblClick),
		domain.VerbRightClick:     forward(domain.VerbRightClick),
		domain.VerbScrollIntoView: forward(domain.VerbScrollIntoView),
		domain.VerbScrollTo:       forward(domain.VerbScrollTo),
	}
}

// Element is a clickable, scrollable element.
func Element(loc any, members element.Def) element.Def {
	return compose(loc, members, elementMethods())
}

// Input is a text control.
func Input(loc any, members element.Def) element.Def {
	m := elementMethods()
	for _, verb := range []string{domain.VerbType, domain.VerbClear, domain.VerbFocus, domain.VerbBlur} {
		m[verb] = forward(verb)
	}
	return compose(loc, members, m)
}

// Select is a drop-down. setValue picks an option by value or text and
// getValue yields the selected value.
func Select(loc any, members element.Def) element.Def {
	m := elementMethods()
	m["setValue"] = forward(domain.VerbSelect)
	m["getValue"] = func(ctx context.Context, self *element.Node, _ ...any) (any, error) {
		s, err := self.Delegate(ctx, domain.VerbInvoke, "val")
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return compose(loc, members, m)
}

// Form is a submittable form.
func Form(loc any, members element.Def) element.Def {
	m := elementMethods()
	m[domain.VerbSubmit] = forward(domain.VerbSubmit)
	return compose(loc, members, m)
}

// Page is the document itself. It has no locator, so its verbs run on the
// ambient engine scope and its children are queried from the document.
// url, when set, is visited by a visit call without arguments.
func Page(url string, members element.Def) element.Def {
	m := map[string]element.Method{
		domain.VerbVisit: visit,
		"getTitle":       forward(domain.VerbTitle),
		"getUrl":         forward(domain.VerbURL),
		"getHash":        forward(domain.VerbHash),
	}
	def := compose(nil, members, m)
	if url != "" {
		def[KeyURL] = url
	}
	return def
}

func visit(ctx context.Context, self *element.Node, args ...any) (any, error) {
	if len(args) == 0 {
		if d, ok := self.Get(ctx, KeyURL).(element.Data); ok {
			args = []any{d.Value}
		}
	}
	s, err := self.Delegate(ctx, domain.VerbVisit, args...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Register adds every widget kind to r.
func Register(r *registry.Registry) {
	r.Register(KindElement, Element)
	r.Register(KindInput, Input)
	r.Register(KindSelect, Select)
	r.Register(KindForm, Form)
	r.Register(KindPage, func(loc any, members element.Def) element.Def {
		var url string
		if s, ok := members[KeyURL].(string); ok {
			url = s
		}
		return Page(url, members)
	})
}

// NewRegistry returns a registry holding every widget kind.
func NewRegistry() *registry.Registry {
	r := registry.NewRegistry()
	Register(r)
	return r
}
