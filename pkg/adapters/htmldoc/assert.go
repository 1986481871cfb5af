package htmldoc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// chainer checks one assertion against a selection.
type chainer func(s *Selection, args []any) (ok bool, msg string, err error)

var chainers = map[string]chainer{
	"exist": func(s *Selection, _ []any) (bool, string, error) {
		return s.Len() > 0, "to exist", nil
	},
	"have.length": func(s *Selection, args []any) (bool, string, error) {
		n, err := intArg("have.length", args, 0)
		if err != nil {
			return false, "", err
		}
		return s.Len() == n, fmt.Sprintf("to have length %d, got %d", n, s.Len()), nil
	},
	"have.text": func(s *Selection, args []any) (bool, string, error) {
		want, err := stringArg("have.text", args, 0)
		if err != nil {
			return false, "", err
		}
		got := strings.TrimSpace(s.Text())
		return got == want, fmt.Sprintf("to have text %q, got %q", want, got), nil
	},
	"contain.text": func(s *Selection, args []any) (bool, string, error) {
		want, err := stringArg("contain.text", args, 0)
		if err != nil {
			return false, "", err
		}
		return strings.Contains(s.Text(), want), fmt.Sprintf("to contain text %q", want), nil
	},
	"have.class": func(s *Selection, args []any) (bool, string, error) {
		class, err := stringArg("have.class", args, 0)
		if err != nil {
			return false, "", err
		}
		return s.Len() > 0 && s.sel.HasClass(class), fmt.Sprintf("to have class %q", class), nil
	},
	"have.id": func(s *Selection, args []any) (bool, string, error) {
		id, err := stringArg("have.id", args, 0)
		if err != nil {
			return false, "", err
		}
		return s.Len() > 0 && s.sel.First().AttrOr("id", "") == id, fmt.Sprintf("to have id %q", id), nil
	},
	"have.attr": func(s *Selection, args []any) (bool, string, error) {
		name, err := stringArg("have.attr", args, 0)
		if err != nil {
			return false, "", err
		}
		if s.Len() == 0 {
			return false, fmt.Sprintf("to have attribute %q", name), nil
		}
		got, present := s.sel.First().Attr(name)
		if len(args) < 2 {
			return present, fmt.Sprintf("to have attribute %q", name), nil
		}
		want := fmt.Sprint(args[1])
		return present && got == want, fmt.Sprintf("to have attribute %q with value %q, got %q", name, want, got), nil
	},
	"have.value": func(s *Selection, args []any) (bool, string, error) {
		want, err := stringArg("have.value", args, 0)
		if err != nil {
			return false, "", err
		}
		if s.Len() == 0 {
			return false, fmt.Sprintf("to have value %q", want), nil
		}
		got := currentValue(s.sel.First())
		return got == want, fmt.Sprintf("to have value %q, got %q", want, got), nil
	},
	"be.checked": func(s *Selection, _ []any) (bool, string, error) {
		if s.Len() == 0 {
			return false, "to be checked", nil
		}
		all := true
		s.sel.Each(func(_ int, c *goquery.Selection) {
			if _, on := c.Attr("checked"); !on {
				all = false
			}
		})
		return all, "to be checked", nil
	},
	"eq": func(s *Selection, args []any) (bool, string, error) {
		want, err := stringArg("eq", args, 0)
		if err != nil {
			return false, "", err
		}
		got := subjectString(s)
		return got == want, fmt.Sprintf("to equal %q, got %q", want, got), nil
	},
	"include": func(s *Selection, args []any) (bool, string, error) {
		want, err := stringArg("include", args, 0)
		if err != nil {
			return false, "", err
		}
		return strings.Contains(subjectString(s), want), fmt.Sprintf("to include %q", want), nil
	},
	"be.true": func(s *Selection, _ []any) (bool, string, error) {
		return s.value == true, "to be true", nil
	},
	"be.false": func(s *Selection, _ []any) (bool, string, error) {
		return s.value == false, "to be false", nil
	},
}

// Chainers lists the supported assertion names, without the "not." forms.
func Chainers() []string {
	names := make([]string, 0, len(chainers))
	for name := range chainers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func subjectString(s *Selection) string {
	if s.hasValue {
		return fmt.Sprint(s.value)
	}
	return strings.TrimSpace(s.Text())
}

// should runs the chainer named by args[0]. A "not." prefix negates it.
func (s *Selection) should(args []any) error {
	name, err := stringArg("should", args, 0)
	if err != nil {
		return err
	}
	negate := false
	if rest, ok := strings.CutPrefix(name, "not."); ok {
		name, negate = rest, true
	}
	check, ok := chainers[name]
	if !ok {
		return fmt.Errorf("%w: chainer %q", ErrUnsupported, args[0])
	}
	pass, msg, err := check(s, args[1:])
	if err != nil {
		return err
	}
	if pass == negate {
		if negate {
			msg = "not " + msg
		}
		return fmt.Errorf("%w: expected %s %s", ErrAssertion, s, msg)
	}
	return nil
}
