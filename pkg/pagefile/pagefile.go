package pagefile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/element"
	"github.com/aretw0/arbor/pkg/locator"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/widgets"
)

// Keys with a meaning of their own in page files.
const (
	KeyKind = "kind"
	KeyData = "data"
)

// TagRoot marks a root-anchored locator.
const TagRoot = "!root"

// ErrInvalid is returned for YAML that does not describe a tree.
var ErrInvalid = errors.New("invalid page file")

// Decoder turns YAML documents into definitions.
type Decoder struct {
	registry *registry.Registry
}

// Option configures the Decoder.
type Option func(*Decoder)

// WithRegistry sets the widget kinds available to kind keys.
func WithRegistry(r *registry.Registry) Option {
	return func(d *Decoder) {
		d.registry = r
	}
}

// NewDecoder creates a decoder knowing the standard widget kinds.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{registry: widgets.NewRegistry()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Parse decodes src into a definition.
func (d *Decoder) Parse(src []byte) (element.Def, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalid)
	}
	return d.decodeNode(doc.Content[0])
}

// Build decodes src and builds the tree.
func (d *Decoder) Build(src []byte) (*element.Node, error) {
	def, err := d.Parse(src)
	if err != nil {
		return nil, err
	}
	return element.Build(def)
}

// Load reads and builds the page file at path.
func (d *Decoder) Load(path string) (*element.Node, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page file: %w", err)
	}
	n, err := d.Build(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// Load reads the page file at path with the standard widget kinds.
func Load(path string) (*element.Node, error) {
	return NewDecoder().Load(path)
}

// Parse decodes src with the standard widget kinds.
func Parse(src []byte) (element.Def, error) {
	return NewDecoder().Parse(src)
}

func (d *Decoder) decodeNode(n *yaml.Node) (element.Def, error) {
	switch n.Kind {
	case yaml.ScalarNode, yaml.SequenceNode:
		loc, err := decodeLocator(n)
		if err != nil {
			return nil, err
		}
		return element.Def{domain.KeyLocator: loc}, nil
	case yaml.AliasNode:
		return d.decodeNode(n.Alias)
	case yaml.MappingNode:
	default:
		return nil, invalid(n, "expected a mapping")
	}

	def := make(element.Def)
	var kind string
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, val := n.Content[i], n.Content[i+1]
		key := keyNode.Value
		if _, dup := def[key]; dup {
			return nil, invalid(keyNode, "duplicate key %q", key)
		}

		switch key {
		case domain.KeyLocator:
			loc, err := decodeLocator(val)
			if err != nil {
				return nil, err
			}
			def[key] = loc
		case domain.KeyName:
			if val.Kind != yaml.ScalarNode {
				return nil, invalid(val, "name must be a scalar")
			}
			def[key] = val.Value
		case KeyKind:
			if val.Kind != yaml.ScalarNode {
				return nil, invalid(val, "kind must be a scalar")
			}
			kind = val.Value
		case KeyData:
			if err := decodeData(val, def); err != nil {
				return nil, err
			}
		default:
			child, err := d.decodeNode(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			def[key] = child
		}
	}

	if kind == "" {
		return def, nil
	}
	loc := def[domain.KeyLocator]
	delete(def, domain.KeyLocator)
	out, err := d.registry.Define(kind, loc, def)
	if err != nil {
		return nil, invalid(n, "%v", err)
	}
	return out, nil
}

func decodeLocator(n *yaml.Node) (locator.Locator, error) {
	if n.Kind == yaml.AliasNode {
		return decodeLocator(n.Alias)
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == TagRoot {
			return locator.Root(n.Value), nil
		}
		return locator.Text(n.Value), nil
	case yaml.SequenceNode:
		if n.Tag != TagRoot {
			return locator.Locator{}, invalid(n, "only %s locators may be sequences", TagRoot)
		}
		parts := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return locator.Locator{}, invalid(item, "locator parts must be scalars")
			}
			parts = append(parts, item.Value)
		}
		return locator.Root(parts...), nil
	}
	return locator.Locator{}, invalid(n, "expected a locator")
}

func decodeData(n *yaml.Node, def element.Def) error {
	if n.Kind != yaml.MappingNode {
		return invalid(n, "data must be a mapping")
	}
	var values map[string]any
	if err := n.Decode(&values); err != nil {
		return invalid(n, "%v", err)
	}
	for k, v := range values {
		if _, taken := def[k]; taken {
			return invalid(n, "data key %q clashes with a member", k)
		}
		// Nested maps would be read as children.
		if m, ok := v.(map[string]any); ok {
			v = Values(m)
		}
		def[k] = v
	}
	return nil
}

// Values is a mapping held as plain data.
type Values map[string]any

func invalid(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalid, n.Line, fmt.Sprintf(format, args...))
}
