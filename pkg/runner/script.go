package runner

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScript is returned for scripts that cannot be decoded.
var ErrInvalidScript = errors.New("invalid script")

// Script is an ordered list of steps.
type Script struct {
	Name string `mapstructure:"name" json:"name"`
	// ContinueOnError runs the remaining steps after a failure.
	ContinueOnError bool `mapstructure:"continue_on_error" json:"continue_on_error,omitempty"`
	// Timeout bounds every step that sets none of its own.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout,omitempty"`
	Steps   []Step        `mapstructure:"steps" json:"steps"`
}

// Step calls one member of one node.
type Step struct {
	// Node is the dotted child path from the root. Empty means the root.
	Node string `mapstructure:"node" json:"node,omitempty"`
	Call string `mapstructure:"call" json:"call"`
	Args []any  `mapstructure:"args" json:"args,omitempty"`
	// Then chains verbs on the subject returned by Call.
	Then []Chained `mapstructure:"then" json:"then,omitempty"`
	// ExpectError inverts the outcome: the step passes only if it fails.
	ExpectError bool          `mapstructure:"expect_error" json:"expect_error,omitempty"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout,omitempty"`
}

// Chained is a verb applied to a subject.
type Chained struct {
	Call string `mapstructure:"call" json:"call"`
	Args []any  `mapstructure:"args" json:"args,omitempty"`
}

// Label is the short form used in reports: "items.should".
func (s Step) Label() string {
	if s.Node == "" {
		return s.Call
	}
	return s.Node + "." + s.Call
}

// Parse decodes a YAML script.
func Parse(src []byte) (*Script, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
	}

	var s Script
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      &s,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks that every step names a member to call.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScript)
	}
	for i, st := range s.Steps {
		if st.Call == "" {
			return fmt.Errorf("%w: step %d: call is required", ErrInvalidScript, i+1)
		}
		for j, c := range st.Then {
			if c.Call == "" {
				return fmt.Errorf("%w: step %d: then %d: call is required", ErrInvalidScript, i+1, j+1)
			}
		}
	}
	return nil
}
