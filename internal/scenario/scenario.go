// Package scenario loads and validates simulation scenarios from YAML.
// A scenario bundles everything one run needs: state labels, the normal
// and shock transition matrices, the shock probability, the starting
// state, the step count, and an optional seed.
package scenario

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/driftworks/shockchain/internal/chain"
	"gopkg.in/yaml.v3"
)

//go:embed example.yaml
var exampleYAML []byte

// Scenario is a complete, runnable simulation configuration.
type Scenario struct {
	// Name identifies the scenario in output and logs.
	Name string `yaml:"name"`

	// States are the human-readable labels for state indices 0..N-1.
	States []string `yaml:"states"`

	// Normal is the ordinary transition matrix.
	Normal chain.Matrix `yaml:"normal"`

	// Shock is the transition matrix used when a shock fires.
	Shock chain.Matrix `yaml:"shock"`

	// ShockProb is the per-step probability of a shock, in [0, 1].
	ShockProb float64 `yaml:"shock_prob"`

	// Initial is the starting state, as a label or a zero-based index.
	Initial string `yaml:"initial"`

	// Steps is the number of transitions to simulate.
	Steps int `yaml:"steps"`

	// Seed, when set, makes the run reproducible.
	Seed *uint64 `yaml:"seed,omitempty"`
}

// Load reads and parses a scenario file. The result is parsed but not
// yet validated; call Validate before running it.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing scenario file %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes scenario YAML. Unknown fields are rejected so typos in
// analyst-written files surface as errors instead of silent defaults.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Example returns the embedded four-state economic reference scenario.
func Example() (*Scenario, error) {
	return Parse(exampleYAML)
}

// ExampleYAML returns the raw embedded scenario file, suitable as a
// starting template for new scenarios.
func ExampleYAML() []byte {
	return append([]byte(nil), exampleYAML...)
}

// Check returns every problem with the scenario: structural issues
// first, then the chain-level invariant violations from chain.Check.
// An empty result means the scenario is runnable.
func (s *Scenario) Check() []error {
	var errs []error

	if len(s.States) == 0 {
		errs = append(errs, errors.New("scenario has no states"))
	}
	if n := s.Normal.Dim(); len(s.States) > 0 && n != len(s.States) {
		errs = append(errs, fmt.Errorf("normal matrix has %d rows for %d states", n, len(s.States)))
	}
	if s.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps is negative: %d", s.Steps))
	}
	if _, err := s.InitialIndex(); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, chain.Check(s.Normal, s.ShockProb, s.Shock)...)
	return errs
}

// Validate returns the first problem found by Check, or nil.
func (s *Scenario) Validate() error {
	if errs := s.Check(); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// InitialIndex resolves the Initial field to a state index. Labels are
// matched first; anything else must parse as a zero-based index within
// range.
func (s *Scenario) InitialIndex() (int, error) {
	if s.Initial == "" {
		return 0, errors.New("scenario has no initial state")
	}

	if idx, ok := s.StateIndex(s.Initial); ok {
		return idx, nil
	}

	idx, err := strconv.Atoi(s.Initial)
	if err != nil {
		return 0, fmt.Errorf("initial state %q is neither a known label nor an index", s.Initial)
	}
	if idx < 0 || idx >= len(s.States) {
		return 0, fmt.Errorf("initial state index %d outside [0, %d)", idx, len(s.States))
	}
	return idx, nil
}

// StateIndex returns the index for a state label.
func (s *Scenario) StateIndex(label string) (int, bool) {
	for i, name := range s.States {
		if name == label {
			return i, true
		}
	}
	return 0, false
}

// Label returns the label for a state index, or the index itself as a
// string when no label is defined for it.
func (s *Scenario) Label(index int) string {
	if index >= 0 && index < len(s.States) {
		return s.States[index]
	}
	return strconv.Itoa(index)
}
