package mcp

import (
	"github.com/driftworks/shockchain/internal/render"
)

// InlineScenario is a scenario supplied directly in a tool call instead
// of a file path.
type InlineScenario struct {
	Name      string      `json:"name,omitempty" jsonschema:"Scenario name for output"`
	States    []string    `json:"states" jsonschema:"State labels in index order"`
	Normal    [][]float64 `json:"normal" jsonschema:"Normal transition matrix (rows sum to 1)"`
	Shock     [][]float64 `json:"shock" jsonschema:"Shock transition matrix (rows sum to 1)"`
	ShockProb float64     `json:"shock_prob" jsonschema:"Per-step shock probability in [0 1]"`
	Initial   string      `json:"initial,omitempty" jsonschema:"Initial state as label or zero-based index"`
	Steps     int         `json:"steps,omitempty" jsonschema:"Number of steps to simulate"`
	Seed      *uint64     `json:"seed,omitempty" jsonschema:"Seed for a reproducible run"`
}

// SimulateInput defines the input for the chain_simulate tool.
type SimulateInput struct {
	ScenarioPath string          `json:"scenario_path,omitempty" jsonschema:"Path to a scenario YAML file"`
	Scenario     *InlineScenario `json:"scenario,omitempty" jsonschema:"Inline scenario (alternative to scenario_path)"`
	Steps        *int            `json:"steps,omitempty" jsonschema:"Override the scenario step count"`
	Seed         *uint64         `json:"seed,omitempty" jsonschema:"Override the scenario seed"`
	Initial      string          `json:"initial,omitempty" jsonschema:"Override the initial state (label or index)"`
}

// SimulateOutput defines the output for the chain_simulate tool.
type SimulateOutput struct {
	Result  render.Result `json:"result" jsonschema:"Trajectory with labels and visit counts"`
	Message string        `json:"message" jsonschema:"Human-readable result summary"`
}

// ValidateInput defines the input for the chain_validate tool.
type ValidateInput struct {
	ScenarioPath string          `json:"scenario_path,omitempty" jsonschema:"Path to a scenario YAML file"`
	Scenario     *InlineScenario `json:"scenario,omitempty" jsonschema:"Inline scenario (alternative to scenario_path)"`
}

// ValidateOutput defines the output for the chain_validate tool.
type ValidateOutput struct {
	Valid    bool     `json:"valid" jsonschema:"Whether the scenario passed every check"`
	Problems []string `json:"problems,omitempty" jsonschema:"Every violated invariant"`
	Message  string   `json:"message" jsonschema:"Human-readable validation summary"`
}

// ExampleInput defines the input for the chain_example tool.
type ExampleInput struct{}

// ExampleOutput defines the output for the chain_example tool.
type ExampleOutput struct {
	YAML    string `json:"yaml" jsonschema:"The example scenario as YAML"`
	Message string `json:"message" jsonschema:"Human-readable summary"`
}
