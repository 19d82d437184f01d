package mcp

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/driftworks/shockchain/internal/chain"
	"github.com/driftworks/shockchain/internal/render"
	"github.com/driftworks/shockchain/internal/scenario"
)

// resolveScenario builds a scenario from a tool call: either loaded
// from the given path or converted from the inline definition. Exactly
// one of the two must be provided.
func resolveScenario(path string, inline *InlineScenario) (*scenario.Scenario, error) {
	switch {
	case path != "" && inline != nil:
		return nil, errors.New("provide either scenario_path or scenario, not both")
	case path != "":
		return scenario.Load(path)
	case inline != nil:
		s := &scenario.Scenario{
			Name:      inline.Name,
			States:    inline.States,
			Normal:    chain.Matrix(inline.Normal),
			Shock:     chain.Matrix(inline.Shock),
			ShockProb: inline.ShockProb,
			Initial:   inline.Initial,
			Steps:     inline.Steps,
			Seed:      inline.Seed,
		}
		if s.Name == "" {
			s.Name = "inline"
		}
		if s.Initial == "" && len(s.States) > 0 {
			s.Initial = s.States[0]
		}
		return s, nil
	default:
		return nil, errors.New("provide scenario_path or scenario")
	}
}

func (s *Server) handleSimulate(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (*sdk.CallToolResult, SimulateOutput, error) {
	sc, err := resolveScenario(args.ScenarioPath, args.Scenario)
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	// Apply per-call overrides before validation.
	if args.Steps != nil {
		sc.Steps = *args.Steps
	}
	if args.Seed != nil {
		sc.Seed = args.Seed
	}
	if args.Initial != "" {
		sc.Initial = args.Initial
	}

	if err := sc.Validate(); err != nil {
		return nil, SimulateOutput{}, fmt.Errorf("invalid scenario: %w", err)
	}

	initial, err := sc.InitialIndex()
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	var opts []chain.Option
	if sc.Seed != nil {
		opts = append(opts, chain.WithSeed(*sc.Seed))
	}

	traj, err := chain.Simulate(initial, sc.Normal, sc.ShockProb, sc.Shock, sc.Steps, opts...)
	if err != nil {
		return nil, SimulateOutput{}, fmt.Errorf("simulation failed: %w", err)
	}

	s.logger.Debug("chain_simulate", "scenario", sc.Name, "steps", sc.Steps, "seeded", sc.Seed != nil)

	result := render.New(sc, traj)
	return nil, SimulateOutput{
		Result:  result,
		Message: fmt.Sprintf("Simulated %d steps of %s starting at %s", sc.Steps, sc.Name, sc.Label(initial)),
	}, nil
}

func (s *Server) handleValidate(ctx context.Context, req *sdk.CallToolRequest, args ValidateInput) (*sdk.CallToolResult, ValidateOutput, error) {
	sc, err := resolveScenario(args.ScenarioPath, args.Scenario)
	if err != nil {
		return nil, ValidateOutput{}, err
	}

	errs := sc.Check()
	if len(errs) == 0 {
		return nil, ValidateOutput{
			Valid:   true,
			Message: fmt.Sprintf("Scenario %s is valid (%d states)", sc.Name, len(sc.States)),
		}, nil
	}

	problems := make([]string, len(errs))
	for i, e := range errs {
		problems[i] = e.Error()
	}

	return nil, ValidateOutput{
		Valid:    false,
		Problems: problems,
		Message:  fmt.Sprintf("Scenario %s has %d problem(s)", sc.Name, len(problems)),
	}, nil
}

func (s *Server) handleExample(ctx context.Context, req *sdk.CallToolRequest, args ExampleInput) (*sdk.CallToolResult, ExampleOutput, error) {
	return nil, ExampleOutput{
		YAML:    string(scenario.ExampleYAML()),
		Message: "Embedded four-state economic example scenario",
	}, nil
}
