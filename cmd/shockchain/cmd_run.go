package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftworks/shockchain/internal/chain"
	"github.com/driftworks/shockchain/internal/logging"
	"github.com/driftworks/shockchain/internal/render"
	"github.com/driftworks/shockchain/internal/scenario"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "Run one simulation of a scenario",
		Long: `Run one simulation of a scenario.

Without a file argument the embedded economic example scenario is run.
Flags override the scenario's step count, seed, and initial state.

Examples:
  shockchain run                         # example scenario
  shockchain run crisis.yaml             # analyst scenario
  shockchain run --steps 200 --seed 7    # reproducible long run
  shockchain run --trace draws.jsonl     # record per-step draws`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			level, _ := cmd.Flags().GetString("log-level")
			logger := logging.NewLogger(level, cmd.ErrOrStderr())

			sc, err := loadScenarioArg(args)
			if err != nil {
				return err
			}

			// Flag overrides, applied before validation.
			if cmd.Flags().Changed("steps") {
				sc.Steps, _ = cmd.Flags().GetInt("steps")
			}
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetUint64("seed")
				sc.Seed = &seed
			}
			if cmd.Flags().Changed("initial") {
				sc.Initial, _ = cmd.Flags().GetString("initial")
			}

			if err := sc.Validate(); err != nil {
				return fmt.Errorf("invalid scenario: %w", err)
			}

			initial, err := sc.InitialIndex()
			if err != nil {
				return err
			}

			opts := []chain.Option{}
			if sc.Seed != nil {
				opts = append(opts, chain.WithSeed(*sc.Seed))
			}

			tracePath, _ := cmd.Flags().GetString("trace")
			var tracer *logging.StepTracer
			if tracePath != "" {
				tracer, err = logging.NewStepTracer(tracePath)
				if err != nil {
					return err
				}
				defer tracer.Close()
				opts = append(opts, chain.WithObserver(tracer.Observe))
			}

			logger.Debug("starting run",
				"scenario", sc.Name,
				"steps", sc.Steps,
				"initial", sc.Label(initial),
				"seeded", sc.Seed != nil,
			)

			traj, err := chain.Simulate(initial, sc.Normal, sc.ShockProb, sc.Shock, sc.Steps, opts...)
			if err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			result := render.New(sc, traj)
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return render.Text(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().Int("steps", 0, "Override the scenario step count")
	cmd.Flags().Uint64("seed", 0, "Override the scenario seed")
	cmd.Flags().String("initial", "", "Override the initial state (label or index)")
	cmd.Flags().String("trace", "", "Write per-step draw traces to a JSONL file")

	return cmd
}

// loadScenarioArg loads the scenario named by args, or the embedded
// example when no argument was given.
func loadScenarioArg(args []string) (*scenario.Scenario, error) {
	if len(args) == 0 {
		return scenario.Example()
	}

	if _, err := os.Stat(args[0]); err != nil {
		return nil, fmt.Errorf("scenario file %s: %w", args[0], err)
	}
	return scenario.Load(args[0])
}
