package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario file and report every problem",
		Long: `Validate a scenario file and report every problem.

Checks that both matrices are square and of equal dimension, that every
row sums to 1 within tolerance with no negative entries, that the shock
probability lies in [0, 1], and that the initial state resolves to a
valid index.

Examples:
  shockchain validate crisis.yaml
  shockchain validate crisis.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			sc, err := loadScenarioArg(args)
			if err != nil {
				return err
			}

			errs := sc.Check()
			problems := make([]string, len(errs))
			for i, e := range errs {
				problems[i] = e.Error()
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"scenario": sc.Name,
					"valid":    len(problems) == 0,
					"problems": problems,
				})
			}

			if len(problems) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Scenario %s is valid (%d states)\n", sc.Name, len(sc.States))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Scenario %s has %d problem(s):\n", sc.Name, len(problems))
			for _, p := range problems {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", p)
			}
			return fmt.Errorf("scenario %s failed validation", sc.Name)
		},
	}
}
