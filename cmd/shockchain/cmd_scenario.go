package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftworks/shockchain/internal/scenario"
)

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Print the example scenario as a starting template",
		Long: `Print the example scenario as a starting template.

The example is the four-state economic chain (Crisis, Recession,
Stable, Prosperity) with a 10% per-step shock probability.

Examples:
  shockchain scenario                  # print to stdout
  shockchain scenario --out my.yaml    # write a template file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			if out == "" {
				_, err := cmd.OutOrStdout().Write(scenario.ExampleYAML())
				return err
			}

			if _, err := os.Stat(out); err == nil {
				return fmt.Errorf("refusing to overwrite existing file %s", out)
			}
			if err := os.WriteFile(out, scenario.ExampleYAML(), 0644); err != nil {
				return fmt.Errorf("writing scenario template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote example scenario to %s\n", out)
			return nil
		},
	}

	cmd.Flags().String("out", "", "Write the template to a file instead of stdout")

	return cmd
}
