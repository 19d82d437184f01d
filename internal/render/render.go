// Package render formats simulation results for terminal and JSON
// output. It maps state indices to their scenario labels and tallies
// visits; it performs no analysis beyond counting the returned path.
package render

import (
	"fmt"
	"io"

	"github.com/driftworks/shockchain/internal/chain"
	"github.com/driftworks/shockchain/internal/scenario"
)

// StateVisits counts how often one state appears in a trajectory.
type StateVisits struct {
	State int    `json:"state"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Result is the JSON-ready shape of one simulation run.
type Result struct {
	Scenario   string        `json:"scenario"`
	States     []string      `json:"states"`
	ShockProb  float64       `json:"shock_prob"`
	Steps      int           `json:"steps"`
	Seed       *uint64       `json:"seed,omitempty"`
	Trajectory []int         `json:"trajectory"`
	Labels     []string      `json:"labels"`
	Visits     []StateVisits `json:"visits"`
}

// New builds a Result from a scenario and the trajectory it produced.
func New(s *scenario.Scenario, traj chain.Trajectory) Result {
	labels := make([]string, len(traj))
	counts := make([]int, len(s.States))
	for i, state := range traj {
		labels[i] = s.Label(state)
		if state >= 0 && state < len(counts) {
			counts[state]++
		}
	}

	visits := make([]StateVisits, len(s.States))
	for i, label := range s.States {
		visits[i] = StateVisits{State: i, Label: label, Count: counts[i]}
	}

	return Result{
		Scenario:   s.Name,
		States:     append([]string(nil), s.States...),
		ShockProb:  s.ShockProb,
		Steps:      len(traj) - 1,
		Seed:       s.Seed,
		Trajectory: []int(traj),
		Labels:     labels,
		Visits:     visits,
	}
}

// Text writes the step-by-step trajectory and a visit summary.
func Text(w io.Writer, r Result) error {
	if _, err := fmt.Fprintf(w, "Scenario %s (%d steps, shock probability %g):\n", r.Scenario, r.Steps, r.ShockProb); err != nil {
		return err
	}

	for step, label := range r.Labels {
		if _, err := fmt.Fprintf(w, "Step %2d: %s\n", step, label); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "\nVisits:"); err != nil {
		return err
	}
	for _, v := range r.Visits {
		if _, err := fmt.Fprintf(w, "  %-12s %d\n", v.Label, v.Count); err != nil {
			return err
		}
	}
	return nil
}
