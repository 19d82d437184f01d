package chain

import (
	"errors"
	"math"
	"testing"
)

// scriptSource replays a fixed sequence of uniform values through the
// rand.Source interface. fromFloat encodes a target Float64 output:
// rand/v2 derives Float64 from the low 53 bits, (Uint64()<<11>>11) / 2^53.
type scriptSource struct {
	vals []uint64
	i    int
}

func (s *scriptSource) Uint64() uint64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func fromFloat(f float64) uint64 {
	return uint64(f * (1 << 53))
}

// economic reference matrices: Crisis, Recession, Stable, Prosperity.
func normalMatrix() Matrix {
	return Matrix{
		{0.60, 0.25, 0.10, 0.05},
		{0.10, 0.50, 0.30, 0.10},
		{0.05, 0.10, 0.70, 0.15},
		{0.02, 0.08, 0.20, 0.70},
	}
}

func shockMatrix() Matrix {
	return Matrix{
		{0.50, 0.20, 0.20, 0.10},
		{0.05, 0.40, 0.25, 0.30},
		{0.05, 0.15, 0.60, 0.20},
		{0.10, 0.05, 0.25, 0.60},
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		normal    Matrix
		shockProb float64
		shock     Matrix
		wantErr   error // nil means valid
	}{
		{
			name:      "valid reference matrices",
			normal:    normalMatrix(),
			shockProb: 0.10,
			shock:     shockMatrix(),
			wantErr:   nil,
		},
		{
			name:      "empty normal matrix",
			normal:    Matrix{},
			shockProb: 0.1,
			shock:     shockMatrix(),
			wantErr:   ErrShapeMismatch,
		},
		{
			name:      "ragged normal row",
			normal:    Matrix{{0.5, 0.5}, {1.0}},
			shockProb: 0.1,
			shock:     Matrix{{0.5, 0.5}, {0.5, 0.5}},
			wantErr:   ErrShapeMismatch,
		},
		{
			name:      "shock dimension disagrees",
			normal:    Matrix{{0.5, 0.5}, {0.5, 0.5}},
			shockProb: 0.1,
			shock:     Matrix{{1.0}},
			wantErr:   ErrShapeMismatch,
		},
		{
			name:      "row sums to 0.9",
			normal:    Matrix{{0.4, 0.5}, {0.5, 0.5}},
			shockProb: 0.1,
			shock:     Matrix{{0.5, 0.5}, {0.5, 0.5}},
			wantErr:   ErrInvalidDistribution,
		},
		{
			name:      "row sum within tolerance",
			normal:    Matrix{{0.5, 0.5 + 1e-10}, {0.5, 0.5}},
			shockProb: 0.1,
			shock:     Matrix{{0.5, 0.5}, {0.5, 0.5}},
			wantErr:   nil,
		},
		{
			name:      "negative entry",
			normal:    Matrix{{1.5, -0.5}, {0.5, 0.5}},
			shockProb: 0.1,
			shock:     Matrix{{0.5, 0.5}, {0.5, 0.5}},
			wantErr:   ErrInvalidDistribution,
		},
		{
			name:      "shock probability below zero",
			normal:    Matrix{{0.5, 0.5}, {0.5, 0.5}},
			shockProb: -0.01,
			shock:     Matrix{{0.5, 0.5}, {0.5, 0.5}},
			wantErr:   ErrInvalidProbability,
		},
		{
			name:      "shock probability above one",
			normal:    Matrix{{0.5, 0.5}, {0.5, 0.5}},
			shockProb: 1.5,
			shock:     Matrix{{0.5, 0.5}, {0.5, 0.5}},
			wantErr:   ErrInvalidProbability,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Check(tt.normal, tt.shockProb, tt.shock)

			if tt.wantErr == nil {
				if len(errs) != 0 {
					t.Fatalf("Check() = %v, want no errors", errs)
				}
				return
			}

			if len(errs) == 0 {
				t.Fatalf("Check() = no errors, want %v", tt.wantErr)
			}
			found := false
			for _, err := range errs {
				if errors.Is(err, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("Check() = %v, want an error matching %v", errs, tt.wantErr)
			}
		})
	}
}

func TestCheckReportsAllViolations(t *testing.T) {
	// Bad row sum in the normal matrix, bad probability, and a shock
	// dimension mismatch should all be reported in one pass.
	normal := Matrix{{0.4, 0.5}, {0.5, 0.5}}
	shock := Matrix{{1.0}}

	errs := Check(normal, 2.0, shock)
	if len(errs) < 3 {
		t.Fatalf("Check() reported %d violations, want at least 3: %v", len(errs), errs)
	}
}

func TestDistributionErrorDetails(t *testing.T) {
	normal := Matrix{
		{1.0, 0.0},
		{0.45, 0.45},
	}
	shock := Matrix{{1.0, 0.0}, {0.5, 0.5}}

	errs := Check(normal, 0.1, shock)
	if len(errs) != 1 {
		t.Fatalf("Check() = %v, want exactly one error", errs)
	}

	var de *DistributionError
	if !errors.As(errs[0], &de) {
		t.Fatalf("Check() error %v is not a *DistributionError", errs[0])
	}
	if de.Matrix != "normal" {
		t.Errorf("DistributionError.Matrix = %q, want %q", de.Matrix, "normal")
	}
	if de.Row != 1 {
		t.Errorf("DistributionError.Row = %d, want 1", de.Row)
	}
	if math.Abs(de.Sum-0.9) > 1e-12 {
		t.Errorf("DistributionError.Sum = %g, want 0.9", de.Sum)
	}
	if !errors.Is(errs[0], ErrInvalidDistribution) {
		t.Errorf("DistributionError does not match ErrInvalidDistribution")
	}
}

func TestRunTrajectoryShape(t *testing.T) {
	traj, err := Simulate(2, normalMatrix(), 0.10, shockMatrix(), 50, WithSeed(42))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	if len(traj) != 51 {
		t.Fatalf("len(trajectory) = %d, want 51", len(traj))
	}
	if traj[0] != 2 {
		t.Errorf("trajectory[0] = %d, want 2", traj[0])
	}
	for i, s := range traj {
		if s < 0 || s >= 4 {
			t.Errorf("trajectory[%d] = %d, outside [0, 4)", i, s)
		}
	}
}

func TestRunZeroSteps(t *testing.T) {
	traj, err := Simulate(3, normalMatrix(), 0.10, shockMatrix(), 0)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(traj) != 1 || traj[0] != 3 {
		t.Errorf("trajectory = %v, want [3]", traj)
	}
}

func TestRunRejectsBadInputs(t *testing.T) {
	c, err := New(normalMatrix(), 0.10, shockMatrix())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name    string
		initial int
		steps   int
	}{
		{name: "initial negative", initial: -1, steps: 10},
		{name: "initial at dimension", initial: 4, steps: 10},
		{name: "negative steps", initial: 0, steps: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			traj, err := c.Run(tt.initial, tt.steps)
			if !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("Run(%d, %d) error = %v, want ErrOutOfRange", tt.initial, tt.steps, err)
			}
			if traj != nil {
				t.Errorf("Run returned partial trajectory %v on error", traj)
			}
		})
	}
}

func TestSeededRunsAreIdentical(t *testing.T) {
	for _, seed := range []uint64{0, 1, 42, 1<<63 + 7} {
		a, err := Simulate(2, normalMatrix(), 0.10, shockMatrix(), 200, WithSeed(seed))
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		b, err := Simulate(2, normalMatrix(), 0.10, shockMatrix(), 200, WithSeed(seed))
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}

		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("seed %d: trajectories diverge at step %d: %d vs %d", seed, i, a[i], b[i])
			}
		}
	}
}

func TestSimulateMatchesNewRun(t *testing.T) {
	one, err := Simulate(1, normalMatrix(), 0.25, shockMatrix(), 100, WithSeed(7))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	c, err := New(normalMatrix(), 0.25, shockMatrix(), WithSeed(7))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	two, err := c.Run(1, 100)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i := range one {
		if one[i] != two[i] {
			t.Fatalf("Simulate and New+Run diverge at step %d: %d vs %d", i, one[i], two[i])
		}
	}
}

func TestDegenerateRowAlwaysTransitionsToFirstState(t *testing.T) {
	// Every row routes all mass to state 0, regardless of shock.
	m := Matrix{
		{1.0, 0.0, 0.0, 0.0},
		{1.0, 0.0, 0.0, 0.0},
		{1.0, 0.0, 0.0, 0.0},
		{1.0, 0.0, 0.0, 0.0},
	}

	for _, seed := range []uint64{1, 2, 3, 99} {
		traj, err := Simulate(3, m, 0.5, m, 100, WithSeed(seed))
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		for i, s := range traj[1:] {
			if s != 0 {
				t.Fatalf("seed %d: step %d landed on %d, want 0", seed, i+1, s)
			}
		}
	}
}

func TestShockProbabilityBoundaries(t *testing.T) {
	// Normal matrix holds the current state; shock matrix rotates it.
	hold := Matrix{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	rotate := Matrix{
		{0, 1, 0},
		{0, 0, 1},
		{1, 0, 0},
	}

	t.Run("shock probability zero never shocks", func(t *testing.T) {
		for _, seed := range []uint64{5, 17, 23} {
			traj, err := Simulate(1, hold, 0.0, rotate, 100, WithSeed(seed))
			if err != nil {
				t.Fatalf("Simulate: %v", err)
			}
			for i, s := range traj {
				if s != 1 {
					t.Fatalf("seed %d: step %d left the held state: %d", seed, i, s)
				}
			}
		}
	})

	t.Run("shock probability one always shocks", func(t *testing.T) {
		for _, seed := range []uint64{5, 17, 23} {
			traj, err := Simulate(0, hold, 1.0, rotate, 9, WithSeed(seed))
			if err != nil {
				t.Fatalf("Simulate: %v", err)
			}
			for i, s := range traj {
				if s != i%3 {
					t.Fatalf("seed %d: step %d = %d, want rotation %d", seed, i, s, i%3)
				}
			}
		}
	})
}

func TestScriptedDraws(t *testing.T) {
	// Two uniforms per step: the shock decision, then the categorical
	// draw. Values are chosen away from cumulative-sum boundaries.
	src := &scriptSource{vals: []uint64{
		fromFloat(0.50), fromFloat(0.90), // no shock; Stable row, cum 0.85 < u < 1.00 -> Prosperity
		fromFloat(0.05), fromFloat(0.12), // shock; Prosperity shock row, 0.10 < u < 0.15 -> Recession
		fromFloat(0.95), fromFloat(0.75), // no shock; Recession row, 0.60 < u < 0.90 -> Stable
	}}

	var events []StepEvent
	traj, err := Simulate(2, normalMatrix(), 0.10, shockMatrix(), 3,
		WithSource(src),
		WithObserver(func(e StepEvent) { events = append(events, e) }),
	)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	want := Trajectory{2, 3, 1, 2}
	if len(traj) != len(want) {
		t.Fatalf("trajectory = %v, want %v", traj, want)
	}
	for i := range want {
		if traj[i] != want[i] {
			t.Fatalf("trajectory = %v, want %v", traj, want)
		}
	}

	wantShocked := []bool{false, true, false}
	if len(events) != len(wantShocked) {
		t.Fatalf("observed %d events, want %d", len(events), len(wantShocked))
	}
	for i, e := range events {
		if e.Shocked != wantShocked[i] {
			t.Errorf("step %d shocked = %v, want %v", e.Step, e.Shocked, wantShocked[i])
		}
		if e.Step != i+1 {
			t.Errorf("event %d has step %d, want %d", i, e.Step, i+1)
		}
		if e.From != traj[i] || e.To != traj[i+1] {
			t.Errorf("step %d event %d->%d, trajectory says %d->%d", e.Step, e.From, e.To, traj[i], traj[i+1])
		}
	}
}

func TestGoldenScenarioIsStable(t *testing.T) {
	// The reference scenario: 4 states, shock 0.10, initial Stable,
	// 50 steps, seed 42. The exact sequence is a property of the seeded
	// PCG stream; what must hold across refactors is that the stream is
	// stable and fully determined by the seed.
	runs := make([]Trajectory, 3)
	for i := range runs {
		traj, err := Simulate(2, normalMatrix(), 0.10, shockMatrix(), 50, WithSeed(42))
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		runs[i] = traj
	}

	for r := 1; r < len(runs); r++ {
		for i := range runs[0] {
			if runs[r][i] != runs[0][i] {
				t.Fatalf("run %d diverges from run 0 at step %d", r, i)
			}
		}
	}
}
