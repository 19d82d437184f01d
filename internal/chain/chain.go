package chain

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// RowSumTolerance is the absolute tolerance for matrix row sums.
const RowSumTolerance = 1e-8

// Matrix is a row-stochastic transition matrix: Matrix[i][j] is the
// probability of moving from state i to state j.
type Matrix [][]float64

// Dim returns the number of states (rows) in the matrix.
func (m Matrix) Dim() int {
	return len(m)
}

// Trajectory is the ordered sequence of states visited by one
// simulation run, including the initial state at index 0.
type Trajectory []int

// StepEvent describes one simulation step for observers.
type StepEvent struct {
	Step    int     // 1-based step number
	U       float64 // uniform draw that decided normal vs shock
	Shocked bool    // whether the shock matrix was used
	From    int     // state before the step
	To      int     // state after the step
}

// Chain is a validated shocked Markov chain with its own random stream.
// Not safe for concurrent use.
type Chain struct {
	normal    Matrix
	shock     Matrix
	shockProb float64
	rng       *rand.Rand
	observe   func(StepEvent)
}

type options struct {
	src     rand.Source
	observe func(StepEvent)
}

// Option configures a Chain at construction time.
type Option func(*options)

// WithSeed makes every draw of the chain deterministic: identical seeds
// and inputs replay identical trajectories.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.src = rand.NewPCG(seed, seed)
	}
}

// WithSource uses a caller-owned random source. The chain takes
// exclusive ownership of the source for its lifetime.
func WithSource(src rand.Source) Option {
	return func(o *options) {
		o.src = src
	}
}

// WithObserver registers a callback invoked once per simulation step.
// The chain itself performs no I/O; observers are how callers trace
// individual draws.
func WithObserver(fn func(StepEvent)) Option {
	return func(o *options) {
		o.observe = fn
	}
}

// New validates the matrices and shock probability and returns a ready
// Chain. Validation is eager and complete: no Chain is constructed from
// invalid inputs.
func New(normal Matrix, shockProb float64, shock Matrix, opts ...Option) (*Chain, error) {
	if errs := Check(normal, shockProb, shock); len(errs) > 0 {
		return nil, errs[0]
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.src == nil {
		o.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	return &Chain{
		normal:    normal,
		shock:     shock,
		shockProb: shockProb,
		rng:       rand.New(o.src),
		observe:   o.observe,
	}, nil
}

// Check returns every invariant violation in the given inputs. An empty
// result means the inputs are valid. New reports only the first
// violation; Check exists so validation surfaces can report all of them.
func Check(normal Matrix, shockProb float64, shock Matrix) []error {
	var errs []error

	n := normal.Dim()
	if n == 0 {
		errs = append(errs, fmt.Errorf("normal matrix is empty: %w", ErrShapeMismatch))
	}
	if shock.Dim() != n {
		errs = append(errs, fmt.Errorf("shock matrix has %d rows, normal matrix has %d: %w", shock.Dim(), n, ErrShapeMismatch))
	}

	errs = append(errs, checkRows("normal", normal)...)
	errs = append(errs, checkRows("shock", shock)...)

	if shockProb < 0 || shockProb > 1 {
		errs = append(errs, fmt.Errorf("shock probability %g outside [0, 1]: %w", shockProb, ErrInvalidProbability))
	}

	return errs
}

// checkRows validates that every row of m is a probability distribution
// over m.Dim() states.
func checkRows(name string, m Matrix) []error {
	var errs []error
	n := m.Dim()

	for i, row := range m {
		if len(row) != n {
			errs = append(errs, fmt.Errorf("%s matrix row %d has %d entries, want %d: %w", name, i, len(row), n, ErrShapeMismatch))
			continue
		}

		sum := 0.0
		negative := false
		for j, p := range row {
			if p < 0 {
				errs = append(errs, fmt.Errorf("%s matrix row %d has negative entry %g at column %d: %w", name, i, p, j, ErrInvalidDistribution))
				negative = true
				break
			}
			sum += p
		}
		if negative {
			continue
		}

		if math.Abs(sum-1) > RowSumTolerance {
			errs = append(errs, &DistributionError{Matrix: name, Row: i, Sum: sum})
		}
	}

	return errs
}

// Dim returns the number of states in the chain.
func (c *Chain) Dim() int {
	return c.normal.Dim()
}

// Run produces one sample path of length steps+1 starting at initial.
// The initial state occupies index 0 of the returned trajectory. A zero
// step count is valid and returns just the initial state.
func (c *Chain) Run(initial, steps int) (Trajectory, error) {
	n := c.normal.Dim()
	if initial < 0 || initial >= n {
		return nil, fmt.Errorf("initial state %d outside [0, %d): %w", initial, n, ErrOutOfRange)
	}
	if steps < 0 {
		return nil, fmt.Errorf("step count %d is negative: %w", steps, ErrOutOfRange)
	}

	traj := make(Trajectory, 0, steps+1)
	traj = append(traj, initial)

	current := initial
	for step := 1; step <= steps; step++ {
		u := c.rng.Float64()
		shocked := u < c.shockProb

		row := c.normal[current]
		if shocked {
			row = c.shock[current]
		}

		next := c.draw(row)
		if c.observe != nil {
			c.observe(StepEvent{Step: step, U: u, Shocked: shocked, From: current, To: next})
		}

		current = next
		traj = append(traj, current)
	}

	return traj, nil
}

// Simulate validates the inputs and produces one trajectory in a single
// call. Equivalent to New followed by Run.
func Simulate(initial int, normal Matrix, shockProb float64, shock Matrix, steps int, opts ...Option) (Trajectory, error) {
	c, err := New(normal, shockProb, shock, opts...)
	if err != nil {
		return nil, err
	}
	return c.Run(initial, steps)
}

// draw samples an index from the probability vector row by inverse-CDF.
// Floating-point residue in the cumulative sum is assigned to the last
// positive entry, so the draw always lands on a reachable state.
func (c *Chain) draw(row []float64) int {
	u := c.rng.Float64()

	cum := 0.0
	last := 0
	for j, p := range row {
		if p <= 0 {
			continue
		}
		cum += p
		last = j
		if u < cum {
			return j
		}
	}
	return last
}
