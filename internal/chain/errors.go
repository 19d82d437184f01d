package chain

import (
	"errors"
	"fmt"
)

// Domain errors for simulation inputs. All validation failures wrap one
// of these sentinels, so callers can branch with errors.Is.
var (
	// ErrShapeMismatch indicates a non-square matrix or a dimension
	// disagreement between the normal and shock matrices.
	ErrShapeMismatch = errors.New("chain: matrix shape mismatch")

	// ErrInvalidDistribution indicates a matrix row that is not a
	// probability distribution (bad sum or negative entry).
	ErrInvalidDistribution = errors.New("chain: invalid distribution")

	// ErrInvalidProbability indicates a shock probability outside [0, 1].
	ErrInvalidProbability = errors.New("chain: invalid probability")

	// ErrOutOfRange indicates an initial state or step count outside its
	// valid range.
	ErrOutOfRange = errors.New("chain: value out of range")
)

// DistributionError reports which matrix row failed row-sum validation.
type DistributionError struct {
	Matrix string  // "normal" or "shock"
	Row    int     // offending row index
	Sum    float64 // actual row sum
}

func (e *DistributionError) Error() string {
	return fmt.Sprintf("%s matrix row %d sums to %.10g, want 1 within %g", e.Matrix, e.Row, e.Sum, RowSumTolerance)
}

func (e *DistributionError) Unwrap() error {
	return ErrInvalidDistribution
}
