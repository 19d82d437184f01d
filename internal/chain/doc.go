// Package chain implements a discrete-time finite-state Markov process
// with a stochastic shock override.
//
// At each step the simulator draws a uniform value and, with the
// configured shock probability, samples the next state from the shock
// transition matrix instead of the normal one. Both matrices are
// validated eagerly (square, equal dimension, non-negative entries,
// rows summing to 1 within tolerance) before any sampling happens.
//
// Every Chain owns its random generator. Seeded chains replay the exact
// same trajectory for identical inputs; unseeded chains draw from an
// entropy-seeded stream. A Chain is not safe for concurrent use; run
// independent simulations on independently seeded Chains.
package chain
