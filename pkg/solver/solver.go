// Package solver defines the pluggable linear-solver contract the Newton,
// transient, DC-sweep and AC controllers share, plus two implementations: a
// portable dense fallback and a sparse KLU-class backend.
package solver

import "errors"

// Errors mirror the SolverError taxonomy: a refusal at any lifecycle stage
// surfaces as one of these (wrapped) and terminates the calling controller.
var (
	ErrAnalyzeFailed = errors.New("solver: analyze failed")
	ErrFactorFailed  = errors.New("solver: factor failed")
	ErrSolveFailed   = errors.New("solver: solve failed")
)

// LinearSolver is the real-valued analyze/factor/solve lifecycle every
// controller drives. Implementations may treat Analyze as a no-op (dense)
// or cache a symbolic factorization keyed on the CCS pattern (sparse).
type LinearSolver interface {
	// Prepare reallocates workspace if n differs from the current size and
	// invalidates any cached symbolic factorization.
	Prepare(n int)
	// Analyze computes a symbolic factorization over the sparsity pattern.
	// Implementations may skip re-analysis when (ap, ai) match the last
	// analyzed pattern.
	Analyze(ap, ai []int) error
	// Factor performs numeric factorization of A given by (ap, ai, ax).
	Factor(ap, ai []int, ax []float64) error
	// Solve solves A*x = rhs in place, overwriting rhs with the solution.
	Solve(rhs []float64) error
	// ResetPattern discards any cached symbolic/numeric state.
	ResetPattern()
}

// ComplexSolver is the frequency-domain analog of LinearSolver. AC analysis
// only ever needs one factor+solve per swept frequency (no repeated solves
// against a fixed factorization), so the contract combines both steps per
// spec.md §4.9's "factor-then-solve is acceptable combined" allowance.
type ComplexSolver interface {
	Prepare(n int)
	FactorAndSolve(ap, ai []int, ax []complex128, rhs []complex128) ([]complex128, error)
	ResetPattern()
}
