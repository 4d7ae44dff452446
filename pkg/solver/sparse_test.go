package solver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-spice/engine/pkg/solver"
)

func TestSparse_SolvesSmallSystem(t *testing.T) {
	s := solver.NewSparse(2)
	ap := []int{0, 2, 4}
	ai := []int{0, 1, 0, 1}
	ax := []float64{2, 1, 1, 3}

	require.NoError(t, s.Analyze(ap, ai))
	require.NoError(t, s.Factor(ap, ai, ax))

	rhs := []float64{3, 5}
	require.NoError(t, s.Solve(rhs))
	assert.InDelta(t, 0.8, rhs[0], 1e-9)
	assert.InDelta(t, 1.4, rhs[1], 1e-9)
}

func TestSparse_AnalyzeSkipsUnchangedPattern(t *testing.T) {
	s := solver.NewSparse(2)
	ap := []int{0, 2, 4}
	ai := []int{0, 1, 0, 1}

	require.NoError(t, s.Analyze(ap, ai))
	require.NoError(t, s.Analyze(ap, ai), "re-analyzing an identical pattern must not error")
}

func TestSparse_ResetPatternClearsFactorization(t *testing.T) {
	s := solver.NewSparse(2)
	s.ResetPattern()
	err := s.Solve([]float64{1, 1})
	assert.ErrorIs(t, err, solver.ErrSolveFailed)
}

func TestSparseComplex_FactorAndSolve(t *testing.T) {
	s := solver.NewSparseComplex(2)
	ap := []int{0, 2, 4}
	ai := []int{0, 1, 0, 1}
	ax := []complex128{complex(2, 0), complex(1, 0), complex(1, 0), complex(3, 0)}
	rhs := []complex128{complex(3, 0), complex(5, 0)}

	sol, err := s.FactorAndSolve(ap, ai, ax, rhs)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, real(sol[0]), 1e-9)
	assert.InDelta(t, 1.4, real(sol[1]), 1e-9)
}
