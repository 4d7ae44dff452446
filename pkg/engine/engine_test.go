package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-spice/engine/pkg/engine"
	"github.com/go-spice/engine/pkg/netlist"
	"github.com/go-spice/engine/pkg/result"
)

func mustParse(t *testing.T, deck string) *engine.Engine {
	t.Helper()
	ckt, err := netlist.Parse(deck)
	require.NoError(t, err)
	eng, err := engine.New(ckt)
	require.NoError(t, err)
	require.NoError(t, eng.SetSolverType("dense"))
	return eng
}

const dividerDeck = `divider
V1 in 0 DC 5
R1 in out 1k
R2 out 0 1k
.op
`

func TestEngine_RunWithStore_OperatingPoint(t *testing.T) {
	eng := mustParse(t, dividerDeck)
	store := result.NewStore()

	id, err := eng.RunWithStore(eng.Circuit.Directives[0], 300.15, store)
	require.NoError(t, err)

	run, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, result.Converged, run.Status)
	assert.Equal(t, result.Op, run.Analysis)

	outIdx := -1
	for i, n := range run.NodeNames {
		if n == "out" {
			outIdx = i
		}
	}
	require.GreaterOrEqual(t, outIdx, 0)
	assert.InDelta(t, 2.5, run.Solution[outIdx], 1e-6)
}

func TestEngine_RunWithStore_DCSweep(t *testing.T) {
	deck := `sweep
V1 in 0 DC 0
R1 in 0 1k
.dc V1 0 2 1
`
	eng := mustParse(t, deck)
	store := result.NewStore()

	id, err := eng.RunWithStore(eng.Circuit.Directives[0], 300.15, store)
	require.NoError(t, err)

	run, _ := store.Get(id)
	assert.Equal(t, result.Converged, run.Status)
	assert.Equal(t, result.Dc, run.Analysis)
	require.Len(t, run.SweepValues, 3)
	assert.InDelta(t, 0.0, run.SweepValues[0], 1e-12)
	assert.InDelta(t, 2.0, run.SweepValues[2], 1e-12)
}

func TestEngine_RunWithStore_Transient(t *testing.T) {
	deck := `rc
V1 in 0 DC 1
R1 in out 1k
C1 out 0 1u
.tran 10u 1m
`
	eng := mustParse(t, deck)
	store := result.NewStore()

	id, err := eng.RunWithStore(eng.Circuit.Directives[0], 300.15, store)
	require.NoError(t, err)

	run, _ := store.Get(id)
	assert.Equal(t, result.Converged, run.Status)
	assert.NotEmpty(t, run.TranTimes)
	assert.Len(t, run.TranSolutions, len(run.TranTimes))
}

func TestEngine_RunWithStore_AC(t *testing.T) {
	deck := `rc-ac
V1 in 0 DC 0 AC 1 0
R1 in out 1k
C1 out 0 1u
.ac dec 5 1 1meg
`
	eng := mustParse(t, deck)
	store := result.NewStore()

	id, err := eng.RunWithStore(eng.Circuit.Directives[0], 300.15, store)
	require.NoError(t, err)

	run, _ := store.Get(id)
	assert.Equal(t, result.Converged, run.Status)
	require.Len(t, run.ACFrequencies, 5)
	require.Len(t, run.ACMagDB, 5)
	require.Len(t, run.ACPhaseDeg, 5)
}

func TestEngine_DiodeModelOverridesApply(t *testing.T) {
	deck := `diode
V1 a 0 DC 1
D1 a 0 DMOD
.model DMOD D (is=1e-15 n=1.2)
.op
`
	eng := mustParse(t, deck)
	store := result.NewStore()

	id, err := eng.RunWithStore(eng.Circuit.Directives[0], 300.15, store)
	require.NoError(t, err)
	run, _ := store.Get(id)
	assert.Equal(t, result.Converged, run.Status)
}

func TestEngine_ControlledSourceStampOrderResolves(t *testing.T) {
	deck := `cccs
V1 in 0 DC 1
R1 in 0 1k
F1 out 0 V1 2
R2 out 0 1k
.op
`
	eng := mustParse(t, deck)
	store := result.NewStore()

	id, err := eng.RunWithStore(eng.Circuit.Directives[0], 300.15, store)
	require.NoError(t, err)
	run, _ := store.Get(id)
	assert.Equal(t, result.Converged, run.Status, "F1's AuxID lookup of V1's branch must resolve: %s", run.Message)
}

// TestEngine_IndependentCurrentSourceSignConvention pins down the RHS sign
// convention for a lone current source (spec.md §4.2's scenario): I1 pushes
// 1mA from ground into n1, R1 returns it to ground, so n1 settles at +1V.
func TestEngine_IndependentCurrentSourceSignConvention(t *testing.T) {
	deck := `isource
I1 0 n1 1m
R1 n1 0 1k
.op
`
	eng := mustParse(t, deck)
	store := result.NewStore()

	id, err := eng.RunWithStore(eng.Circuit.Directives[0], 300.15, store)
	require.NoError(t, err)

	run, _ := store.Get(id)
	require.Equal(t, result.Converged, run.Status)

	n1Idx := -1
	for i, n := range run.NodeNames {
		if n == "n1" {
			n1Idx = i
		}
	}
	require.GreaterOrEqual(t, n1Idx, 0)
	assert.InDelta(t, 1.0, run.Solution[n1Idx], 1e-9)
}

func TestEngine_SetSolverType_UnknownNameErrors(t *testing.T) {
	eng := mustParse(t, dividerDeck)
	err := eng.SetSolverType("quantum")
	assert.Error(t, err)
}
