package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-spice/engine/pkg/device"
	"github.com/go-spice/engine/pkg/mna"
)

func TestResistor_StampsConductanceBothNodes(t *testing.T) {
	sys := mna.NewSystem(3, 0)
	r := device.NewResistor("R1", []string{"1", "2"}, 1000)
	r.SetNodeIDs([]int{1, 2})

	ctx := sys.Context(0, 1)
	require.NoError(t, r.Stamp(ctx, &device.State{Mode: device.OperatingPoint, Temp: 300.15}))

	m := sys.Dense()
	g := 1.0 / 1000.0
	assert.InDelta(t, g, m[1][1], 1e-12)
	assert.InDelta(t, g, m[2][2], 1e-12)
	assert.InDelta(t, -g, m[1][2], 1e-12)
	assert.InDelta(t, -g, m[2][1], 1e-12)
}

func TestResistor_GroundedTerminalOnlyStampsTheOtherNode(t *testing.T) {
	sys := mna.NewSystem(2, 0)
	r := device.NewResistor("R1", []string{"1", "0"}, 500)
	r.SetNodeIDs([]int{1, 0})

	ctx := sys.Context(0, 1)
	require.NoError(t, r.Stamp(ctx, &device.State{Temp: 300.15}))

	m := sys.Dense()
	assert.InDelta(t, 1.0/500.0, m[1][1], 1e-12)
}

func TestVoltageSource_AllocatesAuxAndStampsRHS(t *testing.T) {
	sys := mna.NewSystem(2, 0)
	v := device.NewVoltageSource("V1", []string{"1", "0"}, 5.0)
	v.SetNodeIDs([]int{1, 0})

	ctx := sys.Context(0, 1)
	require.NoError(t, v.Stamp(ctx, &device.State{Mode: device.OperatingPoint, SourceScale: 1}))

	m := sys.Dense()
	auxRow := sys.NodeCount // first aux id
	assert.InDelta(t, 1.0, m[auxRow][1], 1e-12)
	assert.InDelta(t, 1.0, m[1][auxRow], 1e-12)

	_, _, _, rhs := sys.Finalize()
	assert.InDelta(t, 5.0, rhs[auxRow], 1e-12)
}

func TestVoltageSource_SourceSteppingScalesRHS(t *testing.T) {
	sys := mna.NewSystem(2, 0)
	v := device.NewVoltageSource("V1", []string{"1", "0"}, 10.0)
	v.SetNodeIDs([]int{1, 0})

	ctx := sys.Context(0, 0.5)
	require.NoError(t, v.Stamp(ctx, &device.State{SourceScale: 0.5}))

	_, _, _, rhs := sys.Finalize()
	assert.InDelta(t, 5.0, rhs[sys.NodeCount], 1e-12)
}

func TestDiode_ForwardBiasProducesPositiveConductance(t *testing.T) {
	sys := mna.NewSystem(2, 0)
	d := device.NewDiode("D1", []string{"1", "0"})
	d.SetNodeIDs([]int{1, 0})

	st := &device.State{Temp: 300.15, Solution: []float64{0, 0.6}}
	d.UpdateBias(st)

	ctx := sys.Context(0, 1)
	require.NoError(t, d.Stamp(ctx, st))

	m := sys.Dense()
	assert.Greater(t, m[1][1], 0.0, "forward-biased diode must contribute positive conductance")
}

func TestDiode_ReverseBiasConductanceIsNearGmin(t *testing.T) {
	sys := mna.NewSystem(2, 0)
	d := device.NewDiode("D1", []string{"1", "0"})
	d.SetNodeIDs([]int{1, 0})

	st := &device.State{Temp: 300.15, Solution: []float64{0, -1}}
	d.UpdateBias(st)

	ctx := sys.Context(0, 1)
	require.NoError(t, d.Stamp(ctx, st))

	m := sys.Dense()
	assert.InDelta(t, d.Gmin, m[1][1], 1e-9)
}

func TestBase_SetNodeIDsInstallsIDs(t *testing.T) {
	r := device.NewResistor("R1", []string{"a", "b"}, 1)
	assert.Equal(t, []int{0, 0}, r.Nodes(), "constructor leaves NodeIDs zeroed")

	r.SetNodeIDs([]int{3, 4})
	assert.Equal(t, []int{3, 4}, r.Nodes())
}
