package analysis_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-spice/engine/pkg/analysis"
	"github.com/go-spice/engine/pkg/device"
	"github.com/go-spice/engine/pkg/mna"
	"github.com/go-spice/engine/pkg/solver"
)

// newDivider builds a V1(5V)-R1(1k)-R2(1k) resistor divider between node 1
// (in), node 2 (out) and ground, which should settle at 2.5V on node 2.
func newDivider(t *testing.T) *analysis.Network {
	t.Helper()
	sys := mna.NewSystem(3, 0)

	v1 := device.NewVoltageSource("V1", []string{"1", "0"}, 5.0)
	v1.SetNodeIDs([]int{1, 0})
	r1 := device.NewResistor("R1", []string{"1", "2"}, 1000)
	r1.SetNodeIDs([]int{1, 2})
	r2 := device.NewResistor("R2", []string{"2", "0"}, 1000)
	r2.SetNodeIDs([]int{2, 0})

	return &analysis.Network{
		Devices: []device.Device{v1, r1, r2},
		System:  sys,
		Solver:  solver.NewDense(sys.Size()),
	}
}

func TestRunOperatingPoint_ResistorDivider(t *testing.T) {
	net := newDivider(t)
	sol, err := analysis.RunOperatingPoint(net, 300.15, analysis.DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 5.0, sol[1], 1e-6)
	assert.InDelta(t, 2.5, sol[2], 1e-6)
}

func TestRunDCSweep_StepsSourceAndRestoresIt(t *testing.T) {
	net := newDivider(t)
	v1 := net.Devices[0].(*device.VoltageSource)

	points, err := analysis.RunDCSweep(net, "V1", 0, 2, 1, 300.15, analysis.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.InDelta(t, 0.0, points[0].Value, 1e-12)
	assert.InDelta(t, 0.0, points[0].Solution[2], 1e-6)
	assert.InDelta(t, 0.5, points[1].Solution[2], 1e-6)
	assert.InDelta(t, 1.0, points[2].Solution[2], 1e-6)

	assert.InDelta(t, 5.0, v1.DCValue, 1e-12, "sweep must restore the source's original DC value")
}

func TestRunDCSweep_UnknownSourceErrors(t *testing.T) {
	net := newDivider(t)
	_, err := analysis.RunDCSweep(net, "V99", 0, 1, 1, 300.15, analysis.DefaultOptions())
	assert.Error(t, err)
}

func TestRunDCSweep_ZeroStepErrors(t *testing.T) {
	net := newDivider(t)
	_, err := analysis.RunDCSweep(net, "V1", 0, 1, 0, 300.15, analysis.DefaultOptions())
	assert.Error(t, err)
}

// TestRunTransient_RCChargingApproachesFinalValue builds a V1(1V)-R1(1k)-C1(1u)
// charging circuit (tau = 1ms) and checks the step response settles near 1V
// after several time constants, following the expected exponential shape.
func TestRunTransient_RCChargingApproachesFinalValue(t *testing.T) {
	sys := mna.NewSystem(3, 0)

	v1 := device.NewVoltageSource("V1", []string{"1", "0"}, 1.0)
	v1.SetNodeIDs([]int{1, 0})
	r1 := device.NewResistor("R1", []string{"1", "2"}, 1000)
	r1.SetNodeIDs([]int{1, 2})
	c1 := device.NewCapacitor("C1", []string{"2", "0"}, 1e-6)
	c1.SetNodeIDs([]int{2, 0})

	net := &analysis.Network{
		Devices: []device.Device{v1, r1, c1},
		System:  sys,
		Solver:  solver.NewDense(sys.Size()),
	}

	topts := analysis.TransientOptions{Start: 0, Stop: 5e-3, Step: 1e-5, MaxStep: 1e-4, UseUIC: true}
	points, err := analysis.RunTransient(net, topts, analysis.DefaultOptions(), 300.15)
	require.NoError(t, err)
	require.NotEmpty(t, points)

	last := points[len(points)-1]
	assert.InDelta(t, 1.0, last.Solution[2], 0.02, "after 5 time constants the capacitor should be nearly charged")

	tau := 1e-3
	mid := points[len(points)/2]
	expected := 1 - math.Exp(-mid.Time/tau)
	assert.InDelta(t, expected, mid.Solution[2], 0.05)
}

func TestRunTransient_NonPositiveStepErrors(t *testing.T) {
	net := newDivider(t)
	_, err := analysis.RunTransient(net, analysis.TransientOptions{Stop: 1e-3, Step: 0}, analysis.DefaultOptions(), 300.15)
	assert.Error(t, err)
}

func TestGenerateFrequencies_Decade(t *testing.T) {
	freqs, err := analysis.GenerateFrequencies("dec", 1, 1000, 4)
	require.NoError(t, err)
	require.Len(t, freqs, 4)
	assert.InDelta(t, 1.0, freqs[0], 1e-9)
	assert.InDelta(t, 1000.0, freqs[3], 1e-6)
}

func TestGenerateFrequencies_UnknownSweepType(t *testing.T) {
	_, err := analysis.GenerateFrequencies("bogus", 1, 10, 3)
	assert.Error(t, err)
}

// TestRunAC_RCLowPassAttenuatesAboveCutoff builds a 1kOhm/1uF low-pass
// (cutoff ~159Hz) and checks the response is close to unity well below
// cutoff and attenuated well above it.
func TestRunAC_RCLowPassAttenuatesAboveCutoff(t *testing.T) {
	sys := mna.NewSystem(3, 0)

	v1 := device.NewVoltageSource("V1", []string{"1", "0"}, 0)
	v1.SetNodeIDs([]int{1, 0})
	v1.HasAC = true
	v1.ACMag = 1.0
	r1 := device.NewResistor("R1", []string{"1", "2"}, 1000)
	r1.SetNodeIDs([]int{1, 2})
	c1 := device.NewCapacitor("C1", []string{"2", "0"}, 1e-6)
	c1.SetNodeIDs([]int{2, 0})

	net := &analysis.Network{
		Devices: []device.Device{v1, r1, c1},
		System:  sys,
		Solver:  solver.NewDense(sys.Size()),
	}

	opState := &device.State{Mode: device.OperatingPoint, Temp: 300.15}
	bias, err := analysis.RunOperatingPoint(net, 300.15, analysis.DefaultOptions())
	require.NoError(t, err)
	opState.Solution = bias

	csys := mna.NewComplexSystem(sys.NodeCount, sys.Ground, sys.AuxTable())
	cnet := &analysis.ComplexNetwork{
		Devices: net.Devices,
		System:  csys,
		Solver:  solver.NewDenseComplex(csys.Size()),
	}

	freqs, err := analysis.GenerateFrequencies("dec", 1, 1e6, 7)
	require.NoError(t, err)

	points, err := analysis.RunAC(cnet, opState, freqs)
	require.NoError(t, err)
	require.Len(t, points, 7)

	lowMag := analysis.MagnitudeDB(points[0].Solution[2])
	highMag := analysis.MagnitudeDB(points[len(points)-1].Solution[2])

	assert.InDelta(t, 0.0, lowMag, 1.0, "well below cutoff the gain should be near 0dB")
	assert.Less(t, highMag, -30.0, "well above cutoff the gain should be heavily attenuated")
}
