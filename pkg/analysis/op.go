package analysis

import "github.com/go-spice/engine/pkg/device"

// RunOperatingPoint solves spec.md §4.9's DC operating point: a single
// Newton-Raphson solve (with Gmin/source-stepping fallback) at Mode =
// OperatingPoint, zero time, zero source waveform evolution.
func RunOperatingPoint(net *Network, temp float64, opts Options) ([]float64, error) {
	state := &device.State{Mode: device.OperatingPoint, Temp: temp}
	return Solve(net, state, opts)
}
