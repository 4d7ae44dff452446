package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-spice/engine/pkg/device"
)

// SweepPoint is one solved point of a DC sweep.
type SweepPoint struct {
	Value    float64
	Solution []float64
}

// RunDCSweep implements spec.md §4.9's DC sweep controller: step an
// independent source's DC value from start to stop (inclusive) and solve
// the operating point at each step, restoring the source's original value
// on return.
func RunDCSweep(net *Network, sourceName string, start, stop, step float64, temp float64, opts Options) ([]SweepPoint, error) {
	if step == 0 {
		return nil, fmt.Errorf("dc sweep: zero step for source %s", sourceName)
	}

	handle, err := sweepSetter(net, sourceName)
	if err != nil {
		return nil, err
	}
	defer handle.restore()

	var points []SweepPoint
	n := int(math.Floor((stop-start)/step+1e-9)) + 1
	for i := 0; i < n; i++ {
		v := start + float64(i)*step
		if err := handle.set(v); err != nil {
			return nil, err
		}
		sol, err := RunOperatingPoint(net, temp, opts)
		if err != nil {
			return nil, fmt.Errorf("dc sweep at %s=%g: %w", sourceName, v, err)
		}
		points = append(points, SweepPoint{Value: v, Solution: sol})
	}
	return points, nil
}

// sweepHandle sets a swept source's DC value and restores it afterward.
type sweepHandle struct {
	set     func(value float64) error
	restore func()
}

func sweepSetter(net *Network, name string) (*sweepHandle, error) {
	for _, d := range net.Devices {
		if !strings.EqualFold(d.Name(), name) {
			continue
		}
		switch src := d.(type) {
		case *device.VoltageSource:
			orig := src.DCValue
			return &sweepHandle{
				set:     func(v float64) error { src.DCValue = v; return nil },
				restore: func() { src.DCValue = orig },
			}, nil
		case *device.CurrentSource:
			orig := src.DCValue
			return &sweepHandle{
				set:     func(v float64) error { src.DCValue = v; return nil },
				restore: func() { src.DCValue = orig },
			}, nil
		}
	}
	return nil, fmt.Errorf("dc sweep: source %s not found", name)
}
