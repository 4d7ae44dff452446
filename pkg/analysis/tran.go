package analysis

import (
	"fmt"
	"math"

	"github.com/go-spice/engine/pkg/device"
)

// TimePoint is one accepted transient step.
type TimePoint struct {
	Time     float64
	Solution []float64
}

// TransientOptions configures spec.md §4.9's transient controller: the
// simulated window, the initial/maximum step size, and whether to skip the
// operating-point solve and use zero initial conditions instead.
type TransientOptions struct {
	Start, Stop float64
	Step        float64
	MaxStep     float64
	UseUIC      bool
}

// RunTransient implements backward-Euler transient analysis with adaptive
// step-size control: after each accepted Newton solve, every device.Reactive
// element reports a local truncation error estimate; the step is accepted
// only if every element's weighted error is at or below 1, per spec.md's
// `max_i |Δx_i| / (abstol + reltol*max(|new|,|old|)) <= 1` criterion.
func RunTransient(net *Network, topts TransientOptions, opts Options, temp float64) ([]TimePoint, error) {
	nominalStep := topts.Step
	if nominalStep <= 0 {
		return nil, fmt.Errorf("transient: non-positive step %g", nominalStep)
	}
	dt := nominalStep
	maxStep := topts.MaxStep
	if maxStep <= 0 {
		maxStep = dt
	}
	minStep := 1e-6 * nominalStep

	state := &device.State{Mode: device.Transient, Temp: temp, Time: topts.Start, SourceScale: 1}

	if !topts.UseUIC {
		sol, err := RunOperatingPoint(net, temp, opts)
		if err != nil {
			return nil, fmt.Errorf("transient: operating point failed: %w", err)
		}
		state.Solution = sol
	} else {
		state.Solution = make([]float64, net.System.Size())
	}
	advanceReactive(net, state)

	points := []TimePoint{{Time: topts.Start, Solution: append([]float64(nil), state.Solution...)}}
	time := topts.Start

	for time < topts.Stop {
		next := time + dt
		if next > topts.Stop {
			next = topts.Stop
			dt = next - time
		}

		state.Time = next
		state.TimeStep = dt

		sol, err := doIteration(net, state, 0, opts)
		if err != nil {
			if dt <= minStep {
				return nil, fmt.Errorf("transient: failed to converge at t=%g: %w", next, err)
			}
			dt = math.Max(dt/2, minStep)
			continue
		}
		state.Solution = sol

		ratio := truncationRatio(net, state, opts)
		if ratio > 1.0 {
			if dt <= minStep {
				return points, fmt.Errorf("transient: local error exceeds tolerance at t=%g even at minimum step", next)
			}
			dt = math.Max(dt/2, minStep)
			continue
		}

		advanceReactive(net, state)
		time = next
		points = append(points, TimePoint{Time: time, Solution: append([]float64(nil), sol...)})

		dt = math.Min(dt*1.5, maxStep)
	}

	return points, nil
}

func advanceReactive(net *Network, state *device.State) {
	for _, d := range net.Devices {
		if r, ok := d.(device.Reactive); ok {
			r.AdvanceHistory(state)
		}
	}
}

func truncationRatio(net *Network, state *device.State, opts Options) float64 {
	maxRatio := 0.0
	for _, d := range net.Devices {
		r, ok := d.(device.Reactive)
		if !ok {
			continue
		}
		value, scale := r.LocalError(state)
		denom := opts.AbsTol + opts.RelTol*scale
		if denom <= 0 {
			continue
		}
		if ratio := value / denom; ratio > maxRatio {
			maxRatio = ratio
		}
	}
	return maxRatio
}
