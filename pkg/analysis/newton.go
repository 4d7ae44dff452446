// Package analysis implements the Newton-Raphson driver and the
// operating-point, transient, DC-sweep and AC controllers built on top of
// it, generalizing the teacher's BaseAnalysis/doNRiter idiom onto the
// pkg/mna + pkg/solver + pkg/device stack.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-spice/engine/pkg/device"
	"github.com/go-spice/engine/pkg/mna"
	"github.com/go-spice/engine/pkg/solver"
)

// ErrMaxIters marks a Newton solve that exhausted Options.MaxIter without
// meeting the convergence tolerance (spec.md §7's ConvergenceError), distinct
// from a solver-level failure. Callers use errors.Is to tell the two apart
// when deciding a result.Run's terminal status.
var ErrMaxIters = errors.New("newton: exhausted max iterations without converging")

// Options bounds a Newton-Raphson solve: iteration count and the
// absolute/relative tolerances spec.md's convergence test uses.
type Options struct {
	MaxIter int
	AbsTol  float64
	RelTol  float64
}

// DefaultOptions mirrors the teacher's BaseAnalysis convergence defaults.
func DefaultOptions() Options {
	return Options{MaxIter: 100, AbsTol: 1e-12, RelTol: 1e-6}
}

// Network bundles everything a Newton iterate needs to stamp and solve one
// linear system: the device list, the real-valued MNA system they stamp
// into, and the linear solver backend.
type Network struct {
	Devices []device.Device
	System  *mna.System
	Solver  solver.LinearSolver
}

// converged reports whether newSol has settled relative to oldSol under
// opts' absolute+relative tolerance, checking every entry (the ground entry
// is pinned to zero, so it never blocks convergence).
func converged(oldSol, newSol []float64, opts Options) bool {
	if oldSol == nil || len(oldSol) != len(newSol) {
		return false
	}
	for i := range newSol {
		diff := math.Abs(newSol[i] - oldSol[i])
		tol := opts.AbsTol + opts.RelTol*math.Max(math.Abs(newSol[i]), math.Abs(oldSol[i]))
		if diff > tol {
			return false
		}
	}
	return true
}

// doIteration runs Newton-Raphson at a fixed Gmin and source-stepping scale,
// starting from state.Solution as the initial guess (continuation from a
// prior homotopy step, or nil for a cold start), and returning the converged
// dense solution (node voltages followed by aux branch currents).
func doIteration(net *Network, state *device.State, gmin float64, opts Options) ([]float64, error) {
	oldSolution := state.Solution

	for iter := 0; iter < opts.MaxIter; iter++ {
		net.System.ClearValues()
		state.Solution = oldSolution

		for _, d := range net.Devices {
			if nl, ok := d.(device.NonLinear); ok {
				nl.UpdateBias(state)
			}
		}

		state.Gmin = gmin
		ctx := net.System.Context(gmin, state.SourceScale)
		for _, d := range net.Devices {
			if err := d.Stamp(ctx, state); err != nil {
				return nil, fmt.Errorf("stamping %s: %w", d.Name(), err)
			}
		}

		ap, ai, ax, rhs := net.System.Finalize()

		n := net.System.Size()
		net.Solver.Prepare(n)
		if err := net.Solver.Analyze(ap, ai); err != nil {
			return nil, fmt.Errorf("analyze: %w", err)
		}
		if err := net.Solver.Factor(ap, ai, ax); err != nil {
			return nil, fmt.Errorf("factor: %w", err)
		}
		if err := net.Solver.Solve(rhs); err != nil {
			return nil, fmt.Errorf("solve: %w", err)
		}

		if converged(oldSolution, rhs, opts) {
			return rhs, nil
		}
		oldSolution = rhs
	}

	return nil, fmt.Errorf("%w: %d iterations", ErrMaxIters, opts.MaxIter)
}

// Homotopy continuation schedule sizes (spec.md §4.6's gmin_steps/source_steps
// defaults): gminSteps+1 geometric gmin points and sourceSteps+1 linear
// source_scale points.
const (
	gminTarget  = 1e-12
	gminSteps   = 8
	sourceSteps = 4
)

// gminSchedule returns the i-th of gminSteps+1 points of a geometric ramp
// from gmin_start = max(1e-6, 1000*gmin_target) down to gmin_target.
func gminSchedule(i int) float64 {
	start := math.Max(1e-6, 1000*gminTarget)
	if gminSteps == 0 {
		return gminTarget
	}
	frac := float64(i) / float64(gminSteps)
	return start * math.Pow(gminTarget/start, frac)
}

// Solve runs spec.md §4.6's nested continuation ladder: the outer loop ramps
// Gmin geometrically from gmin_start down to gmin_target, and for each Gmin
// value the inner loop ramps SourceScale linearly from 0 to 1, running a
// bounded Newton solve at every (gmin, source_scale) pair and carrying its
// solution forward as the next pair's initial guess.
func Solve(net *Network, state *device.State, opts Options) ([]float64, error) {
	var sol []float64

	for gi := 0; gi <= gminSteps; gi++ {
		gmin := gminSchedule(gi)
		for si := 0; si <= sourceSteps; si++ {
			state.SourceScale = float64(si) / float64(sourceSteps)

			var err error
			sol, err = doIteration(net, state, gmin, opts)
			if err != nil {
				return nil, fmt.Errorf("continuation failed at gmin=%.3g scale=%.2f: %w", gmin, state.SourceScale, err)
			}
			state.Solution = sol
		}
	}

	return sol, nil
}
