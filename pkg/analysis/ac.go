package analysis

import (
	"fmt"
	"math"

	"github.com/go-spice/engine/pkg/device"
	"github.com/go-spice/engine/pkg/mna"
	"github.com/go-spice/engine/pkg/solver"
)

// ComplexNetwork bundles the device list, the complex-valued MNA system and
// the frequency-domain solver an AC sweep drives. It shares its aux table
// (and so, implicitly, its bias point) with a Network that has already
// solved the operating point.
type ComplexNetwork struct {
	Devices []device.Device
	System  *mna.ComplexSystem
	Solver  solver.ComplexSolver
}

// ACPoint is one solved frequency of an AC sweep.
type ACPoint struct {
	Frequency float64
	Solution  []complex128
}

// GenerateFrequencies builds the swept frequency list for "dec"/"oct"/"lin"
// sweep types, mirroring the teacher's generateFrequencyPoints.
func GenerateFrequencies(sweepType string, fStart, fStop float64, points int) ([]float64, error) {
	if points < 1 {
		return nil, fmt.Errorf("ac sweep: need at least 1 point, got %d", points)
	}
	if fStart <= 0 {
		return nil, fmt.Errorf("ac sweep: fStart must be positive, got %g", fStart)
	}
	freqs := make([]float64, points)
	if points == 1 {
		freqs[0] = fStart
		return freqs, nil
	}
	if fStop <= fStart {
		return nil, fmt.Errorf("ac sweep: fStop %g must be greater than fStart %g", fStop, fStart)
	}

	switch sweepType {
	case "dec":
		logStart, logStop := math.Log10(fStart), math.Log10(fStop)
		step := (logStop - logStart) / float64(points-1)
		for i := range freqs {
			freqs[i] = math.Pow(10, logStart+float64(i)*step)
		}
	case "oct":
		logStart, logStop := math.Log2(fStart), math.Log2(fStop)
		step := (logStop - logStart) / float64(points-1)
		for i := range freqs {
			freqs[i] = math.Pow(2, logStart+float64(i)*step)
		}
	case "lin", "":
		step := (fStop - fStart) / float64(points-1)
		for i := range freqs {
			freqs[i] = fStart + float64(i)*step
		}
	default:
		return nil, fmt.Errorf("ac sweep: unknown sweep type %q", sweepType)
	}
	return freqs, nil
}

// RunAC implements spec.md §4.9's AC controller: at each swept frequency,
// stamp the complex system (devices linearized at the DC bias carried by
// opState.Solution) and factor+solve.
func RunAC(net *ComplexNetwork, opState *device.State, frequencies []float64) ([]ACPoint, error) {
	state := &device.State{
		Mode:     device.ACSmallSignal,
		Temp:     opState.Temp,
		Solution: opState.Solution,
	}

	var points []ACPoint
	for _, freq := range frequencies {
		state.Frequency = freq

		net.System.ClearValues()
		ctx := net.System.Context()
		for _, d := range net.Devices {
			ac, ok := d.(device.ACDevice)
			if !ok {
				continue
			}
			if err := ac.StampAC(ctx, state); err != nil {
				return nil, fmt.Errorf("ac stamping %s at f=%g: %w", d.Name(), freq, err)
			}
		}

		ap, ai, ax, rhs := net.System.Finalize()

		n := net.System.Size()
		net.Solver.Prepare(n)
		solution, err := net.Solver.FactorAndSolve(ap, ai, ax, rhs)
		if err != nil {
			return nil, fmt.Errorf("ac solve at f=%g: %w", freq, err)
		}

		points = append(points, ACPoint{Frequency: freq, Solution: solution})
	}
	return points, nil
}

// MagnitudeDB converts a complex solution entry to decibels, floored at
// -600dB for magnitudes below 1e-30 per spec.md §4.9.
func MagnitudeDB(v complex128) float64 {
	mag := cmplxAbs(v)
	if mag < 1e-30 {
		return -600
	}
	return 20 * math.Log10(mag)
}

// PhaseDegrees converts a complex solution entry to degrees.
func PhaseDegrees(v complex128) float64 {
	return cmplxPhase(v) * 180.0 / math.Pi
}

func cmplxAbs(v complex128) float64   { return math.Hypot(real(v), imag(v)) }
func cmplxPhase(v complex128) float64 { return math.Atan2(imag(v), real(v)) }
