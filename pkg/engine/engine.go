// Package engine is the façade that elaborates a *circuit.Circuit into a
// stampable device list and MNA systems, and dispatches a run directive to
// the matching pkg/analysis controller, recording the outcome in a
// pkg/result.Store. Only this package touches the store, matching the
// teacher's habit of keeping orchestration in one place above the solver
// plumbing.
package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-spice/engine/pkg/analysis"
	"github.com/go-spice/engine/pkg/bsim"
	"github.com/go-spice/engine/pkg/circuit"
	"github.com/go-spice/engine/pkg/device"
	"github.com/go-spice/engine/pkg/mna"
	"github.com/go-spice/engine/pkg/result"
	"github.com/go-spice/engine/pkg/solver"
	"github.com/go-spice/engine/pkg/units"
)

// runStatus classifies a Newton/analysis error into spec.md §7's terminal
// run statuses: an exhausted-iterations Newton solve surfaces as MaxIters,
// distinct from every other failure (structural, solver, time-step).
func runStatus(err error) result.Status {
	if err == nil {
		return result.Converged
	}
	if errors.Is(err, analysis.ErrMaxIters) {
		return result.MaxIters
	}
	return result.Failed
}

// Engine owns one elaborated circuit, its device list and the real/complex
// solver pair used across every analysis run against it.
type Engine struct {
	Circuit       *circuit.Circuit
	RealSolver    solver.LinearSolver
	ComplexSolver solver.ComplexSolver

	devices []device.Device
	system  *mna.System
}

// New elaborates ckt into a device list and a fresh MNA system, defaulting
// to the sparse solver pair.
func New(ckt *circuit.Circuit) (*Engine, error) {
	devices, err := buildDevices(ckt)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		Circuit: ckt,
		system:  mna.NewSystem(ckt.NodeCount(), ckt.Ground),
		devices: devices,
	}
	if err := e.SetSolverType("sparse"); err != nil {
		return nil, err
	}
	return e, nil
}

// SetSolverType swaps the real and complex solver implementations
// ("sparse", the default, or "dense"). Invalidates any prior factorization, matching the teacher's
// pattern of rebuilding the solver on type change rather than resetting in
// place.
func (e *Engine) SetSolverType(name string) error {
	switch strings.ToLower(name) {
	case "sparse", "":
		e.RealSolver = solver.NewSparse(e.system.Size())
		e.ComplexSolver = solver.NewSparseComplex(e.system.Size())
	case "dense":
		e.RealSolver = solver.NewDense(e.system.Size())
		e.ComplexSolver = solver.NewDenseComplex(e.system.Size())
	default:
		return fmt.Errorf("engine: unknown solver type %q", name)
	}
	return nil
}

// network bundles the real-valued device list/system/solver for an
// analysis.Network.
func (e *Engine) network() *analysis.Network {
	return &analysis.Network{Devices: e.devices, System: e.system, Solver: e.RealSolver}
}

// RunWithStore solves dir against the circuit at the given temperature
// (Kelvin) and records a result.Run in store, returning its id.
func (e *Engine) RunWithStore(dir circuit.Directive, temp float64, store *result.Store) (int, error) {
	opts := analysis.DefaultOptions()
	net := e.network()

	switch dir.Kind {
	case circuit.DirectiveOp:
		sol, err := analysis.RunOperatingPoint(net, temp, opts)
		run := result.Run{Analysis: result.Op, NodeNames: append([]string(nil), e.Circuit.Nodes...)}
		run.Status = runStatus(err)
		if err != nil {
			run.Message = err.Error()
		} else {
			run.Solution = sol
		}
		return store.Add(run), nil

	case circuit.DirectiveDC:
		points, err := analysis.RunDCSweep(net, dir.DCSource, dir.DCStart, dir.DCStop, dir.DCStep, temp, opts)
		run := result.Run{Analysis: result.Dc, NodeNames: append([]string(nil), e.Circuit.Nodes...), SweepVar: dir.DCSource}
		if err != nil {
			run.Status, run.Message = runStatus(err), err.Error()
			return store.Add(run), nil
		}
		run.Status = result.Converged
		for _, p := range points {
			run.SweepValues = append(run.SweepValues, p.Value)
			run.SweepSolutions = append(run.SweepSolutions, p.Solution)
		}
		return store.Add(run), nil

	case circuit.DirectiveTran:
		topts := analysis.TransientOptions{
			Start: dir.TranStart, Stop: dir.TranStop, Step: dir.TranStep,
			MaxStep: dir.TranMax, UseUIC: dir.UseUIC,
		}
		points, err := analysis.RunTransient(net, topts, opts, temp)
		run := result.Run{Analysis: result.Tran, NodeNames: append([]string(nil), e.Circuit.Nodes...)}
		if err != nil {
			run.Status, run.Message = runStatus(err), err.Error()
			return store.Add(run), nil
		}
		run.Status = result.Converged
		for _, p := range points {
			run.TranTimes = append(run.TranTimes, p.Time)
			run.TranSolutions = append(run.TranSolutions, p.Solution)
		}
		return store.Add(run), nil

	case circuit.DirectiveAC:
		return e.runAC(dir, temp, opts, store)

	default:
		return 0, fmt.Errorf("engine: unsupported directive kind %q", dir.Kind)
	}
}

func (e *Engine) runAC(dir circuit.Directive, temp float64, opts analysis.Options, store *result.Store) (int, error) {
	net := e.network()
	run := result.Run{Analysis: result.Ac, NodeNames: append([]string(nil), e.Circuit.Nodes...)}

	bias, err := analysis.RunOperatingPoint(net, temp, opts)
	if err != nil {
		run.Status, run.Message = runStatus(err), fmt.Errorf("ac bias point: %w", err).Error()
		return store.Add(run), nil
	}

	freqs, err := analysis.GenerateFrequencies(dir.ACSweepType, dir.ACFStart, dir.ACFStop, dir.ACPoints)
	if err != nil {
		run.Status, run.Message = result.Failed, err.Error()
		return store.Add(run), nil
	}

	cplx := mna.NewComplexSystem(e.system.NodeCount, e.system.Ground, e.system.AuxTable())
	cnet := &analysis.ComplexNetwork{Devices: e.devices, System: cplx, Solver: e.ComplexSolver}

	opState := &device.State{Mode: device.OperatingPoint, Temp: temp, Solution: bias}
	points, err := analysis.RunAC(cnet, opState, freqs)
	if err != nil {
		run.Status, run.Message = result.Failed, err.Error()
		return store.Add(run), nil
	}

	run.Status = result.Converged
	for _, p := range points {
		run.ACFrequencies = append(run.ACFrequencies, p.Frequency)
		magRow := make([]float64, len(p.Solution))
		phaseRow := make([]float64, len(p.Solution))
		for i, v := range p.Solution {
			magRow[i] = analysis.MagnitudeDB(v)
			phaseRow[i] = analysis.PhaseDegrees(v)
		}
		run.ACMagDB = append(run.ACMagDB, magRow)
		run.ACPhaseDeg = append(run.ACPhaseDeg, phaseRow)
	}
	return store.Add(run), nil
}

// buildDevices elaborates every instance in ckt into a device.Device,
// resolving node names to dense ids and model-card parameter overrides.
// Independent voltage sources are ordered first so that any CCCS/CCVS
// referencing them by name finds an already-allocated branch aux id during
// the same Newton iteration's stamp pass.
func buildDevices(ckt *circuit.Circuit) ([]device.Device, error) {
	var sources, rest []device.Device

	for _, inst := range ckt.Instances {
		d, err := buildOne(ckt, inst)
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", inst.Name, err)
		}
		if inst.Kind == circuit.VoltageSource {
			sources = append(sources, d)
		} else {
			rest = append(rest, d)
		}
	}
	return append(sources, rest...), nil
}

func buildOne(ckt *circuit.Circuit, inst *circuit.Instance) (device.Device, error) {
	switch inst.Kind {
	case circuit.Resistor:
		v, err := units.Parse(inst.Value)
		if err != nil {
			return nil, err
		}
		d := device.NewResistor(inst.Name, names(ckt, inst), v)
		d.SetNodeIDs(inst.Nodes)
		return d, nil

	case circuit.Capacitor:
		v, err := units.Parse(inst.Value)
		if err != nil {
			return nil, err
		}
		d := device.NewCapacitor(inst.Name, names(ckt, inst), v)
		d.SetNodeIDs(inst.Nodes)
		return d, nil

	case circuit.Inductor:
		v, err := units.Parse(inst.Value)
		if err != nil {
			return nil, err
		}
		d := device.NewInductor(inst.Name, names(ckt, inst), v)
		d.SetNodeIDs(inst.Nodes)
		return d, nil

	case circuit.Diode:
		d := device.NewDiode(inst.Name, names(ckt, inst))
		d.SetNodeIDs(inst.Nodes)
		if inst.Model != "" {
			if card, ok := ckt.Model(inst.Model); ok {
				applyDiodeModel(d, card)
			}
		}
		return d, nil

	case circuit.Mosfet:
		level, pmos := 49, false
		var modelParams map[string]string
		if inst.Model != "" {
			if card, ok := ckt.Model(inst.Model); ok {
				modelParams = card.Params
				pmos = card.Type == "PMOS"
				if lv, ok := card.Params["level"]; ok {
					if n, err := strconv.Atoi(lv); err == nil {
						level = n
					}
				}
			}
		}
		params := bsim.BuildParams(modelParams, level, pmos)
		w, l := 1e-6, 1e-6
		if raw, ok := inst.Params["w"]; ok {
			if v, err := units.Parse(raw); err == nil {
				w = v
			}
		}
		if raw, ok := inst.Params["l"]; ok {
			if v, err := units.Parse(raw); err == nil {
				l = v
			}
		}
		d := device.NewMosfet(inst.Name, names(ckt, inst), params, w, l)
		d.SetNodeIDs(inst.Nodes)
		return d, nil

	case circuit.VoltageSource, circuit.CurrentSource:
		return buildSource(ckt, inst)

	case circuit.VCCS:
		v, err := units.Parse(inst.Value)
		if err != nil {
			return nil, err
		}
		d := device.NewVCCS(inst.Name, names(ckt, inst), v)
		d.SetNodeIDs(inst.Nodes)
		return d, nil

	case circuit.VCVS:
		v, err := units.Parse(inst.Value)
		if err != nil {
			return nil, err
		}
		d := device.NewVCVS(inst.Name, names(ckt, inst), v)
		d.SetNodeIDs(inst.Nodes)
		return d, nil

	case circuit.CCCS:
		v, err := units.Parse(inst.Value)
		if err != nil {
			return nil, err
		}
		d := device.NewCCCS(inst.Name, names(ckt, inst), v, inst.Control)
		d.SetNodeIDs(inst.Nodes)
		return d, nil

	case circuit.CCVS:
		v, err := units.Parse(inst.Value)
		if err != nil {
			return nil, err
		}
		d := device.NewCCVS(inst.Name, names(ckt, inst), v, inst.Control)
		d.SetNodeIDs(inst.Nodes)
		return d, nil

	default:
		return nil, fmt.Errorf("unsupported device kind %q", inst.Kind)
	}
}

func buildSource(ckt *circuit.Circuit, inst *circuit.Instance) (device.Device, error) {
	dc := 0.0
	if inst.Value != "" {
		v, err := units.Parse(inst.Value)
		if err != nil {
			return nil, err
		}
		dc = v
	}

	wave, err := buildWaveform(inst)
	if err != nil {
		return nil, err
	}

	switch inst.Kind {
	case circuit.VoltageSource:
		d := device.NewVoltageSource(inst.Name, names(ckt, inst), dc)
		d.SetNodeIDs(inst.Nodes)
		d.Waveform = wave
		if inst.HasACMag {
			d.HasAC, d.ACMag, d.ACPhase = true, inst.ACMag, inst.ACPhase
		}
		return d, nil
	default:
		d := device.NewCurrentSource(inst.Name, names(ckt, inst), dc)
		d.SetNodeIDs(inst.Nodes)
		d.Waveform = wave
		if inst.HasACMag {
			d.HasAC, d.ACMag, d.ACPhase = true, inst.ACMag, inst.ACPhase
		}
		return d, nil
	}
}

func buildWaveform(inst *circuit.Instance) (device.Waveform, error) {
	kind := inst.Params["waveform"]
	switch kind {
	case "":
		return nil, nil

	case "sin":
		nums, err := parseFloats(inst.Params["sin"])
		if err != nil || len(nums) < 3 {
			return nil, fmt.Errorf("SIN: need offset, amplitude, freq: %v", err)
		}
		w := device.SinWaveform{Offset: nums[0], Amplitude: nums[1], Freq: nums[2]}
		if len(nums) > 3 {
			w.Delay = nums[3]
		}
		if len(nums) > 4 {
			w.PhaseDeg = nums[4]
		}
		return w, nil

	case "pulse":
		nums, err := parseFloats(inst.Params["pulse"])
		if err != nil || len(nums) < 7 {
			return nil, fmt.Errorf("PULSE: need 7 parameters: %v", err)
		}
		return device.PulseWaveform{
			V1: nums[0], V2: nums[1], Delay: nums[2], Rise: nums[3],
			Fall: nums[4], PulseWidth: nums[5], Period: nums[6],
		}, nil

	case "pwl":
		nums, err := parseFloats(inst.Params["pwl"])
		if err != nil || len(nums) < 4 || len(nums)%2 != 0 {
			return nil, fmt.Errorf("PWL: need time-value pairs: %v", err)
		}
		n := len(nums) / 2
		times, values := make([]float64, n), make([]float64, n)
		for i := 0; i < n; i++ {
			times[i], values[i] = nums[2*i], nums[2*i+1]
		}
		return device.PWLWaveform{Times: times, Values: values}, nil

	default:
		return nil, fmt.Errorf("unknown waveform kind %q", kind)
	}
}

func parseFloats(raw string) ([]float64, error) {
	fields := strings.Fields(raw)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := units.Parse(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func applyDiodeModel(d *device.Diode, card circuit.ModelCard) {
	get := func(keys ...string) (float64, bool) {
		for _, k := range keys {
			if raw, ok := card.Params[k]; ok {
				if v, err := units.Parse(raw); err == nil {
					return v, true
				}
			}
		}
		return 0, false
	}
	if v, ok := get("is"); ok {
		d.Is = v
	}
	if v, ok := get("n"); ok {
		d.N = v
	}
	if v, ok := get("rs"); ok {
		d.Rs = v
	}
	if v, ok := get("cjo", "cj0"); ok {
		d.Cj0 = v
	}
	if v, ok := get("m"); ok {
		d.M = v
	}
	if v, ok := get("vj"); ok {
		d.Vj = v
	}
	if v, ok := get("bv"); ok {
		d.Bv = v
	}
}

// names returns an instance's node names by reversing its resolved node
// ids through the circuit's dense name table, for devices that want display
// names for diagnostics.
func names(ckt *circuit.Circuit, inst *circuit.Instance) []string {
	out := make([]string, len(inst.Nodes))
	for i, id := range inst.Nodes {
		out[i] = ckt.NodeName(id)
	}
	return out
}
