// Package device implements the per-element stamp contract: each circuit
// element contributes its conductance/capacitance terms and RHS/current
// terms to the shared MNA system, the way pkg/matrix's DeviceMatrix devices
// did in the original tree, generalized onto pkg/mna's StampContext.
package device

import "github.com/go-spice/engine/pkg/mna"

// Mode selects which system a device should stamp into.
type Mode int

const (
	OperatingPoint Mode = iota
	Transient
	DCSweep
	ACSmallSignal
)

// State carries the bias point and analysis parameters a device needs to
// compute its stamp: node/aux solution from the last Newton iterate, the
// active Gmin/source-stepping factors, the transient step size, and (for AC)
// the sweep frequency.
type State struct {
	Mode Mode

	Time     float64
	TimeStep float64

	Gmin        float64
	SourceScale float64

	Temp float64

	Frequency float64

	// Solution holds node voltages (index 0..NodeCount-1) followed by aux
	// branch currents (index NodeCount..), from the previous Newton iterate.
	// nil on the very first iterate of a DC solve (devices should treat
	// missing entries as zero bias).
	Solution []float64
}

// NodeVoltage returns the solved voltage at a node id, treating id 0
// (ground) and an empty solution as zero.
func (s *State) NodeVoltage(id int) float64 {
	if id == 0 || s.Solution == nil || id >= len(s.Solution) {
		return 0
	}
	return s.Solution[id]
}

// BranchCurrent returns the solved current for an aux variable allocated at
// auxID (the dense row/col returned by StampContext.AllocateAux).
func (s *State) BranchCurrent(auxID int) float64 {
	if s.Solution == nil || auxID >= len(s.Solution) {
		return 0
	}
	return s.Solution[auxID]
}

// Device is the common stamp contract every element kind implements.
type Device interface {
	Name() string
	Nodes() []int

	// Stamp contributes this device's DC/transient terms into ctx, using s
	// for the current bias point and analysis mode.
	Stamp(ctx *mna.StampContext, s *State) error
}

// ACDevice is implemented by devices with a frequency-domain stamp distinct
// from their DC/transient one (every device in this package implements it;
// the interface exists so callers can stay agnostic of concrete types).
type ACDevice interface {
	StampAC(ctx *mna.ComplexStampContext, s *State) error
}

// NonLinear is implemented by devices whose stamp depends on the previous
// Newton iterate and that need their internal state (diode/BSIM bias point)
// refreshed once an iterate is accepted.
type NonLinear interface {
	UpdateBias(s *State)
}

// Reactive is implemented by devices with internal transient history
// (capacitor charge, inductor flux) that must be advanced once a transient
// step is accepted, and that can report a local truncation error estimate
// for step-size control.
type Reactive interface {
	AdvanceHistory(s *State)
	LocalError(s *State) (value, scale float64)
}

// Base holds the fields common to every device kind.
type Base struct {
	InstName  string
	NodeIDs   []int
	NodeNames []string
}

func (b *Base) Name() string { return b.InstName }
func (b *Base) Nodes() []int { return b.NodeIDs }

// SetNodeIDs installs the dense node ids an elaborator resolved from this
// device's node names; constructors leave NodeIDs zeroed since they don't
// know the circuit's node table.
func (b *Base) SetNodeIDs(ids []int) { b.NodeIDs = ids }

// stampConductance2 is the shared two-terminal conductance pattern used by
// R/D/BSIM's output conductance/etc: adds g between n1 and n2.
func stampConductance2(ctx *mna.StampContext, n1, n2 int, g float64) {
	if n1 != 0 {
		ctx.Add(n1, n1, g)
		if n2 != 0 {
			ctx.Add(n1, n2, -g)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			ctx.Add(n2, n1, -g)
		}
		ctx.Add(n2, n2, g)
	}
}

func stampCurrent2(ctx *mna.StampContext, n1, n2 int, i float64) {
	if n1 != 0 {
		ctx.AddRHS(n1, -i)
	}
	if n2 != 0 {
		ctx.AddRHS(n2, i)
	}
}

func stampComplexConductance2(ctx *mna.ComplexStampContext, n1, n2 int, y complex128) {
	if n1 != 0 {
		ctx.Add(n1, n1, y)
		if n2 != 0 {
			ctx.Add(n1, n2, -y)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			ctx.Add(n2, n1, -y)
		}
		ctx.Add(n2, n2, y)
	}
}
