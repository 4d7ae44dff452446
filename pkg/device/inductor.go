package device

import (
	"math"

	"github.com/go-spice/engine/pkg/mna"
	"github.com/go-spice/engine/pkg/util"
)

// Inductor implements spec.md §4.7: a branch-current unknown with a
// backward-Euler companion resistance/history source during transient
// analysis, a near-short Gmin-scaled branch at the operating point, and a
// jωL impedance for AC.
type Inductor struct {
	Base
	Value float64

	current, currentPrev float64
	voltage, voltagePrev float64

	auxID int
}

func NewInductor(name string, nodeNames []string, value float64) *Inductor {
	return &Inductor{
		Base:  Base{InstName: name, NodeIDs: make([]int, len(nodeNames)), NodeNames: nodeNames},
		Value: value,
	}
}

func (l *Inductor) Stamp(ctx *mna.StampContext, s *State) error {
	n1, n2 := l.NodeIDs[0], l.NodeIDs[1]
	l.auxID = ctx.AllocateAux("L:" + l.InstName)

	if n1 != 0 {
		ctx.Add(n1, l.auxID, 1)
		ctx.Add(l.auxID, n1, 1)
	}
	if n2 != 0 {
		ctx.Add(n2, l.auxID, -1)
		ctx.Add(l.auxID, n2, -1)
	}

	switch s.Mode {
	case Transient:
		dt := s.TimeStep
		if dt <= 0 {
			dt = 1e-9
		}
		req := l.Value * util.GetIntegratorCoeffs(util.GearMethod, 1, dt)[0]
		ctx.Add(l.auxID, l.auxID, -req)
		ctx.AddRHS(l.auxID, -req*l.current)
	default:
		gmin := math.Max(s.Gmin, 1e-12)
		ctx.Add(l.auxID, l.auxID, -gmin)
	}
	return nil
}

func (l *Inductor) StampAC(ctx *mna.ComplexStampContext, s *State) error {
	n1, n2 := l.NodeIDs[0], l.NodeIDs[1]
	auxID, ok := ctx.AuxID("L:" + l.InstName)
	if !ok {
		return nil
	}
	if n1 != 0 {
		ctx.Add(n1, auxID, 1)
		ctx.Add(auxID, n1, 1)
	}
	if n2 != 0 {
		ctx.Add(n2, auxID, -1)
		ctx.Add(auxID, n2, -1)
	}
	omega := 2 * math.Pi * s.Frequency
	ctx.Add(auxID, auxID, complex(0, -omega*l.Value))
	return nil
}

// AdvanceHistory records the branch current/voltage once a transient step is
// accepted.
func (l *Inductor) AdvanceHistory(s *State) {
	n1, n2 := l.NodeIDs[0], l.NodeIDs[1]
	l.voltagePrev = l.voltage
	l.voltage = s.NodeVoltage(n1) - s.NodeVoltage(n2)

	l.currentPrev = l.current
	l.current = s.BranchCurrent(l.auxID)
}

// LocalError returns the branch-current change and a tolerance scale.
func (l *Inductor) LocalError(s *State) (value, scale float64) {
	return math.Abs(l.current - l.currentPrev), math.Max(math.Abs(l.current), math.Abs(l.currentPrev))
}

// BranchCurrent returns the solved inductor current.
func (l *Inductor) BranchCurrent(s *State) float64 { return s.BranchCurrent(l.auxID) }
