package device

import (
	"math"

	"github.com/go-spice/engine/pkg/mna"
)

// VoltageSource implements spec.md §4.3: an independent voltage source
// realized via an auxiliary branch-current unknown, scaled by
// State.SourceScale during source stepping.
type VoltageSource struct {
	Base
	DCValue  float64
	Waveform Waveform
	HasAC    bool
	ACMag    float64
	ACPhase  float64

	auxID int
}

func NewVoltageSource(name string, nodeNames []string, dcValue float64) *VoltageSource {
	return &VoltageSource{
		Base:    Base{InstName: name, NodeIDs: make([]int, len(nodeNames)), NodeNames: nodeNames},
		DCValue: dcValue,
	}
}

func (v *VoltageSource) valueAt(s *State) float64 {
	value := v.DCValue
	if s.Mode == Transient && v.Waveform != nil {
		value = v.Waveform.At(s.Time)
	}
	return value * s.SourceScale
}

func (v *VoltageSource) Stamp(ctx *mna.StampContext, s *State) error {
	n1, n2 := v.NodeIDs[0], v.NodeIDs[1]
	v.auxID = ctx.AllocateAux("V:" + v.InstName)

	if n1 != 0 {
		ctx.Add(v.auxID, n1, 1)
		ctx.Add(n1, v.auxID, 1)
	}
	if n2 != 0 {
		ctx.Add(v.auxID, n2, -1)
		ctx.Add(n2, v.auxID, -1)
	}
	ctx.AddRHS(v.auxID, v.valueAt(s))
	return nil
}

func (v *VoltageSource) StampAC(ctx *mna.ComplexStampContext, s *State) error {
	auxID, ok := ctx.AuxID("V:" + v.InstName)
	if !ok {
		return nil
	}
	n1, n2 := v.NodeIDs[0], v.NodeIDs[1]
	if n1 != 0 {
		ctx.Add(auxID, n1, 1)
		ctx.Add(n1, auxID, 1)
	}
	if n2 != 0 {
		ctx.Add(auxID, n2, -1)
		ctx.Add(n2, auxID, -1)
	}

	phaseRad := v.ACPhase * math.Pi / 180.0
	ctx.AddRHS(auxID, complex(v.ACMag*math.Cos(phaseRad), v.ACMag*math.Sin(phaseRad)))
	return nil
}

// BranchCurrent returns the solved current through this source (positive
// flowing from n1 to n2 inside the source).
func (v *VoltageSource) BranchCurrent(s *State) float64 {
	return s.BranchCurrent(v.auxID)
}
