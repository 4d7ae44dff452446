package device

import (
	"math"

	"github.com/go-spice/engine/pkg/mna"
)

// CurrentSource implements spec.md §4.2: an independent current source whose
// value is scaled by State.SourceScale during source stepping.
type CurrentSource struct {
	Base
	DCValue  float64
	Waveform Waveform
	HasAC    bool
	ACMag    float64
	ACPhase  float64
}

func NewCurrentSource(name string, nodeNames []string, dcValue float64) *CurrentSource {
	return &CurrentSource{
		Base:    Base{InstName: name, NodeIDs: make([]int, len(nodeNames)), NodeNames: nodeNames},
		DCValue: dcValue,
	}
}

func (i *CurrentSource) Stamp(ctx *mna.StampContext, s *State) error {
	value := i.DCValue
	if s.Mode == Transient && i.Waveform != nil {
		value = i.Waveform.At(s.Time)
	}
	current := value * s.SourceScale
	stampCurrent2(ctx, i.NodeIDs[0], i.NodeIDs[1], current)
	return nil
}

func (i *CurrentSource) StampAC(ctx *mna.ComplexStampContext, s *State) error {
	phaseRad := i.ACPhase * math.Pi / 180.0
	y := complex(i.ACMag*math.Cos(phaseRad), i.ACMag*math.Sin(phaseRad))
	n1, n2 := i.NodeIDs[0], i.NodeIDs[1]
	if n1 != 0 {
		ctx.AddRHS(n1, -y)
	}
	if n2 != 0 {
		ctx.AddRHS(n2, y)
	}
	return nil
}
