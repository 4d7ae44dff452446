package device

import (
	"fmt"

	"github.com/go-spice/engine/pkg/mna"
)

// Resistor implements spec.md §4.1: a temperature-adjusted linear
// conductance between two nodes.
type Resistor struct {
	Base
	Value float64
	Tc1   float64
	Tc2   float64
	Tnom  float64
}

func NewResistor(name string, nodeNames []string, value float64) *Resistor {
	return &Resistor{
		Base:  Base{InstName: name, NodeIDs: make([]int, len(nodeNames)), NodeNames: nodeNames},
		Value: value,
		Tnom:  300.15,
	}
}

func (r *Resistor) temperatureAdjusted(temp float64) float64 {
	if temp <= 0 {
		temp = r.Tnom
	}
	dt := temp - r.Tnom
	return r.Value * (1.0 + r.Tc1*dt + r.Tc2*dt*dt)
}

func (r *Resistor) Stamp(ctx *mna.StampContext, s *State) error {
	if len(r.NodeIDs) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.InstName)
	}
	g := 1.0 / r.temperatureAdjusted(s.Temp)
	stampConductance2(ctx, r.NodeIDs[0], r.NodeIDs[1], g)
	return nil
}

func (r *Resistor) StampAC(ctx *mna.ComplexStampContext, s *State) error {
	g := 1.0 / r.temperatureAdjusted(s.Temp)
	stampComplexConductance2(ctx, r.NodeIDs[0], r.NodeIDs[1], complex(g, 0))
	return nil
}
