package device

import (
	"math"

	"github.com/go-spice/engine/internal/consts"
	"github.com/go-spice/engine/pkg/mna"
)

// Diode implements spec.md §4.5: a Shockley-equation nonlinear element,
// linearized at every Newton iterate by its conductance and equivalent
// current, with a junction-capacitance admittance for AC.
type Diode struct {
	Base

	Is   float64
	N    float64
	Rs   float64
	Cj0  float64
	M    float64
	Vj   float64
	Bv   float64
	Gmin float64

	vd, vdPrev float64
	id, gd     float64
}

func NewDiode(name string, nodeNames []string) *Diode {
	return &Diode{
		Base: Base{InstName: name, NodeIDs: make([]int, len(nodeNames)), NodeNames: nodeNames},
		Is:   1e-14,
		N:    1.0,
		M:    0.5,
		Vj:   1.0,
		Bv:   100.0,
		Gmin: 1e-12,
	}
}

func (d *Diode) thermalVoltage(temp float64) float64 {
	if temp <= 0 {
		temp = consts.TNominal
	}
	return consts.Boltzmann * temp / consts.Charge
}

func (d *Diode) current(vd, vt float64) float64 {
	switch {
	case vd >= -5*vt:
		arg := vd / (d.N * vt)
		if arg > 40 {
			arg = 40
		}
		return d.Is * (math.Exp(arg) - 1)
	case vd < -d.Bv:
		return -d.Is * (1 + (vd+d.Bv)/vt)
	default:
		return -d.Is
	}
}

func (d *Diode) conductance(vd, id, vt float64) float64 {
	switch {
	case vd >= -5*vt:
		return (id+d.Is)/(d.N*vt) + d.Gmin
	case vd < -d.Bv:
		return d.Is/vt + d.Gmin
	default:
		return d.Gmin
	}
}

func (d *Diode) junctionCap() float64 {
	if d.Cj0 == 0 {
		return 0
	}
	if d.vd < 0 {
		arg := 1 - d.vd/d.Vj
		if arg < 0.1 {
			arg = 0.1
		}
		return d.Cj0 / math.Pow(arg, d.M)
	}
	return d.Cj0 * (1 + d.M*d.vd/d.Vj)
}

// UpdateBias recomputes the diode's linearization point from the previous
// Newton iterate's node solution, ahead of this iterate's Stamp call.
func (d *Diode) UpdateBias(s *State) {
	n1, n2 := d.NodeIDs[0], d.NodeIDs[1]
	d.vdPrev = d.vd
	d.vd = s.NodeVoltage(n1) - s.NodeVoltage(n2)
}

func (d *Diode) Stamp(ctx *mna.StampContext, s *State) error {
	n1, n2 := d.NodeIDs[0], d.NodeIDs[1]
	vt := d.thermalVoltage(s.Temp)

	d.id = d.current(d.vd, vt)
	d.gd = d.conductance(d.vd, d.id, vt)

	stampConductance2(ctx, n1, n2, d.gd)
	stampCurrent2(ctx, n1, n2, d.id-d.gd*d.vd)
	return nil
}

func (d *Diode) StampAC(ctx *mna.ComplexStampContext, s *State) error {
	omega := 2 * math.Pi * s.Frequency
	y := complex(d.gd, omega*d.junctionCap())
	stampComplexConductance2(ctx, d.NodeIDs[0], d.NodeIDs[1], y)
	return nil
}
