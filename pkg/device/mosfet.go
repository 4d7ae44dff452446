package device

import (
	"math"

	"github.com/go-spice/engine/pkg/bsim"
	"github.com/go-spice/engine/pkg/mna"
)

// Mosfet implements spec.md §4.4: a BSIM3-class (or level-1 fallback)
// four-terminal nonlinear device, linearized at every Newton iterate via
// pkg/bsim's DC evaluation.
type Mosfet struct {
	Base

	Params bsim.Params
	W, L   float64

	out bsim.Output
}

func NewMosfet(name string, nodeNames []string, params bsim.Params, w, l float64) *Mosfet {
	return &Mosfet{
		Base:   Base{InstName: name, NodeIDs: make([]int, len(nodeNames)), NodeNames: nodeNames},
		Params: params,
		W:      w,
		L:      l,
	}
}

// drain, gate, source, body node accessors (spec.md §4.4's node order).
func (m *Mosfet) drain() int { return m.NodeIDs[0] }
func (m *Mosfet) gate() int  { return m.NodeIDs[1] }
func (m *Mosfet) source() int { return m.NodeIDs[2] }
func (m *Mosfet) body() int  { return m.NodeIDs[3] }

// UpdateBias re-evaluates the BSIM/level-1 model at the previous Newton
// iterate's node solution.
func (m *Mosfet) UpdateBias(s *State) {
	vd := s.NodeVoltage(m.drain())
	vg := s.NodeVoltage(m.gate())
	vs := s.NodeVoltage(m.source())
	vb := s.NodeVoltage(m.body())
	temp := s.Temp
	if temp <= 0 {
		temp = m.Params.Tnom
	}
	m.out = bsim.EvaluateMOS(m.Params, m.W, m.L, vd, vg, vs, vb, temp)
}

func (m *Mosfet) Stamp(ctx *mna.StampContext, s *State) error {
	d, g, src, b := m.drain(), m.gate(), m.source(), m.body()
	gm, gds, gmbs, ieq := m.out.Gm, m.out.Gds, m.out.Gmbs, m.out.Ieq

	if math.Abs(gmbs) <= 0.01*s.Gmin {
		gmbs = 0
	}

	rows := [2]struct {
		node int
		sign float64
	}{{d, 1}, {src, -1}}
	cols := [3]struct {
		node  int
		coeff float64
	}{{d, gds}, {g, gm}, {b, gmbs}}

	for _, r := range rows {
		if r.node == 0 {
			continue
		}
		for _, c := range cols {
			if c.node == 0 {
				continue
			}
			ctx.Add(r.node, c.node, r.sign*c.coeff)
		}
		if src != 0 {
			ctx.Add(r.node, src, -r.sign*(gds+gm+gmbs))
		}
		ctx.AddRHS(r.node, -r.sign*ieq)
	}
	return nil
}

func (m *Mosfet) StampAC(ctx *mna.ComplexStampContext, s *State) error {
	d, g, src, b := m.drain(), m.gate(), m.source(), m.body()
	gm, gds, gmbs := complex(m.out.Gm, 0), complex(m.out.Gds, 0), complex(m.out.Gmbs, 0)

	rows := [2]struct {
		node int
		sign complex128
	}{{d, 1}, {src, -1}}
	for _, r := range rows {
		if r.node == 0 {
			continue
		}
		if d != 0 {
			ctx.Add(r.node, d, r.sign*gds)
		}
		if g != 0 {
			ctx.Add(r.node, g, r.sign*gm)
		}
		if b != 0 {
			ctx.Add(r.node, b, r.sign*gmbs)
		}
		if src != 0 {
			ctx.Add(r.node, src, -r.sign*(gds+gm+gmbs))
		}
	}

	omega := 2 * math.Pi * s.Frequency
	cgs := complex(0, omega*m.Params.Cgso*m.W)
	cgd := complex(0, omega*m.Params.Cgdo*m.W)
	cgb := complex(0, omega*m.Params.Cgbo*m.L)

	stampComplexConductance2(ctx, g, src, cgs)
	stampComplexConductance2(ctx, g, d, cgd)
	stampComplexConductance2(ctx, g, b, cgb)
	return nil
}

// Region reports the BSIM operating region from the last evaluated bias.
func (m *Mosfet) Region() bsim.Region { return m.out.Region }
