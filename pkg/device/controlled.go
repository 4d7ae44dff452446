package device

import "github.com/go-spice/engine/pkg/mna"

// VCCS implements a voltage-controlled current source (kind G): the output
// current between out+/out- is Gain*(Vctrl+ - Vctrl-), stamped as a linear
// transconductance with no auxiliary unknown.
type VCCS struct {
	Base
	Gain float64
}

// NewVCCS takes nodeNames in [out+, out-, ctrl+, ctrl-] order.
func NewVCCS(name string, nodeNames []string, gain float64) *VCCS {
	return &VCCS{Base: Base{InstName: name, NodeIDs: make([]int, len(nodeNames)), NodeNames: nodeNames}, Gain: gain}
}

func (g *VCCS) outPos() int  { return g.NodeIDs[0] }
func (g *VCCS) outNeg() int  { return g.NodeIDs[1] }
func (g *VCCS) ctrlPos() int { return g.NodeIDs[2] }
func (g *VCCS) ctrlNeg() int { return g.NodeIDs[3] }

func (g *VCCS) stampTransconductance(add func(row, col int, value float64)) {
	op, on, cp, cn := g.outPos(), g.outNeg(), g.ctrlPos(), g.ctrlNeg()
	if op != 0 {
		if cp != 0 {
			add(op, cp, g.Gain)
		}
		if cn != 0 {
			add(op, cn, -g.Gain)
		}
	}
	if on != 0 {
		if cp != 0 {
			add(on, cp, -g.Gain)
		}
		if cn != 0 {
			add(on, cn, g.Gain)
		}
	}
}

func (g *VCCS) Stamp(ctx *mna.StampContext, s *State) error {
	g.stampTransconductance(ctx.Add)
	return nil
}

func (g *VCCS) StampAC(ctx *mna.ComplexStampContext, s *State) error {
	g.stampTransconductance(func(row, col int, value float64) { ctx.Add(row, col, complex(value, 0)) })
	return nil
}

// VCVS implements a voltage-controlled voltage source (kind E): an
// auxiliary branch current enforces Vout+ - Vout- = Gain*(Vctrl+ - Vctrl-).
type VCVS struct {
	Base
	Gain  float64
	auxID int
}

// NewVCVS takes nodeNames in [out+, out-, ctrl+, ctrl-] order.
func NewVCVS(name string, nodeNames []string, gain float64) *VCVS {
	return &VCVS{Base: Base{InstName: name, NodeIDs: make([]int, len(nodeNames)), NodeNames: nodeNames}, Gain: gain}
}

func (e *VCVS) outPos() int  { return e.NodeIDs[0] }
func (e *VCVS) outNeg() int  { return e.NodeIDs[1] }
func (e *VCVS) ctrlPos() int { return e.NodeIDs[2] }
func (e *VCVS) ctrlNeg() int { return e.NodeIDs[3] }

func (e *VCVS) Stamp(ctx *mna.StampContext, s *State) error {
	op, on, cp, cn := e.outPos(), e.outNeg(), e.ctrlPos(), e.ctrlNeg()
	e.auxID = ctx.AllocateAux("E:" + e.InstName)

	if op != 0 {
		ctx.Add(op, e.auxID, 1)
		ctx.Add(e.auxID, op, 1)
	}
	if on != 0 {
		ctx.Add(on, e.auxID, -1)
		ctx.Add(e.auxID, on, -1)
	}
	if cp != 0 {
		ctx.Add(e.auxID, cp, -e.Gain)
	}
	if cn != 0 {
		ctx.Add(e.auxID, cn, e.Gain)
	}
	return nil
}

func (e *VCVS) StampAC(ctx *mna.ComplexStampContext, s *State) error {
	op, on, cp, cn := e.outPos(), e.outNeg(), e.ctrlPos(), e.ctrlNeg()
	auxID, ok := ctx.AuxID("E:" + e.InstName)
	if !ok {
		return nil
	}
	if op != 0 {
		ctx.Add(op, auxID, 1)
		ctx.Add(auxID, op, 1)
	}
	if on != 0 {
		ctx.Add(on, auxID, -1)
		ctx.Add(auxID, on, -1)
	}
	if cp != 0 {
		ctx.Add(auxID, cp, complex(-e.Gain, 0))
	}
	if cn != 0 {
		ctx.Add(auxID, cn, complex(e.Gain, 0))
	}
	return nil
}

// CCCS implements a current-controlled current source (kind F): the output
// current is Gain times the branch current of a named controlling voltage
// source, which must already have allocated its aux branch.
type CCCS struct {
	Base
	Gain       float64
	ControlRef string // "V:<name>" aux key of the controlling branch
}

func NewCCCS(name string, nodeNames []string, gain float64, controlName string) *CCCS {
	return &CCCS{
		Base:       Base{InstName: name, NodeIDs: make([]int, len(nodeNames)), NodeNames: nodeNames},
		Gain:       gain,
		ControlRef: "V:" + controlName,
	}
}

func (f *CCCS) outPos() int { return f.NodeIDs[0] }
func (f *CCCS) outNeg() int { return f.NodeIDs[1] }

func (f *CCCS) Stamp(ctx *mna.StampContext, s *State) error {
	ctrlID, ok := ctx.AuxID(f.ControlRef)
	if !ok {
		return nil
	}
	op, on := f.outPos(), f.outNeg()
	if op != 0 {
		ctx.Add(op, ctrlID, f.Gain)
	}
	if on != 0 {
		ctx.Add(on, ctrlID, -f.Gain)
	}
	return nil
}

func (f *CCCS) StampAC(ctx *mna.ComplexStampContext, s *State) error {
	ctrlID, ok := ctx.AuxID(f.ControlRef)
	if !ok {
		return nil
	}
	op, on := f.outPos(), f.outNeg()
	if op != 0 {
		ctx.Add(op, ctrlID, complex(f.Gain, 0))
	}
	if on != 0 {
		ctx.Add(on, ctrlID, complex(-f.Gain, 0))
	}
	return nil
}

// CCVS implements a current-controlled voltage source (kind H): an
// auxiliary branch current enforces Vout+ - Vout- = Gain*Ictrl, where Ictrl
// is the controlling voltage source's branch current.
type CCVS struct {
	Base
	Gain       float64
	ControlRef string
	auxID      int
}

func NewCCVS(name string, nodeNames []string, gain float64, controlName string) *CCVS {
	return &CCVS{
		Base:       Base{InstName: name, NodeIDs: make([]int, len(nodeNames)), NodeNames: nodeNames},
		Gain:       gain,
		ControlRef: "V:" + controlName,
	}
}

func (h *CCVS) outPos() int { return h.NodeIDs[0] }
func (h *CCVS) outNeg() int { return h.NodeIDs[1] }

func (h *CCVS) Stamp(ctx *mna.StampContext, s *State) error {
	ctrlID, ok := ctx.AuxID(h.ControlRef)
	if !ok {
		return nil
	}
	op, on := h.outPos(), h.outNeg()
	h.auxID = ctx.AllocateAux("H:" + h.InstName)

	if op != 0 {
		ctx.Add(op, h.auxID, 1)
		ctx.Add(h.auxID, op, 1)
	}
	if on != 0 {
		ctx.Add(on, h.auxID, -1)
		ctx.Add(h.auxID, on, -1)
	}
	ctx.Add(h.auxID, ctrlID, -h.Gain)
	return nil
}

func (h *CCVS) StampAC(ctx *mna.ComplexStampContext, s *State) error {
	ctrlID, ok := ctx.AuxID(h.ControlRef)
	if !ok {
		return nil
	}
	auxID, ok := ctx.AuxID("H:" + h.InstName)
	if !ok {
		return nil
	}
	op, on := h.outPos(), h.outNeg()
	if op != 0 {
		ctx.Add(op, auxID, 1)
		ctx.Add(auxID, op, 1)
	}
	if on != 0 {
		ctx.Add(on, auxID, -1)
		ctx.Add(auxID, on, -1)
	}
	ctx.Add(auxID, ctrlID, complex(-h.Gain, 0))
	return nil
}
