package bsim

import "github.com/go-spice/engine/internal/consts"

// Params holds the BSIM3 (level 49) model parameters, grouped exactly as
// original_source/crates/sim-devices/src/bsim/params.rs groups them.
type Params struct {
	Level   int
	MosType MosType

	// Threshold voltage
	Vth0    float64
	K1      float64
	K2      float64
	Dvt0    float64
	Dvt1    float64
	Dvt2    float64
	Eta0    float64
	Dsub    float64
	Nlx     float64
	Nfactor float64

	// Mobility
	U0   float64
	Ua   float64
	Ub   float64
	Uc   float64
	Vsat float64
	A0   float64
	Ags  float64
	Prwg float64
	Prwb float64

	// Short-channel / output conductance
	Pclm    float64
	Pdiblc1 float64
	Pdiblc2 float64
	Pdiblcb float64
	Drout   float64
	Pscbe1  float64
	Pscbe2  float64
	Alpha0  float64
	Beta0   float64

	// Geometry
	Tox  float64
	Lint float64
	Wint float64
	Lmin float64
	Wmin float64

	// Parasitic resistance
	Rdsw float64
	Rsh  float64

	// Temperature
	Tnom float64
	Ute  float64
	Kt1  float64
	Kt1l float64
	Kt2  float64
	At   float64
	Prt  float64

	// Capacitance (Cgso/Cgdo/Cgbo are used by the MOSFET AC stamp; there is
	// no capacitive transient stamp)
	Cgso float64
	Cgdo float64
	Cgbo float64
	Cj   float64
	Cjsw float64
	Pb   float64
	Pbsw float64
	Mj   float64
	Mjsw float64
}

// NMOSDefault mirrors BsimParams::nmos_default.
func NMOSDefault() Params {
	return Params{
		Level:   49,
		MosType: NMOS,

		Vth0: 0.7, K1: 0.5, K2: 0.0,
		Dvt0: 2.2, Dvt1: 0.53, Dvt2: -0.032,
		Eta0: 0.08, Dsub: 0.56, Nlx: 1.74e-7, Nfactor: 1.0,

		U0: 500.0, Ua: 2.25e-9, Ub: 5.87e-19, Uc: -4.65e-11, Vsat: 1.5e5,
		A0: 1.0, Ags: 0.2, Prwg: 0.0, Prwb: 0.0,

		Pclm: 1.3, Pdiblc1: 0.39, Pdiblc2: 0.0086, Pdiblcb: -0.1, Drout: 0.56,
		Pscbe1: 4.24e8, Pscbe2: 1.0e-5, Alpha0: 0.0, Beta0: 30.0,

		Tox: 1.5e-8, Lint: 0.0, Wint: 0.0, Lmin: 0.0, Wmin: 0.0,

		Rdsw: 0.0, Rsh: 0.0,

		Tnom: consts.TNominal, Ute: -1.5, Kt1: -0.11, Kt1l: 0.0, Kt2: 0.022, At: 3.3e4, Prt: 0.0,

		Cgso: 0.0, Cgdo: 0.0, Cgbo: 0.0,
		Cj: 5.0e-4, Cjsw: 5.0e-10, Pb: 1.0, Pbsw: 1.0, Mj: 0.5, Mjsw: 0.33,
	}
}

// PMOSDefault mirrors BsimParams::pmos_default.
func PMOSDefault() Params {
	p := NMOSDefault()
	p.MosType = PMOS
	p.Vth0 = -0.7
	p.U0 = 150.0
	p.Ute = -1.0
	p.Kt1 = -0.08
	return p
}

// Cox is the oxide capacitance per unit area.
func (p Params) Cox() float64 { return consts.EpsilonOxide / p.Tox }

// Leff computes the effective channel length.
func (p Params) Leff(l float64) float64 {
	v := l - 2.0*p.Lint
	if v < 1e-9 {
		return 1e-9
	}
	return v
}

// Weff computes the effective channel width.
func (p Params) Weff(w float64) float64 {
	v := w - 2.0*p.Wint
	if v < 1e-9 {
		return 1e-9
	}
	return v
}

// Vt is the thermal voltage kT/q at the given absolute temperature.
func (p Params) Vt(temp float64) float64 {
	return consts.Boltzmann * temp / consts.Charge
}
