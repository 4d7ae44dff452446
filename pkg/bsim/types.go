// Package bsim implements the BSIM3-class (level 49) MOSFET DC model:
// threshold voltage with body effect, short-channel and DIBL corrections,
// mobility degradation, Vdsat, channel-length modulation, and the region
// classification and small-signal derivatives a device stamp needs.
//
// Grounded on original_source/crates/sim-devices/src/bsim (a Rust BSIM3
// implementation the spec this package implements was distilled from); the
// threshold/mobility/channel submodules that evaluate.rs calls into were not
// present in the retrieved reference tree, so their formulas are
// reconstructed here from spec.md's prose description, cross-checked
// against every numeric detail evaluate.rs does show (GMIN clipping,
// subthreshold current shape, the ieq formula, PMOS polarity and
// source/drain-reversal handling).
package bsim

// MosType selects NMOS or PMOS polarity handling.
type MosType int

const (
	NMOS MosType = iota
	PMOS
)

// Region is the MOSFET operating region.
type Region int

const (
	Cutoff Region = iota
	Linear
	Saturation
)

func (r Region) String() string {
	switch r {
	case Cutoff:
		return "cutoff"
	case Linear:
		return "linear"
	case Saturation:
		return "saturation"
	default:
		return "unknown"
	}
}

// Output is the per-bias-point evaluation result consumed by the MOSFET
// device stamp for MNA linearization.
type Output struct {
	Ids    float64 // drain-source current (A)
	Gm     float64 // dIds/dVgs (S)
	Gds    float64 // dIds/dVds (S)
	Gmbs   float64 // dIds/dVbs (S)
	Ieq    float64 // Ids - Gm*Vgs - Gds*Vds - Gmbs*Vbs, in the caller's original frame
	Region Region
	VthEff float64
}

// State is the internal evaluation state, exposed for diagnostics/tests.
type State struct {
	Leff, Weff   float64
	Ueff         float64
	Vdsat        float64
	Vth          float64
	DVthDVbs     float64
	ClmFactor    float64
}
