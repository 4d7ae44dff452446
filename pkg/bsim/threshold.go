package bsim

import (
	"math"

	"github.com/go-spice/engine/internal/consts"
)

// phi0 is the assumed surface potential (2*phiF) used by the body-effect
// term; BSIM3 normally derives it from substrate doping, which this
// reference tree's retrieved parameter set does not carry, so a typical
// nominal value is used instead.
const phi0 = 0.9

// calculateVth implements spec.md §4.4 step 5: body effect + short-channel
// + DIBL + temperature drift, tracking dVth/dVbs analytically.
func calculateVth(p Params, vbs, vds, leff, _ float64, temp float64) (vth, dvthDvbs float64) {
	surface := phi0 - vbs
	if surface < 0.01 {
		surface = 0.01
	}
	body := p.K1*(math.Sqrt(surface)-math.Sqrt(phi0)) - p.K2*vbs
	dBodyDVbs := -p.K1/(2*math.Sqrt(surface)) - p.K2

	charLen := math.Sqrt((consts.EpsilonSilicon / consts.EpsilonOxide) * p.Tox * leff)
	if charLen < 1e-12 {
		charLen = 1e-12
	}

	sce := p.Dvt0 * (1 + p.Dvt2*vbs) * math.Exp(-p.Dvt1*leff/charLen)
	dibl := p.Eta0 * math.Exp(-p.Dsub*leff/charLen) * vds

	tempTerm := (p.Kt1 + p.Kt1l/leff + p.Kt2*vbs) * (temp/p.Tnom - 1)

	vth = p.Vth0 + body - sce - dibl + tempTerm
	dvthDvbs = dBodyDVbs - p.Dvt0*p.Dvt2*math.Exp(-p.Dvt1*leff/charLen) + p.Kt2*(temp/p.Tnom-1)
	return vth, dvthDvbs
}
