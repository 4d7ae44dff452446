package bsim

import "math"

// calculateMobility implements spec.md §4.4 step 6's mobility calculation:
// U0 degraded by the vertical field (Ua linear, Ub quadratic) and body bias
// (Uc), temperature-scaled by (T/Tnom)^Ute.
func calculateMobility(p Params, vgs, vbs, vth, leff, temp float64) float64 {
	_ = leff
	vgst := vgs - vth
	if vgst < 0 {
		vgst = 0
	}
	eeff := (vgst + 2*vth) / (6 * p.Tox)
	if eeff < 0 {
		eeff = 0
	}

	denom := 1 + (p.Ua+p.Uc*vbs)*eeff + p.Ub*eeff*eeff
	if denom < 0.1 {
		denom = 0.1
	}

	ueff := p.U0 / denom
	ueff *= math.Pow(temp/p.Tnom, p.Ute)
	if ueff < 1.0 {
		ueff = 1.0
	}
	return ueff
}
