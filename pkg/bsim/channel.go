package bsim

import "math"

// calculateVdsat implements spec.md §4.4 step 6's saturation-voltage
// calculation via the classic velocity-saturation merge: Vdsat interpolates
// between the long-channel overdrive (Esat*Leff >> Vgst) and the
// velocity-saturated limit Esat*Leff.
func calculateVdsat(p Params, vgs, vth, ueff, leff float64) (vdsat, dvdsatDvgs float64) {
	vgst := vgs - vth
	if vgst < 0 {
		vgst = 0
	}
	ueffM2 := ueff * 1e-4 // cm^2/V/s -> m^2/V/s
	esat := 2 * p.Vsat / ueffM2
	esatL := esat * leff

	denom := esatL + vgst
	if denom < 1e-12 {
		denom = 1e-12
	}
	vdsat = esatL * vgst / denom
	dvdsatDvgs = (esatL * esatL) / (denom * denom)
	return vdsat, dvdsatDvgs
}

// calculateClmFactor implements the channel-length-modulation scaling of
// saturation current and its derivative w.r.t. Vds, per spec.md §4.4 step 6.
func calculateClmFactor(p Params, vds, vdsat, leff, _ float64) (clm, dclmDvds float64) {
	deltaV := vds - vdsat
	if deltaV < 0 {
		deltaV = 0
	}
	scale := p.Pclm * (leff / 1e-6) // Pclm is dimensionless; normalize Leff to microns
	if scale < 1e-6 {
		scale = 1e-6
	}
	clm = 1.0 + deltaV/scale
	dclmDvds = 1.0 / scale
	return clm, dclmDvds
}

// calculateRds implements spec.md §4.4 step 7's source/drain series
// resistance, scaled per unit width and by temperature.
func calculateRds(p Params, weff, temp float64) float64 {
	if p.Rdsw <= 0 {
		return 0
	}
	widthMicrons := weff / 1e-6
	if widthMicrons < 1e-6 {
		widthMicrons = 1e-6
	}
	rds := p.Rdsw / widthMicrons
	rds *= 1 + p.Prt*(temp/p.Tnom-1)
	return math.Max(rds, 0)
}
