package bsim

import "math"

// gmin is the lower clamp on gds in every region (and, scaled by 0.01, on gm
// in cutoff), matching evaluate.rs's GMIN constant.
const gmin = 1e-12

// Evaluate implements spec.md §4.4's full BSIM3-class (level 49) DC
// algorithm, grounded on
// original_source/crates/sim-devices/src/bsim/evaluate.rs's
// evaluate_bsim_dc.
func Evaluate(p Params, w, l, vd, vg, vs, vb, temp float64) Output {
	// Step 1: polarity.
	vdInt, vgInt, vsInt, vbInt, sign := vd, vg, vs, vb, 1.0
	if p.MosType == PMOS {
		vdInt, vgInt, vsInt, vbInt, sign = -vs, -vg, -vd, -vb, -1.0
	}

	vgs := vgInt - vsInt
	vds := vdInt - vsInt
	vbs := vbInt - vsInt

	// Step 2: source/drain reversal.
	reversed := vds < 0
	if reversed {
		vds = -vds
		vgs = vgInt - vdInt
	}

	// Step 3-4: geometry, Cox, thermal voltage.
	leff := p.Leff(l)
	weff := p.Weff(w)
	cox := p.Cox()
	vt := p.Vt(temp)

	// Step 5: threshold voltage.
	vth, dvthDvbs := calculateVth(p, vbs, vds, leff, weff, temp)
	vgst := vgs - vth

	var region Region
	var ids, gm, gds, gmbs float64

	if vgst <= 0 {
		// Step 6, cutoff branch: subthreshold current.
		region = Cutoff
		n := math.Max(p.Nfactor, 1.0)
		i0 := weff / leff * p.U0 * 1e-4 * cox * vt * vt * (n - 1.0)

		expVgst := math.Exp(vgst / (n * vt))
		expVds := math.Exp(-vds / vt)

		ids = i0 * expVgst * (1.0 - expVds)
		ids = math.Max(ids, 0)

		gm = ids / (n * vt)
		gds = i0 * expVgst * expVds / vt
		gmbs = -gm * dvthDvbs

		gds = math.Max(gds, gmin)
		gm = math.Max(gm, gmin*0.01)
	} else {
		ueff := calculateMobility(p, vgs, vbs, vth, leff, temp)
		vdsat, dvdsatDvgs := calculateVdsat(p, vgs, vth, ueff, leff)

		ueffM2 := ueff * 1e-4
		beta := weff / leff * ueffM2 * cox

		if vds < vdsat {
			region = Linear
			ids = beta * (vgst*vds - 0.5*vds*vds)
			gm = beta * vds
			gds = math.Max(beta*(vgst-vds), gmin)
			gmbs = -gm * dvthDvbs
		} else {
			region = Saturation
			clmFactor, dclmDvds := calculateClmFactor(p, vds, vdsat, leff, ueff)

			idsSat := 0.5 * beta * vdsat * vdsat
			ids = idsSat * clmFactor

			gm = beta * vdsat * dvdsatDvgs * clmFactor
			gds = math.Max(idsSat*dclmDvds, gmin)

			gdsDibl := gm * p.Eta0
			gds += gdsDibl

			gmbs = -gm * dvthDvbs
		}
	}

	ids = math.Max(ids, 0)

	// Step 7: series resistance.
	rds := calculateRds(p, weff, temp)
	if rds > 0 && ids > 0 {
		vRds := ids * rds
		if vRds < vds*0.5 {
			gds = gds / (1.0 + rds*gds)
		}
	}

	ids *= sign

	// Step 8: equivalent current in the caller's original frame.
	vgsOrig := vg - vs
	vdsOrig := vd - vs
	vbsOrig := vb - vs
	ieq := ids - gm*vgsOrig - gds*vdsOrig - gmbs*vbsOrig

	return Output{
		Ids:    ids,
		Gm:     gm,
		Gds:    gds,
		Gmbs:   gmbs,
		Ieq:    ieq,
		Region: region,
		VthEff: vth,
	}
}

// EvaluateLevel1 implements the Level-1 Shichman-Hodges fallback model,
// mirroring evaluate_level1_dc: no body effect on current, constant lambda.
func EvaluateLevel1(vth0, beta, lambda, w, l, vd, vg, vs, _ float64, pmos bool) Output {
	vdInt, vgInt, vsInt, sign := vd, vg, vs, 1.0
	if pmos {
		vdInt, vgInt, vsInt, sign = -vs, -vg, -vd, -1.0
	}

	vgs := vgInt - vsInt
	vds := vdInt - vsInt
	if vds < 0 {
		vds = -vds
		vgs = vgInt - vdInt
	}

	vth := math.Abs(vth0)
	if pmos {
		vth = -vth
	}
	betaEff := beta * w / l

	var region Region
	var ids, gm, gds float64

	switch {
	case vgs <= vth:
		region = Cutoff
		gds = gmin
	case vds < vgs-vth:
		region = Linear
		ids = betaEff * ((vgs-vth)*vds - 0.5*vds*vds)
		gm = betaEff * vds
		gds = math.Max(betaEff*((vgs-vth)-vds), gmin)
	default:
		region = Saturation
		ids = 0.5 * betaEff * (vgs-vth)*(vgs-vth) * (1.0 + lambda*vds)
		gm = betaEff * (vgs - vth) * (1.0 + lambda*vds)
		gds = math.Max(0.5*betaEff*(vgs-vth)*(vgs-vth)*lambda, gmin)
	}

	idsSigned := ids * sign

	vgsOrig := vg - vs
	vdsOrig := vd - vs
	ieq := idsSigned - gm*vgsOrig - gds*vdsOrig

	return Output{
		Ids:    idsSigned,
		Gm:     gm,
		Gds:    gds,
		Gmbs:   0,
		Ieq:    ieq,
		Region: region,
		VthEff: vth,
	}
}

// EvaluateMOS routes to the appropriate model by Params.Level, mirroring
// evaluate_mos: level 1 uses the Shichman-Hodges fallback, everything else
// (49, 54, unknown) uses the full BSIM3 evaluation.
func EvaluateMOS(p Params, w, l, vd, vg, vs, vb, temp float64) Output {
	if p.Level == 1 {
		lambda := 0.02
		beta := p.U0 * 1e-4 * p.Cox()
		return EvaluateLevel1(p.Vth0, beta, lambda, w, l, vd, vg, vs, vb, p.MosType == PMOS)
	}
	return Evaluate(p, w, l, vd, vg, vs, vb, temp)
}
