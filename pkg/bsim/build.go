package bsim

import (
	"strings"

	"github.com/go-spice/engine/pkg/units"
)

// BuildParams extracts BSIM parameters from a netlist instance's free-form
// parameter map, falling back to the NMOS/PMOS defaults for anything
// unspecified. Mirrors build_bsim_params.
func BuildParams(params map[string]string, level int, pmos bool) Params {
	p := NMOSDefault()
	if pmos {
		p = PMOSDefault()
	}
	p.Level = level

	get := func(keys ...string) (float64, bool) {
		for _, key := range keys {
			if raw, ok := params[strings.ToLower(key)]; ok {
				if v, err := units.Parse(raw); err == nil {
					return v, true
				}
			}
		}
		return 0, false
	}

	assign := func(dst *float64, keys ...string) {
		if v, ok := get(keys...); ok {
			*dst = v
		}
	}

	assign(&p.Vth0, "vth0", "vto", "vth")
	assign(&p.K1, "k1")
	assign(&p.K2, "k2")
	assign(&p.Dvt0, "dvt0")
	assign(&p.Dvt1, "dvt1")
	assign(&p.Dvt2, "dvt2")
	assign(&p.Eta0, "eta0")
	assign(&p.Dsub, "dsub")
	assign(&p.Nlx, "nlx")
	assign(&p.Nfactor, "nfactor")

	assign(&p.U0, "u0", "uo")
	assign(&p.Ua, "ua")
	assign(&p.Ub, "ub")
	assign(&p.Uc, "uc")
	assign(&p.Vsat, "vsat")
	assign(&p.A0, "a0")
	assign(&p.Ags, "ags")

	assign(&p.Pclm, "pclm")
	assign(&p.Pdiblc1, "pdiblc1")
	assign(&p.Pdiblc2, "pdiblc2")
	assign(&p.Pdiblcb, "pdiblcb")
	assign(&p.Drout, "drout")

	assign(&p.Tox, "tox")
	assign(&p.Lint, "lint")
	assign(&p.Wint, "wint")

	assign(&p.Rdsw, "rdsw")
	assign(&p.Rsh, "rsh")

	if v, ok := get("tnom"); ok {
		p.Tnom = v + 273.15
	}
	assign(&p.Ute, "ute")
	assign(&p.Kt1, "kt1")
	assign(&p.Kt1l, "kt1l")
	assign(&p.Kt2, "kt2")

	assign(&p.Cgso, "cgso")
	assign(&p.Cgdo, "cgdo")
	assign(&p.Cgbo, "cgbo")

	return p
}
