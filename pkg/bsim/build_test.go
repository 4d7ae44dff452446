package bsim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-spice/engine/pkg/bsim"
)

func TestBuildParams_DefaultsToNMOSWhenNoOverrides(t *testing.T) {
	p := bsim.BuildParams(map[string]string{}, 49, false)
	want := bsim.NMOSDefault()
	assert.Equal(t, want.Vth0, p.Vth0)
	assert.Equal(t, want.U0, p.U0)
	assert.Equal(t, 49, p.Level)
}

func TestBuildParams_PMOSDefaults(t *testing.T) {
	p := bsim.BuildParams(map[string]string{}, 49, true)
	assert.InDelta(t, -0.7, p.Vth0, 1e-12)
	assert.InDelta(t, 150.0, p.U0, 1e-12)
}

func TestBuildParams_OverridesApplyAndAcceptAliases(t *testing.T) {
	params := map[string]string{
		"vto": "0.9",
		"u0":  "450",
		"tox": "2n",
	}
	p := bsim.BuildParams(params, 49, false)
	assert.InDelta(t, 0.9, p.Vth0, 1e-12, "vto is an alias for vth0")
	assert.InDelta(t, 450.0, p.U0, 1e-12)
	assert.InDelta(t, 2e-9, p.Tox, 1e-15, "tox carries an SI suffix")
}

func TestBuildParams_TnomConvertsCelsiusToKelvin(t *testing.T) {
	p := bsim.BuildParams(map[string]string{"tnom": "27"}, 49, false)
	assert.InDelta(t, 300.15, p.Tnom, 1e-9)
}

func TestBuildParams_UnknownKeysAreIgnored(t *testing.T) {
	p := bsim.BuildParams(map[string]string{"bogus": "1"}, 49, false)
	assert.Equal(t, bsim.NMOSDefault().Vth0, p.Vth0)
}

func TestParams_EffectiveGeometryFloorsAtOneNanometer(t *testing.T) {
	p := bsim.NMOSDefault()
	p.Lint = 1.0
	assert.InDelta(t, 1e-9, p.Leff(0.5e-6), 1e-15, "oversized Lint must floor, not go negative")
}

func TestParams_Cox(t *testing.T) {
	p := bsim.NMOSDefault()
	assert.Greater(t, p.Cox(), 0.0)
}
