package netlist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-spice/engine/pkg/circuit"
	"github.com/go-spice/engine/pkg/netlist"
)

func TestParse_ResistorDivider(t *testing.T) {
	deck := `divider
R1 in out 1k
R2 out 0 1k
V1 in 0 DC 5
.op
`
	ckt, err := netlist.Parse(deck)
	require.NoError(t, err)
	assert.Equal(t, "divider", ckt.Title)
	assert.Len(t, ckt.Instances, 3)
	assert.Len(t, ckt.Directives, 1)
	assert.Equal(t, circuit.DirectiveOp, ckt.Directives[0].Kind)

	r1, ok := ckt.Instance("r1")
	require.True(t, ok)
	assert.Equal(t, circuit.Resistor, r1.Kind)
	assert.Equal(t, "1k", r1.Value)

	v1, ok := ckt.Instance("v1")
	require.True(t, ok)
	assert.Equal(t, "5", v1.Value)
}

func TestParse_SourceWaveforms(t *testing.T) {
	deck := `waves
V1 in 0 SIN(0 1 1k)
V2 a 0 PULSE(0 5 1n 1n 1n 1m 2m)
V3 b 0 PWL(0 0 1m 1)
V4 c 0 DC 0 AC 1 90
.tran 1u 10m
`
	ckt, err := netlist.Parse(deck)
	require.NoError(t, err)

	v1, _ := ckt.Instance("v1")
	assert.Equal(t, "sin", v1.Params["waveform"])
	assert.Equal(t, "0 1 1k", v1.Params["sin"])

	v2, _ := ckt.Instance("v2")
	assert.Equal(t, "pulse", v2.Params["waveform"])

	v3, _ := ckt.Instance("v3")
	assert.Equal(t, "pwl", v3.Params["waveform"])

	v4, _ := ckt.Instance("v4")
	require.True(t, v4.HasACMag)
	assert.InDelta(t, 1.0, v4.ACMag, 1e-12)
	assert.InDelta(t, 90.0, v4.ACPhase, 1e-12)

	require.Len(t, ckt.Directives, 1)
	assert.Equal(t, circuit.DirectiveTran, ckt.Directives[0].Kind)
	assert.InDelta(t, 1e-6, ckt.Directives[0].TranStep, 1e-15)
	assert.InDelta(t, 10e-3, ckt.Directives[0].TranStop, 1e-15)
}

func TestParse_ModelCard(t *testing.T) {
	deck := `diode model
D1 a 0 DMOD
.model DMOD D (is=1e-14 n=1.5 rs=10)
`
	ckt, err := netlist.Parse(deck)
	require.NoError(t, err)

	d1, ok := ckt.Instance("d1")
	require.True(t, ok)
	assert.Equal(t, "DMOD", d1.Model)

	card, ok := ckt.Model("dmod")
	require.True(t, ok)
	assert.Equal(t, "D", card.Type)
	assert.Equal(t, "1e-14", card.Params["is"])
	assert.Equal(t, "1.5", card.Params["n"])
}

func TestParse_ControlledSources(t *testing.T) {
	deck := `controlled
E1 out 0 in 0 2
G1 out 0 in 0 0.5
VS in 0 DC 1
F1 out 0 VS 3
H1 out2 0 VS 4
`
	ckt, err := netlist.Parse(deck)
	require.NoError(t, err)

	e1, ok := ckt.Instance("e1")
	require.True(t, ok)
	assert.Equal(t, circuit.VCVS, e1.Kind)
	assert.Equal(t, "2", e1.Value)

	f1, ok := ckt.Instance("f1")
	require.True(t, ok)
	assert.Equal(t, circuit.CCCS, f1.Kind)
	assert.Equal(t, "VS", f1.Control)
	assert.Equal(t, "3", f1.Value)
}

func TestParse_DCAndACDirectives(t *testing.T) {
	deck := `sweeps
V1 in 0 DC 0
R1 in 0 1k
.dc V1 0 5 0.5
.ac dec 10 1 1meg
`
	ckt, err := netlist.Parse(deck)
	require.NoError(t, err)
	require.Len(t, ckt.Directives, 2)

	dc := ckt.Directives[0]
	assert.Equal(t, circuit.DirectiveDC, dc.Kind)
	assert.Equal(t, "V1", dc.DCSource)
	assert.InDelta(t, 5.0, dc.DCStop, 1e-12)

	ac := ckt.Directives[1]
	assert.Equal(t, circuit.DirectiveAC, ac.Kind)
	assert.Equal(t, "dec", ac.ACSweepType)
	assert.Equal(t, 10, ac.ACPoints)
	assert.InDelta(t, 1e6, ac.ACFStop, 1e-3)
}

func TestParse_SubcircuitNotSupported(t *testing.T) {
	_, err := netlist.Parse("title\n.subckt amp 1 2 3\n.ends\n")
	assert.Error(t, err)

	_, err = netlist.Parse("title\nX1 a b amp\n")
	assert.Error(t, err)
}

func TestParse_UnknownDirectiveErrors(t *testing.T) {
	_, err := netlist.Parse("title\n.foo bar\n")
	assert.Error(t, err)
}

func TestParse_CommentsAndBlankLinesSkipped(t *testing.T) {
	deck := "title\n* a comment\n\nR1 a 0 1k\n"
	ckt, err := netlist.Parse(deck)
	require.NoError(t, err)
	assert.Len(t, ckt.Instances, 1)
}
