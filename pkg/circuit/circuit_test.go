package circuit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-spice/engine/pkg/circuit"
)

func TestNew_HasGroundNode(t *testing.T) {
	ckt := circuit.New("test")
	assert.Equal(t, 0, ckt.Ground)
	assert.Equal(t, 1, ckt.NodeCount())
	assert.Equal(t, circuit.Ground, ckt.NodeName(0))
}

func TestNodeID_InternsOnce(t *testing.T) {
	ckt := circuit.New("test")
	a1 := ckt.NodeID("out")
	a2 := ckt.NodeID("OUT")
	assert.Equal(t, a1, a2, "node names are case-insensitive")
	assert.Equal(t, 2, ckt.NodeCount(), "ground plus one interned node")

	g1 := ckt.NodeID("0")
	g2 := ckt.NodeID("gnd")
	assert.Equal(t, 0, g1)
	assert.Equal(t, 0, g2)
}

func TestAddInstance_LookupCaseInsensitive(t *testing.T) {
	ckt := circuit.New("test")
	n1 := ckt.NodeID("in")
	n2 := ckt.Ground
	ckt.AddInstance(&circuit.Instance{Name: "R1", Kind: circuit.Resistor, Nodes: []int{n1, n2}, Value: "1k"})

	inst, ok := ckt.Instance("r1")
	require.True(t, ok)
	assert.Equal(t, circuit.Resistor, inst.Kind)
	assert.Equal(t, "1k", inst.Value)
}

func TestAddModel_LookupCaseInsensitive(t *testing.T) {
	ckt := circuit.New("test")
	ckt.AddModel(circuit.ModelCard{Name: "DMOD", Type: "D", Params: map[string]string{"is": "1e-14"}})

	card, ok := ckt.Model("dmod")
	require.True(t, ok)
	assert.Equal(t, "D", card.Type)
	assert.Equal(t, "1e-14", card.Params["is"])

	_, ok = ckt.Model("missing")
	assert.False(t, ok)
}

func TestNodeName_OutOfRange(t *testing.T) {
	ckt := circuit.New("test")
	assert.Equal(t, "", ckt.NodeName(99))
	assert.Equal(t, "", ckt.NodeName(-1))
}
