package device

import (
	"math"

	"github.com/go-spice/engine/pkg/mna"
	"github.com/go-spice/engine/pkg/util"
)

// Capacitor implements spec.md §4.6: Gmin-only stamp at the operating
// point, a backward-Euler companion conductance/current source during
// transient analysis, and a jωC admittance for AC.
type Capacitor struct {
	Base
	Value float64

	voltage, voltagePrev float64
	current              float64
}

func NewCapacitor(name string, nodeNames []string, value float64) *Capacitor {
	return &Capacitor{
		Base:  Base{InstName: name, NodeIDs: make([]int, len(nodeNames)), NodeNames: nodeNames},
		Value: value,
	}
}

func (c *Capacitor) Stamp(ctx *mna.StampContext, s *State) error {
	n1, n2 := c.NodeIDs[0], c.NodeIDs[1]

	switch s.Mode {
	case Transient:
		dt := s.TimeStep
		if dt <= 0 {
			dt = 1e-9
		}
		geq := c.Value * util.GetIntegratorCoeffs(util.GearMethod, 1, dt)[0]
		ieq := geq * c.voltage
		stampConductance2(ctx, n1, n2, geq)
		stampCurrent2(ctx, n1, n2, -ieq)
	default:
		gmin := math.Max(s.Gmin, 1e-12)
		stampConductance2(ctx, n1, n2, gmin)
	}
	return nil
}

func (c *Capacitor) StampAC(ctx *mna.ComplexStampContext, s *State) error {
	omega := 2 * math.Pi * s.Frequency
	stampComplexConductance2(ctx, c.NodeIDs[0], c.NodeIDs[1], complex(0, omega*c.Value))
	return nil
}

// AdvanceHistory records the branch voltage/current once a transient step is
// accepted, for use as the backward-Euler history term on the next step.
func (c *Capacitor) AdvanceHistory(s *State) {
	n1, n2 := c.NodeIDs[0], c.NodeIDs[1]
	v := s.NodeVoltage(n1) - s.NodeVoltage(n2)

	dt := s.TimeStep
	if dt <= 0 {
		dt = 1e-9
	}
	c.current = c.Value * (v - c.voltage) / dt
	c.voltagePrev = c.voltage
	c.voltage = v
}

// LocalError returns the branch-voltage change and a tolerance scale used by
// adaptive step-size control.
func (c *Capacitor) LocalError(s *State) (value, scale float64) {
	return math.Abs(c.voltage - c.voltagePrev), math.Max(math.Abs(c.voltage), math.Abs(c.voltagePrev))
}
