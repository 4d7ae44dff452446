// Package circuit holds the elaborated-circuit data model that the engine
// consumes: a dense node table and an instance list. Netlist parsing,
// subcircuit expansion and parameter substitution happen upstream of this
// package; by the time a Circuit reaches the engine it is fully elaborated.
package circuit

import "strings"

// Kind identifies a device instance's type. The letter matches the SPICE
// first-character-of-name convention the netlist collaborator uses to
// dispatch element parsing.
type Kind string

const (
	Resistor      Kind = "R"
	Capacitor     Kind = "C"
	Inductor      Kind = "L"
	VoltageSource Kind = "V"
	CurrentSource Kind = "I"
	Diode         Kind = "D"
	Mosfet        Kind = "M"
	VCVS          Kind = "E"
	VCCS          Kind = "G"
	CCCS          Kind = "F"
	CCVS          Kind = "H"
	Subcircuit    Kind = "X"
)

// NodeTerminals is the fixed terminal count per kind, used to validate
// instances during elaboration.
var NodeTerminals = map[Kind]int{
	Resistor:      2,
	Capacitor:     2,
	Inductor:      2,
	VoltageSource: 2,
	CurrentSource: 2,
	Diode:         2,
	Mosfet:        4,
	VCVS:          4,
	VCCS:          4,
	CCCS:          2,
	CCVS:          2,
}

// Instance is one circuit device. Value and Params are left as strings so
// that device stamps (which own unit semantics) parse them lazily.
type Instance struct {
	Name    string
	Kind    Kind
	Nodes   []int
	Value   string
	Model   string
	Control string // for F, H: the name of the controlling V-type instance
	Params  map[string]string

	HasACMag bool
	ACMag    float64
	ACPhase  float64
}

// Ground is the conventional reference node name; its id is always 0.
const Ground = "0"

// DirectiveKind discriminates the analysis request embedded in a circuit.
type DirectiveKind string

const (
	DirectiveOp   DirectiveKind = "op"
	DirectiveDC   DirectiveKind = "dc"
	DirectiveTran DirectiveKind = "tran"
	DirectiveAC   DirectiveKind = "ac"
)

// Directive is one `.xxx` analysis request parsed from the netlist.
type Directive struct {
	Kind DirectiveKind

	// DC sweep
	DCSource string
	DCStart  float64
	DCStop   float64
	DCStep   float64

	// Transient
	TranStep  float64
	TranStop  float64
	TranStart float64
	TranMax   float64
	UseUIC    bool

	// AC
	ACSweepType string // "dec" | "oct" | "lin"
	ACPoints    int
	ACFStart    float64
	ACFStop     float64
}

// ModelCard is a named parameter set from a `.model` directive, referenced
// by a Diode or Mosfet instance's Model field.
type ModelCard struct {
	Name   string
	Type   string // "D", "NMOS", "PMOS"
	Params map[string]string
}

// Circuit is the elaborated network handed to the engine.
type Circuit struct {
	Title string

	Nodes     []string       // dense name table, index == node id
	NodeIndex map[string]int // lower-cased name -> node id
	Ground    int

	Instances     []*Instance
	InstanceIndex map[string]*Instance // lower-cased name -> instance

	Models map[string]ModelCard // lower-cased name -> model card

	Directives []Directive
}

// New creates an empty, elaborated circuit with only the ground node
// present.
func New(title string) *Circuit {
	c := &Circuit{
		Title:         title,
		NodeIndex:     map[string]int{},
		InstanceIndex: map[string]*Instance{},
		Models:        map[string]ModelCard{},
	}
	c.internNode(Ground)
	c.Ground = c.NodeIndex[Ground]
	return c
}

// AddModel indexes a model card by lower-cased name.
func (c *Circuit) AddModel(m ModelCard) {
	c.Models[strings.ToLower(m.Name)] = m
}

// Model looks up a model card by case-insensitive name.
func (c *Circuit) Model(name string) (ModelCard, bool) {
	m, ok := c.Models[strings.ToLower(name)]
	return m, ok
}

func (c *Circuit) internNode(name string) int {
	key := strings.ToLower(name)
	if id, ok := c.NodeIndex[key]; ok {
		return id
	}
	id := len(c.Nodes)
	c.Nodes = append(c.Nodes, name)
	c.NodeIndex[key] = id
	return id
}

// NodeID resolves a node name to a dense id, interning it if unseen.
func (c *Circuit) NodeID(name string) int {
	if name == "gnd" || name == Ground {
		return c.Ground
	}
	return c.internNode(name)
}

// NodeCount returns the dense node count N; node ids live in [0, N).
func (c *Circuit) NodeCount() int { return len(c.Nodes) }

// NodeName reports the display name for a node id.
func (c *Circuit) NodeName(id int) string {
	if id < 0 || id >= len(c.Nodes) {
		return ""
	}
	return c.Nodes[id]
}

// AddInstance appends an instance, indexing it by lower-cased name.
func (c *Circuit) AddInstance(inst *Instance) {
	c.Instances = append(c.Instances, inst)
	c.InstanceIndex[strings.ToLower(inst.Name)] = inst
}

// Instance looks up an instance by case-insensitive name.
func (c *Circuit) Instance(name string) (*Instance, bool) {
	inst, ok := c.InstanceIndex[strings.ToLower(name)]
	return inst, ok
}
