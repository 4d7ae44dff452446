package mna

// System is the real-valued MNA assembly for one Newton build: a sparse
// builder, its right-hand side, and the aux table of branch-current
// unknowns. NodeCount is fixed for the life of a System; aux variables grow
// the effective system size on demand during stamping.
type System struct {
	NodeCount int
	Ground    int

	builder *Builder
	rhs     []float64
	aux     *AuxTable
}

// NewSystem sizes the builder and RHS to nodeCount.
func NewSystem(nodeCount, ground int) *System {
	return &System{
		NodeCount: nodeCount,
		Ground:    ground,
		builder:   NewBuilder(nodeCount),
		rhs:       make([]float64, nodeCount),
		aux:       newAuxTable(),
	}
}

// Size is the effective system dimension N+K.
func (s *System) Size() int { return s.builder.Size() }

// AuxTable exposes the aux table, e.g. so transient state can remember a
// branch's aux id by name across time steps.
func (s *System) AuxTable() *AuxTable { return s.aux }

// AllocateAux returns the dense id for name, growing the builder and
// zero-extending the RHS on first allocation.
func (s *System) AllocateAux(name string) int {
	local, fresh := s.aux.allocate(name)
	id := s.NodeCount + local
	if fresh {
		s.builder.Resize(id + 1)
		for len(s.rhs) <= id {
			s.rhs = append(s.rhs, 0)
		}
	}
	return id
}

// Context returns a stamping handle carrying the current Gmin and
// source-stepping scale.
func (s *System) Context(gmin, sourceScale float64) *StampContext {
	return &StampContext{sys: s, Gmin: gmin, SourceScale: sourceScale}
}

// ClearValues resets accumulated matrix/RHS entries for the next Newton
// iteration without discarding the aux table (aux ids must stay stable
// across a circuit's iterations per spec's own invariant).
func (s *System) ClearValues() {
	s.builder.ClearValues()
	for i := range s.rhs {
		s.rhs[i] = 0
	}
}

// Finalize pins the reference node with a unit diagonal and emits CCS
// arrays plus the RHS snapshot.
func (s *System) Finalize() (ap, ai []int, ax, rhs []float64) {
	s.builder.Insert(s.Ground, s.Ground, 1.0)
	ap, ai, ax = s.builder.Finalize()
	rhs = append([]float64(nil), s.rhs...)
	return ap, ai, ax, rhs
}

// Dense exposes the accumulated dense matrix, used by tests.
func (s *System) Dense() [][]float64 { return s.builder.Dense() }

// StampContext is what device Stamp methods receive: accumulation methods
// plus the two assembly-wide knobs (Gmin, SourceScale) spec.md ties to
// homotopy continuation.
type StampContext struct {
	sys         *System
	Gmin        float64
	SourceScale float64
}

// Add accumulates value into A[row, col].
func (c *StampContext) Add(row, col int, value float64) { c.sys.builder.Insert(row, col, value) }

// AddRHS accumulates value into rhs[row].
func (c *StampContext) AddRHS(row int, value float64) {
	if row < 0 {
		return
	}
	for len(c.sys.rhs) <= row {
		c.sys.rhs = append(c.sys.rhs, 0)
	}
	c.sys.rhs[row] += value
}

// AllocateAux allocates (or returns the existing) aux id for name.
func (c *StampContext) AllocateAux(name string) int { return c.sys.AllocateAux(name) }

// AuxID looks up an already-allocated aux id without creating one, for
// controlled sources that reference another element's branch current.
func (c *StampContext) AuxID(name string) (int, bool) {
	local, ok := c.sys.aux.NameToID[name]
	if !ok {
		return 0, false
	}
	return c.sys.NodeCount + local, true
}

// NodeCount is the dense node count N.
func (c *StampContext) NodeCount() int { return c.sys.NodeCount }

// ComplexSystem is the AC counterpart of System.
type ComplexSystem struct {
	NodeCount int
	Ground    int

	builder *ComplexBuilder
	rhs     []complex128
	aux     *AuxTable // shared aux ids reused from the DC operating-point system
}

// NewComplexSystem builds a complex system sharing an aux table (so AC
// stamps addressing an aux id allocated during DC linearization resolve to
// the same index).
func NewComplexSystem(nodeCount, ground int, aux *AuxTable) *ComplexSystem {
	size := nodeCount + aux.Len()
	return &ComplexSystem{
		NodeCount: nodeCount,
		Ground:    ground,
		builder:   NewComplexBuilder(size),
		rhs:       make([]complex128, size),
		aux:       aux,
	}
}

func (s *ComplexSystem) Size() int { return s.builder.Size() }

func (s *ComplexSystem) AuxID(name string) (int, bool) {
	local, ok := s.aux.NameToID[name]
	if !ok {
		return 0, false
	}
	return s.NodeCount + local, true
}

func (s *ComplexSystem) Context() *ComplexStampContext { return &ComplexStampContext{sys: s} }

// ClearValues resets accumulated matrix/RHS entries ahead of the next
// frequency point, keeping the shared aux table intact.
func (s *ComplexSystem) ClearValues() {
	s.builder.ClearValues()
	for i := range s.rhs {
		s.rhs[i] = 0
	}
}

func (s *ComplexSystem) Finalize() (ap, ai []int, ax []complex128, rhs []complex128) {
	s.builder.Insert(s.Ground, s.Ground, complex(1, 0))
	ap, ai, ax = s.builder.Finalize()
	rhs = append([]complex128(nil), s.rhs...)
	return ap, ai, ax, rhs
}

// ComplexStampContext is the AC analog of StampContext.
type ComplexStampContext struct {
	sys *ComplexSystem
}

func (c *ComplexStampContext) Add(row, col int, value complex128) {
	c.sys.builder.Insert(row, col, value)
}

func (c *ComplexStampContext) AddRHS(row int, value complex128) {
	if row < 0 || row >= len(c.sys.rhs) {
		return
	}
	c.sys.rhs[row] += value
}

func (c *ComplexStampContext) AuxID(name string) (int, bool) { return c.sys.AuxID(name) }

func (c *ComplexStampContext) NodeCount() int { return c.sys.NodeCount }
