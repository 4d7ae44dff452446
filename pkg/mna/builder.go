// Package mna implements Modified Nodal Analysis assembly: a column-compressed
// sparse builder, an auxiliary-variable table for branch-current unknowns,
// and the System/StampContext pair that device stamps write into.
package mna

import "sort"

type entry struct {
	row int
	val float64
}

// Builder accumulates real-valued (row, col, value) triplets column by
// column and compresses them into CCS arrays on Finalize. Insert never
// coalesces eagerly; Finalize sums duplicate (row, col) entries so that the
// assembled matrix equals the sum of every insert regardless of order.
type Builder struct {
	n    int
	cols [][]entry
}

// NewBuilder allocates a builder for an n x n system.
func NewBuilder(n int) *Builder {
	return &Builder{n: n, cols: make([][]entry, n)}
}

// Insert accumulates value at (row, col). Out-of-range indices are ignored
// rather than panicking, matching the column-bounded no-op behavior a
// growing aux table relies on during incremental stamping.
func (b *Builder) Insert(row, col int, value float64) {
	if row < 0 || col < 0 || row >= b.n || col >= b.n {
		return
	}
	b.cols[col] = append(b.cols[col], entry{row: row, val: value})
}

// Resize grows the builder to n columns/rows. It never shrinks.
func (b *Builder) Resize(n int) {
	if n <= b.n {
		return
	}
	grown := make([][]entry, n)
	copy(grown, b.cols)
	b.cols = grown
	b.n = n
}

// ClearValues drops all accumulated entries but keeps the current size.
func (b *Builder) ClearValues() {
	for i := range b.cols {
		b.cols[i] = b.cols[i][:0]
	}
}

// Size reports the current dimension n.
func (b *Builder) Size() int { return b.n }

// Finalize sorts each column by row and coalesces duplicate (row, col)
// entries by summation, emitting compressed-column arrays ap[n+1], ai[nnz],
// ax[nnz]. Coalescing here (rather than leaving duplicates for the solver
// to sum) is the choice spec's open question on duplicate handling leaves
// free; Finalize always coalesces, so each row appears at most once per
// column in ai.
func (b *Builder) Finalize() (ap []int, ai []int, ax []float64) {
	ap = make([]int, b.n+1)
	for col := 0; col < b.n; col++ {
		entries := append([]entry(nil), b.cols[col]...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].row < entries[j].row })

		for i := 0; i < len(entries); {
			j := i + 1
			sum := entries[i].val
			for j < len(entries) && entries[j].row == entries[i].row {
				sum += entries[j].val
				j++
			}
			ai = append(ai, entries[i].row)
			ax = append(ax, sum)
			i = j
		}
		ap[col+1] = len(ai)
	}
	return ap, ai, ax
}

// Dense reconstructs the full n x n matrix from the current entries,
// without coalescing into CCS form first. Used by tests.
func (b *Builder) Dense() [][]float64 {
	m := make([][]float64, b.n)
	for i := range m {
		m[i] = make([]float64, b.n)
	}
	for col, entries := range b.cols {
		for _, e := range entries {
			m[e.row][col] += e.val
		}
	}
	return m
}

type complexEntry struct {
	row int
	val complex128
}

// ComplexBuilder is the complex-valued counterpart of Builder, used for AC
// analysis.
type ComplexBuilder struct {
	n    int
	cols [][]complexEntry
}

// NewComplexBuilder allocates a complex builder for an n x n system.
func NewComplexBuilder(n int) *ComplexBuilder {
	return &ComplexBuilder{n: n, cols: make([][]complexEntry, n)}
}

func (b *ComplexBuilder) Insert(row, col int, value complex128) {
	if row < 0 || col < 0 || row >= b.n || col >= b.n {
		return
	}
	b.cols[col] = append(b.cols[col], complexEntry{row: row, val: value})
}

func (b *ComplexBuilder) Resize(n int) {
	if n <= b.n {
		return
	}
	grown := make([][]complexEntry, n)
	copy(grown, b.cols)
	b.cols = grown
	b.n = n
}

func (b *ComplexBuilder) ClearValues() {
	for i := range b.cols {
		b.cols[i] = b.cols[i][:0]
	}
}

func (b *ComplexBuilder) Size() int { return b.n }

func (b *ComplexBuilder) Finalize() (ap []int, ai []int, ax []complex128) {
	ap = make([]int, b.n+1)
	for col := 0; col < b.n; col++ {
		entries := append([]complexEntry(nil), b.cols[col]...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].row < entries[j].row })

		for i := 0; i < len(entries); {
			j := i + 1
			sum := entries[i].val
			for j < len(entries) && entries[j].row == entries[i].row {
				sum += entries[j].val
				j++
			}
			ai = append(ai, entries[i].row)
			ax = append(ax, sum)
			i = j
		}
		ap[col+1] = len(ai)
	}
	return ap, ai, ax
}

func (b *ComplexBuilder) Dense() [][]complex128 {
	m := make([][]complex128, b.n)
	for i := range m {
		m[i] = make([]complex128, b.n)
	}
	for col, entries := range b.cols {
		for _, e := range entries {
			m[e.row][col] += e.val
		}
	}
	return m
}
