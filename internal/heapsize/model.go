// Package heapsize provides the cost model used to estimate how many bytes
// of working memory an in-memory object graph occupies.
//
// The model is a handful of per-shape overheads plus an alignment quantum.
// Estimates built from it are compositional: callers align each sub-term and
// then align the sum, so two graphs with the same shape always estimate the
// same, and adding an element never lowers the estimate.
//
// Estimates deliberately ignore sharing and interning and may overcount.
package heapsize

// Model describes the per-shape overheads of the platform being modelled.
// All values are in bytes.
type Model struct {
	// Reference is the size of a pointer/reference slot.
	Reference int64
	// ObjectHeader is the fixed header of any heap object.
	ObjectHeader int64
	// ArrayHeader is the fixed header of a byte/element array.
	ArrayHeader int64
	// ListHeader is the fixed overhead of a growable list container,
	// excluding its backing array.
	ListHeader int64
	// MapEntry is the overhead of one ordered-map entry node.
	MapEntry int64
	// OrderedMapHeader is the fixed overhead of an ordered map.
	OrderedMapHeader int64
	// StringHeader is the fixed overhead of a string object.
	StringHeader int64

	// Long, Int and Bool are primitive field widths.
	Long int64
	Int  int64
	Bool int64

	// Alignment is the allocation granularity. Must be a power of two.
	Alignment int64
}

// Default returns the model for a 64-bit runtime with uncompressed
// references and 8-byte allocation granularity.
func Default() Model {
	const ref = 8
	m := Model{
		Reference: ref,
		Long:      8,
		Int:       4,
		Bool:      1,
		Alignment: 8,
	}
	m.ObjectHeader = 2 * ref
	m.deriveComposites()
	return m
}

// Compact returns the model for a 64-bit runtime with compressed (4-byte)
// references.
func Compact() Model {
	const ref = 4
	m := Model{
		Reference: ref,
		Long:      8,
		Int:       4,
		Bool:      1,
		Alignment: 8,
	}
	m.ObjectHeader = 12
	m.deriveComposites()
	return m
}

// deriveComposites fills the container overheads from the primitive widths.
func (m *Model) deriveComposites() {
	m.ArrayHeader = m.Align(m.ObjectHeader + m.Int)
	m.ListHeader = m.Align(m.ObjectHeader + m.Align(m.Reference) + m.Align(m.ArrayHeader) + 2*m.Int)
	m.MapEntry = m.Align(m.ObjectHeader + 5*m.Reference + 2*m.Bool)
	m.OrderedMapHeader = m.Align(m.ObjectHeader + 2*m.Int + m.Align(7*m.Reference))
	m.StringHeader = m.Align(m.ObjectHeader + m.ArrayHeader + m.Reference + 3*m.Int)
}

// Valid reports whether the model can be used for estimation.
func (m Model) Valid() bool {
	return m.Alignment > 0 && m.Alignment&(m.Alignment-1) == 0 &&
		m.Reference > 0 && m.ObjectHeader >= 0 && m.ArrayHeader >= 0
}

// Align rounds n up to the next multiple of the model's alignment.
// A model with no alignment returns n unchanged.
func (m Model) Align(n int64) int64 {
	if m.Alignment <= 1 {
		return n
	}
	return (n + m.Alignment - 1) &^ (m.Alignment - 1)
}

// ByteArray returns the aligned footprint of a byte array of length n.
func (m Model) ByteArray(n int) int64 {
	return m.Align(m.ArrayHeader + int64(n))
}

// ReferenceArray returns the aligned footprint of an array holding n references.
func (m Model) ReferenceArray(n int) int64 {
	return m.Align(m.ArrayHeader + int64(n)*m.Reference)
}

// String returns the aligned footprint of a string of length n.
func (m Model) String(n int) int64 {
	return m.Align(m.StringHeader + int64(n))
}

// MapEntries returns the aligned footprint of n ordered-map entry nodes.
func (m Model) MapEntries(n int) int64 {
	return m.Align(int64(n) * m.MapEntry)
}
