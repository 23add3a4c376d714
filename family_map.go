package rowmutation

// family_map.go implements the ordered family-to-cells container.

import (
	"bytes"

	"github.com/google/btree"
)

// familyMapDegree is the B-tree degree. Mutations rarely touch more than a
// handful of families, so a small degree keeps single-node trees compact.
const familyMapDegree = 8

type familyEntry struct {
	family []byte
	cells  []Cell
}

func familyLess(a, b familyEntry) bool {
	return bytes.Compare(a.family, b.family) < 0
}

// FamilyMap maps column families to their cell lists, ordered by unsigned
// lexicographic comparison of the family bytes.
//
// Family order is total, stable and independent of insertion order. Cell
// order within a family is insertion order; duplicates are kept.
//
// A FamilyMap is not safe for concurrent use.
type FamilyMap struct {
	tree *btree.BTreeG[familyEntry]
}

// NewFamilyMap returns an empty FamilyMap.
func NewFamilyMap() *FamilyMap {
	return &FamilyMap{tree: btree.NewG(familyMapDegree, familyLess)}
}

// Get returns the cell list for family and whether it exists.
// The returned slice is the stored list, not a copy.
func (fm *FamilyMap) Get(family []byte) ([]Cell, bool) {
	e, ok := fm.tree.Get(familyEntry{family: family})
	if !ok {
		return nil, false
	}
	return e.cells, true
}

// Set stores cells as the list for family, replacing any previous list.
// The map keeps the family and cells slices as given.
func (fm *FamilyMap) Set(family []byte, cells []Cell) {
	fm.tree.ReplaceOrInsert(familyEntry{family: family, cells: cells})
}

// Append adds cells to the end of family's list, creating the list if needed.
func (fm *FamilyMap) Append(family []byte, cells ...Cell) {
	list, _ := fm.Get(family)
	fm.Set(family, append(list, cells...))
}

// Delete removes family and its cells. It reports whether the family existed.
func (fm *FamilyMap) Delete(family []byte) bool {
	_, ok := fm.tree.Delete(familyEntry{family: family})
	return ok
}

// Len returns the number of families.
func (fm *FamilyMap) Len() int {
	return fm.tree.Len()
}

// CellCount returns the total number of cells across all families.
func (fm *FamilyMap) CellCount() int {
	n := 0
	fm.tree.Ascend(func(e familyEntry) bool {
		n += len(e.cells)
		return true
	})
	return n
}

// Ascend calls fn for each family in ascending byte order until fn returns
// false. fn must not modify the map.
func (fm *FamilyMap) Ascend(fn func(family []byte, cells []Cell) bool) {
	fm.tree.Ascend(func(e familyEntry) bool {
		return fn(e.family, e.cells)
	})
}

// Families returns the family keys in ascending byte order.
func (fm *FamilyMap) Families() [][]byte {
	out := make([][]byte, 0, fm.tree.Len())
	fm.tree.Ascend(func(e familyEntry) bool {
		out = append(out, e.family)
		return true
	})
	return out
}

// Clone returns a snapshot: a new map with its own family keys and cell
// lists. Cells themselves are shared; they are treated as immutable.
func (fm *FamilyMap) Clone() *FamilyMap {
	out := NewFamilyMap()
	fm.tree.Ascend(func(e familyEntry) bool {
		cells := make([]Cell, len(e.cells))
		copy(cells, e.cells)
		out.tree.ReplaceOrInsert(familyEntry{family: cloneBytes(e.family), cells: cells})
		return true
	})
	return out
}
