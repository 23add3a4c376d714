package rowmutation

// mutation.go implements Mutation, a single logical write against one row.

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
)

// MaxRowLength is the maximum length of a row key in bytes.
const MaxRowLength = math.MaxInt16

// LatestTimestamp asks the server to assign the timestamp at apply time.
const LatestTimestamp int64 = math.MaxInt64

var (
	// ErrInvalidArgument is returned for a nil, empty or oversized row, and
	// for cells that do not belong to the mutation's row.
	ErrInvalidArgument = errors.New("rowmutation: invalid argument")

	// ErrMalformedEncoding is returned when an encoded attribute is shorter
	// than its declared contents.
	ErrMalformedEncoding = errors.New("rowmutation: malformed encoding")
)

// ValidateRow checks that row is usable as a row key.
func ValidateRow(row []byte) error {
	if row == nil {
		return fmt.Errorf("%w: row buffer is nil", ErrInvalidArgument)
	}
	return ValidateRowWindow(row, 0, len(row))
}

// ValidateRowWindow checks the row key held in buf[offset:offset+length].
func ValidateRowWindow(buf []byte, offset, length int) error {
	if buf == nil {
		return fmt.Errorf("%w: row buffer is nil", ErrInvalidArgument)
	}
	if offset < 0 || length < 0 || offset > len(buf) || length > len(buf)-offset {
		return fmt.Errorf("%w: row window [%d, %d+%d) outside buffer of %d bytes",
			ErrInvalidArgument, offset, offset, length, len(buf))
	}
	return checkRowLength(length)
}

// ValidateRowBuffer checks the unread portion of an externally owned buffer.
func ValidateRowBuffer(buf *bytes.Buffer) error {
	if buf == nil {
		return fmt.Errorf("%w: row buffer is nil", ErrInvalidArgument)
	}
	return checkRowLength(buf.Len())
}

func checkRowLength(length int) error {
	if length == 0 {
		return fmt.Errorf("%w: row length is 0", ErrInvalidArgument)
	}
	if length > MaxRowLength {
		return fmt.Errorf("%w: row length %d is > %d", ErrInvalidArgument, length, MaxRowLength)
	}
	return nil
}

// Kind identifies which operation a Mutation carries.
type Kind uint8

const (
	// KindPut writes cell values.
	KindPut Kind = iota
	// KindDelete writes delete markers.
	KindDelete
	// KindIncrement adds 8-byte big-endian amounts to counter columns.
	KindIncrement
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPut:
		return "Put"
	case KindDelete:
		return "Delete"
	case KindIncrement:
		return "Increment"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Mutation is a single logical write (insert, update or delete of one or
// more cells) against one row, grouped by column family.
//
// A Mutation is a plain value built by one goroutine and then handed to the
// transport layer. It has no internal locking: concurrent modification is
// undefined and must be serialized by the caller.
//
// The row is fixed at construction. Cells, the family map and attributes
// may change any number of times before hand-off.
type Mutation struct {
	kind       Kind
	row        []byte
	ts         int64
	durability Durability
	families   *FamilyMap
	attrs      Attributes

	// timeRange bounds the versions an increment reads. Only used by
	// KindIncrement.
	timeRange TimeRange

	// extraFootprint lets specialized kinds account for their own fields.
	extraFootprint func(CostModel) int64
}

// NewMutation creates an empty mutation of the given kind for row. The row
// is validated before it is committed and is kept as given.
func NewMutation(kind Kind, row []byte) (*Mutation, error) {
	if err := ValidateRow(row); err != nil {
		return nil, err
	}
	return newMutation(kind, row), nil
}

// NewPut creates an empty Put for row.
func NewPut(row []byte) (*Mutation, error) {
	return NewMutation(KindPut, row)
}

// NewDelete creates an empty Delete for row.
func NewDelete(row []byte) (*Mutation, error) {
	return NewMutation(KindDelete, row)
}

// NewIncrement creates an empty Increment for row.
func NewIncrement(row []byte) (*Mutation, error) {
	return NewMutation(KindIncrement, row)
}

// NewMutationFromWindow creates a mutation whose row is a copy of
// buf[offset:offset+length].
func NewMutationFromWindow(kind Kind, buf []byte, offset, length int) (*Mutation, error) {
	if err := ValidateRowWindow(buf, offset, length); err != nil {
		return nil, err
	}
	return newMutation(kind, cloneBytes(buf[offset:offset+length])), nil
}

// NewMutationFromBuffer creates a mutation whose row is a copy of the unread
// portion of buf. buf is not consumed.
func NewMutationFromBuffer(kind Kind, buf *bytes.Buffer) (*Mutation, error) {
	if err := ValidateRowBuffer(buf); err != nil {
		return nil, err
	}
	return newMutation(kind, cloneBytes(buf.Bytes())), nil
}

func newMutation(kind Kind, row []byte) *Mutation {
	m := &Mutation{
		kind:       kind,
		row:        row,
		ts:         LatestTimestamp,
		durability: UseDefault,
		families:   NewFamilyMap(),
	}
	if kind == KindIncrement {
		m.timeRange = AllTime()
		m.extraFootprint = timeRangeFootprint
	}
	return m
}

// Kind returns the operation the mutation carries.
func (m *Mutation) Kind() Kind {
	return m.kind
}

// Row returns the row key. It must not be modified.
func (m *Mutation) Row() []byte {
	return m.row
}

// Timestamp returns the default timestamp for cells added without one.
func (m *Mutation) Timestamp() int64 {
	return m.ts
}

// SetTimestamp sets the default timestamp for cells added afterwards.
// Cells already added keep their timestamps.
func (m *Mutation) SetTimestamp(ts int64) *Mutation {
	m.ts = ts
	return m
}

// Durability returns the requested WAL behavior.
func (m *Mutation) Durability() Durability {
	return m.durability
}

// SetDurability sets the requested WAL behavior.
func (m *Mutation) SetDurability(d Durability) *Mutation {
	m.durability = d
	return m
}

// Attributes returns the mutation's attribute bag.
func (m *Mutation) Attributes() *Attributes {
	return &m.attrs
}

// Attribute returns the value of a single attribute, or nil.
func (m *Mutation) Attribute(name string) []byte {
	return m.attrs.Get(name)
}

// SetAttribute stores an attribute. A nil value removes it.
func (m *Mutation) SetAttribute(name string, value []byte) *Mutation {
	m.attrs.Set(name, value)
	return m
}

// ID returns the operation identifier attribute, or "".
func (m *Mutation) ID() string {
	return m.attrs.ID()
}

// SetID sets the operation identifier attribute.
func (m *Mutation) SetID(id string) *Mutation {
	m.attrs.SetID(id)
	return m
}

// SetExtraFootprint installs the footprint of fields a specialized mutation
// kind adds on top of Mutation. The result is aligned before it is summed.
// A nil fn restores the default of zero.
func (m *Mutation) SetExtraFootprint(fn func(CostModel) int64) {
	m.extraFootprint = fn
}

// -----------------------------------------------------------------------------
// Family/cell container
// -----------------------------------------------------------------------------

// CellsFor returns a copy of the cell list for family, or a new empty list
// when the family is absent. Writing to or appending to the result does not
// change the mutation; the cells themselves are shared. It never inserts into
// the family map: the family only appears once cells are added to it.
func (m *Mutation) CellsFor(family []byte) []Cell {
	if cells, ok := m.families.Get(family); ok {
		return slices.Clone(cells)
	}
	return []Cell{}
}

// FamilyCellMap returns a snapshot of the family map. Changes to the snapshot
// do not affect the mutation and vice versa.
func (m *Mutation) FamilyCellMap() *FamilyMap {
	return m.families.Clone()
}

// SetFamilyCellMap replaces the whole family map with fm, without merging,
// copying or validating. The mutation takes ownership: a caller that keeps
// using fm shares it with the mutation and sees (and causes) every change.
// A nil fm installs an empty map.
func (m *Mutation) SetFamilyCellMap(fm *FamilyMap) {
	if fm == nil {
		fm = NewFamilyMap()
	}
	m.families = fm
}

// IsEmpty reports whether the mutation carries no cells.
func (m *Mutation) IsEmpty() bool {
	empty := true
	m.families.Ascend(func(_ []byte, cells []Cell) bool {
		empty = len(cells) == 0
		return empty
	})
	return empty
}

// Size returns the total number of cells across all families.
func (m *Mutation) Size() int {
	return m.families.CellCount()
}

// FamilyCount returns the number of distinct families.
func (m *Mutation) FamilyCount() int {
	return m.families.Len()
}

// Families returns the family names in ascending byte order.
func (m *Mutation) Families() [][]byte {
	return m.families.Families()
}

// Cells returns every cell, families in ascending byte order and cells in
// insertion order within a family.
func (m *Mutation) Cells() []Cell {
	out := make([]Cell, 0, m.Size())
	m.families.Ascend(func(_ []byte, cells []Cell) bool {
		out = append(out, cells...)
		return true
	})
	return out
}

// AddCell appends c to its family's list. The cell's row must equal the
// mutation's row. Duplicates are kept.
func (m *Mutation) AddCell(c Cell) error {
	if !bytes.Equal(c.Row(), m.row) {
		return fmt.Errorf("%w: cell row %q does not match mutation row %q",
			ErrInvalidArgument, c.Row(), m.row)
	}
	m.families.Append(c.Family(), c)
	return nil
}

// addKeyValue appends a cell built from the mutation's own row.
func (m *Mutation) addKeyValue(family, qualifier []byte, ts int64, typ CellType, value []byte) {
	m.families.Append(family, NewKeyValue(m.row, family, qualifier, ts, typ, value))
}

// -----------------------------------------------------------------------------
// Row ordering
// -----------------------------------------------------------------------------

// Compare orders two mutations by unsigned lexicographic comparison of their
// rows. Ties are not broken further.
func Compare(a, b *Mutation) int {
	return bytes.Compare(a.row, b.row)
}

// ByRow sorts mutations by row. Use with sort.Stable to keep the relative
// order of mutations targeting the same row.
type ByRow []*Mutation

func (s ByRow) Len() int           { return len(s) }
func (s ByRow) Less(i, j int) bool { return Compare(s[i], s[j]) < 0 }
func (s ByRow) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// SortByRow stably sorts mutations by row.
func SortByRow(ms []*Mutation) {
	sort.Stable(ByRow(ms))
}

// -----------------------------------------------------------------------------
// Cell scanning
// -----------------------------------------------------------------------------

// CellScanner walks a mutation's cells in family order.
//
// The scanner works on a snapshot taken when it is created; cells added to
// the mutation afterwards are not visited.
type CellScanner struct {
	cells []Cell
	pos   int
}

// Scanner returns a scanner positioned before the first cell.
func (m *Mutation) Scanner() *CellScanner {
	return &CellScanner{cells: m.Cells(), pos: -1}
}

// Next advances to the next cell and reports whether one exists.
func (s *CellScanner) Next() bool {
	if s.pos+1 >= len(s.cells) {
		s.pos = len(s.cells)
		return false
	}
	s.pos++
	return true
}

// Cell returns the current cell. It is only valid after Next returned true.
func (s *CellScanner) Cell() Cell {
	return s.cells[s.pos]
}
