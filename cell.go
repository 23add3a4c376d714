package rowmutation

// cell.go implements the Cell abstraction carried by a Mutation.

import (
	"fmt"

	"github.com/aalhour/rowmutation/internal/encoding"
)

// CellType is the kind of change a cell represents.
// The numeric values are stored in cell blocks and MUST NOT change.
type CellType uint8

const (
	// CellTypeMinimum sorts before every real type; never stored.
	CellTypeMinimum CellType = 0
	// CellTypePut writes a value.
	CellTypePut CellType = 4
	// CellTypeDelete deletes one version of a column.
	CellTypeDelete CellType = 8
	// CellTypeDeleteFamilyVersion deletes one version of every column in a family.
	CellTypeDeleteFamilyVersion CellType = 10
	// CellTypeDeleteColumn deletes all versions of a column up to a timestamp.
	CellTypeDeleteColumn CellType = 12
	// CellTypeDeleteFamily deletes all columns of a family up to a timestamp.
	CellTypeDeleteFamily CellType = 14
	// CellTypeMaximum sorts after every real type; never stored.
	CellTypeMaximum CellType = 255
)

// String returns the name of the cell type.
func (t CellType) String() string {
	switch t {
	case CellTypeMinimum:
		return "Minimum"
	case CellTypePut:
		return "Put"
	case CellTypeDelete:
		return "Delete"
	case CellTypeDeleteFamilyVersion:
		return "DeleteFamilyVersion"
	case CellTypeDeleteColumn:
		return "DeleteColumn"
	case CellTypeDeleteFamily:
		return "DeleteFamily"
	case CellTypeMaximum:
		return "Maximum"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// IsDelete reports whether the type is one of the delete markers.
func (t CellType) IsDelete() bool {
	switch t {
	case CellTypeDelete, CellTypeDeleteFamilyVersion, CellTypeDeleteColumn, CellTypeDeleteFamily:
		return true
	default:
		return false
	}
}

// Cell is the smallest addressable unit of data.
//
// A Mutation does not look inside a Cell beyond this interface. Byte slices
// returned by the accessors must not be modified.
type Cell interface {
	Row() []byte
	Family() []byte
	Qualifier() []byte
	Timestamp() int64
	Type() CellType
	Value() []byte

	// Footprint estimates the bytes of working memory the cell occupies,
	// aligned to the model's quantum.
	Footprint(model CostModel) int64
}

// KeyValue is the concrete Cell built by Mutation helpers.
// It owns none of its slices; callers must not modify them after handing
// them over.
type KeyValue struct {
	row       []byte
	family    []byte
	qualifier []byte
	timestamp int64
	typ       CellType
	value     []byte
}

var _ Cell = (*KeyValue)(nil)

// NewKeyValue creates a cell.
func NewKeyValue(row, family, qualifier []byte, ts int64, typ CellType, value []byte) *KeyValue {
	return &KeyValue{
		row:       row,
		family:    family,
		qualifier: qualifier,
		timestamp: ts,
		typ:       typ,
		value:     value,
	}
}

// Row implements Cell.
func (kv *KeyValue) Row() []byte { return kv.row }

// Family implements Cell.
func (kv *KeyValue) Family() []byte { return kv.family }

// Qualifier implements Cell.
func (kv *KeyValue) Qualifier() []byte { return kv.qualifier }

// Timestamp implements Cell.
func (kv *KeyValue) Timestamp() int64 { return kv.timestamp }

// Type implements Cell.
func (kv *KeyValue) Type() CellType { return kv.typ }

// Value implements Cell.
func (kv *KeyValue) Value() []byte { return kv.value }

// Flat KeyValue layout widths used by SerializedLength.
const (
	kvLengthsSize   = 8 // key length + value length, two int32
	rowLengthSize   = 2
	familyLenSize   = 1
	timestampSize   = 8
	typeSize        = 1
	keyInfraSize    = rowLengthSize + familyLenSize + timestampSize + typeSize
	kvInfraOverhead = kvLengthsSize + keyInfraSize
)

// SerializedLength returns the length of the cell in the flat KeyValue
// layout: key and value lengths, row length, row, family length, family,
// qualifier, timestamp, type, value.
func (kv *KeyValue) SerializedLength() int {
	return kvInfraOverhead + len(kv.row) + len(kv.family) + len(kv.qualifier) + len(kv.value)
}

// Footprint implements Cell. The estimate models one object holding a
// reference to a single flat backing array, plus offset, length and a
// memstore timestamp.
func (kv *KeyValue) Footprint(m CostModel) int64 {
	sum := m.ObjectHeader
	sum += m.Reference
	sum += m.Align(m.ArrayHeader)
	sum += m.Align(int64(kv.SerializedLength()))
	sum += 2 * m.Int
	sum += m.Long
	return m.Align(sum)
}

// ToStringMap renders the cell for diagnostics.
func (kv *KeyValue) ToStringMap() map[string]any {
	return cellDetails(kv)
}

// String returns row/family:qualifier/timestamp/type/vlen.
func (kv *KeyValue) String() string {
	return fmt.Sprintf("%s/%s:%s/%d/%s/vlen=%d",
		encoding.ToStringBinary(kv.row),
		encoding.ToStringBinary(kv.family),
		encoding.ToStringBinary(kv.qualifier),
		kv.timestamp, kv.typ, len(kv.value))
}

// cellDetails renders any Cell as a diagnostic map.
func cellDetails(c Cell) map[string]any {
	return map[string]any{
		"row":       encoding.ToStringBinary(c.Row()),
		"family":    encoding.ToStringBinary(c.Family()),
		"qualifier": encoding.ToStringBinary(c.Qualifier()),
		"timestamp": c.Timestamp(),
		"type":      c.Type().String(),
		"vlen":      len(c.Value()),
		"value":     encoding.ToStringBinary(c.Value()),
	}
}

// CloneCell returns a KeyValue holding private copies of c's slices.
func CloneCell(c Cell) *KeyValue {
	return NewKeyValue(
		cloneBytes(c.Row()),
		cloneBytes(c.Family()),
		cloneBytes(c.Qualifier()),
		c.Timestamp(),
		c.Type(),
		cloneBytes(c.Value()),
	)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
