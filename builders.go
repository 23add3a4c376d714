package rowmutation

// builders.go contains the helpers that create cells from the mutation's own
// row and append them to the family map.

import (
	"github.com/aalhour/rowmutation/internal/encoding"
)

// AddColumn adds a Put cell at the mutation's default timestamp.
func (m *Mutation) AddColumn(family, qualifier, value []byte) *Mutation {
	return m.AddColumnAt(family, qualifier, m.ts, value)
}

// AddColumnAt adds a Put cell at ts.
func (m *Mutation) AddColumnAt(family, qualifier []byte, ts int64, value []byte) *Mutation {
	m.addKeyValue(family, qualifier, ts, CellTypePut, value)
	return m
}

// AddDeleteFamily deletes every column of family with a timestamp at or
// below the mutation's default timestamp.
func (m *Mutation) AddDeleteFamily(family []byte) *Mutation {
	return m.AddDeleteFamilyAt(family, m.ts)
}

// AddDeleteFamilyAt deletes every column of family with a timestamp at or
// below ts.
func (m *Mutation) AddDeleteFamilyAt(family []byte, ts int64) *Mutation {
	m.addKeyValue(family, nil, ts, CellTypeDeleteFamily, nil)
	return m
}

// AddDeleteFamilyVersion deletes the version at exactly ts of every column
// of family.
func (m *Mutation) AddDeleteFamilyVersion(family []byte, ts int64) *Mutation {
	m.addKeyValue(family, nil, ts, CellTypeDeleteFamilyVersion, nil)
	return m
}

// AddDeleteColumns deletes all versions of a column with a timestamp at or
// below the mutation's default timestamp.
func (m *Mutation) AddDeleteColumns(family, qualifier []byte) *Mutation {
	return m.AddDeleteColumnsAt(family, qualifier, m.ts)
}

// AddDeleteColumnsAt deletes all versions of a column with a timestamp at or
// below ts.
func (m *Mutation) AddDeleteColumnsAt(family, qualifier []byte, ts int64) *Mutation {
	m.addKeyValue(family, qualifier, ts, CellTypeDeleteColumn, nil)
	return m
}

// AddDeleteColumn deletes a single version of a column. With the default
// timestamp left at LatestTimestamp the server deletes the newest version.
func (m *Mutation) AddDeleteColumn(family, qualifier []byte) *Mutation {
	return m.AddDeleteColumnAt(family, qualifier, m.ts)
}

// AddDeleteColumnAt deletes the version of a column at exactly ts.
func (m *Mutation) AddDeleteColumnAt(family, qualifier []byte, ts int64) *Mutation {
	m.addKeyValue(family, qualifier, ts, CellTypeDelete, nil)
	return m
}

// AddIncrement adds amount to a counter column. The amount is carried as an
// 8-byte big-endian value.
func (m *Mutation) AddIncrement(family, qualifier []byte, amount int64) *Mutation {
	value := encoding.AppendBigEndian64(make([]byte, 0, 8), uint64(amount))
	m.addKeyValue(family, qualifier, m.ts, CellTypePut, value)
	return m
}
