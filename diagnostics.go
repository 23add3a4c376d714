package rowmutation

// diagnostics.go renders mutations for logs and admin tooling.

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/aalhour/rowmutation/internal/encoding"
)

// DefaultMaxColumns is the number of cell details String includes.
const DefaultMaxColumns = 5

// Summary map keys.
const (
	KeyRow            = "row"
	KeyFamilies       = "families"
	KeyTotalColumns   = "totalColumns"
	KeyID             = "id"
	KeyOriginIDs      = "originIds"
	KeyOriginIDsError = "originIdsError"
)

// Fingerprint returns a structural summary of the mutation: the affected
// families, in family order, rendered binary-safe. It does not look at cells
// and is cheap enough for high-volume logging.
func (m *Mutation) Fingerprint() map[string]any {
	families := make([]string, 0, m.families.Len())
	m.families.Ascend(func(family []byte, _ []Cell) bool {
		families = append(families, encoding.ToStringBinary(family))
		return true
	})
	return map[string]any{KeyFamilies: families}
}

// DetailedSummary extends Fingerprint with the row, per-family cell details,
// the total cell count, the operation id and the origin ids.
//
// "families" is a FamilyDetails listing each family, in family order, with
// its cell detail maps. It renders as a JSON object whose keys keep that
// order. At most maxColumns details are emitted across all families; once
// the budget is spent the remaining families are still listed with empty
// lists.
// "totalColumns" always counts every cell. A negative maxColumns is treated
// as zero.
func (m *Mutation) DetailedSummary(maxColumns int) map[string]any {
	out := m.Fingerprint()
	out[KeyRow] = encoding.ToStringBinary(m.row)

	remaining := maxColumns
	total := 0
	families := make(FamilyDetails, 0, m.families.Len())
	m.families.Ascend(func(family []byte, cells []Cell) bool {
		details := make([]map[string]any, 0)
		for _, c := range cells {
			total++
			if remaining <= 0 {
				continue
			}
			remaining--
			details = append(details, summaryCellDetails(c))
		}
		families = append(families, FamilyDetail{Family: encoding.ToStringBinary(family), Cells: details})
		return true
	})
	out[KeyFamilies] = families
	out[KeyTotalColumns] = total

	if id := m.ID(); id != "" {
		out[KeyID] = id
	}
	if m.attrs.Get(AttrOriginIDs) != nil {
		ids, err := m.OriginIDs()
		if err != nil {
			out[KeyOriginIDsError] = err.Error()
		} else if len(ids) > 0 {
			out[KeyOriginIDs] = originStrings(ids)
		}
	}
	return out
}

// FamilyDetail is one family's entry in a detailed summary.
type FamilyDetail struct {
	Family string
	Cells  []map[string]any
}

// FamilyDetails lists per-family cell details in family order.
type FamilyDetails []FamilyDetail

// Get returns the cell details recorded for family.
func (d FamilyDetails) Get(family string) ([]map[string]any, bool) {
	for _, fd := range d {
		if fd.Family == family {
			return fd.Cells, true
		}
	}
	return nil, false
}

// MarshalJSON renders d as an object keyed by family, in family order
// rather than the sorted key order encoding/json gives maps.
func (d FamilyDetails) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fd := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(fd.Family)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(fd.Cells)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// summaryCellDetails drops row and family, which the summary already shows
// at the outer levels.
func summaryCellDetails(c Cell) map[string]any {
	d := cellDetails(c)
	delete(d, "row")
	delete(d, "family")
	return d
}

func originStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// FingerprintJSON renders Fingerprint as JSON.
func (m *Mutation) FingerprintJSON() ([]byte, error) {
	return json.Marshal(m.Fingerprint())
}

// SummaryJSON renders DetailedSummary(maxColumns) as JSON.
func (m *Mutation) SummaryJSON(maxColumns int) ([]byte, error) {
	return json.Marshal(m.DetailedSummary(maxColumns))
}

// String renders the mutation as JSON with up to DefaultMaxColumns cell
// details.
func (m *Mutation) String() string {
	b, err := m.SummaryJSON(DefaultMaxColumns)
	if err != nil {
		return m.kind.String() + "(" + encoding.ToStringBinary(m.row) + ")"
	}
	return string(b)
}
