package rowmutation

// footprint.go estimates how much working memory a mutation holds, for
// client-side flush thresholds.

import (
	"github.com/aalhour/rowmutation/internal/heapsize"
)

// CostModel holds the per-shape overheads and alignment quantum used by
// footprint estimates.
type CostModel = heapsize.Model

// DefaultCostModel models a 64-bit runtime with 8-byte references.
func DefaultCostModel() CostModel {
	return heapsize.Default()
}

// CompactCostModel models a 64-bit runtime with compressed 4-byte references.
func CompactCostModel() CostModel {
	return heapsize.Compact()
}

// mutationOverhead is the fixed cost of a Mutation: the object header, row
// and family map references, timestamp, durability and attribute references,
// and the empty ordered map.
func mutationOverhead(model CostModel) int64 {
	return model.Align(model.ObjectHeader +
		2*model.Reference +
		model.Long +
		model.Reference +
		model.Reference +
		model.OrderedMapHeader)
}

// EstimateFootprint estimates the mutation's working memory under the
// default cost model.
func (m *Mutation) EstimateFootprint() int64 {
	return m.EstimateFootprintWith(DefaultCostModel())
}

// EstimateFootprintWith estimates the mutation's working memory under model.
//
// The estimate sums the fixed overhead, the row array, one map entry per
// family, and per family its key array, list container, reference array and
// cells. Attributes and any kind-specific fields are added last. Every term
// is aligned and so is the total. Shared or interned data is not detected, so
// the result may overcount.
//
// The estimate never decreases when a cell is added and is identical for
// mutations with the same shape.
func (m *Mutation) EstimateFootprintWith(model CostModel) int64 {
	size := mutationOverhead(model)
	size += model.ByteArray(len(m.row))
	size += model.MapEntries(m.families.Len())

	m.families.Ascend(func(family []byte, cells []Cell) bool {
		size += model.ByteArray(len(family))
		size += model.Align(model.ListHeader)
		size += model.ReferenceArray(len(cells))
		for _, c := range cells {
			size += c.Footprint(model)
		}
		return true
	})

	size += m.attrs.Footprint(model)
	if m.extraFootprint != nil {
		size += model.Align(m.extraFootprint(model))
	}
	return model.Align(size)
}
