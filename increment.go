package rowmutation

// increment.go implements the time range and amount decoding of increment
// mutations.

import (
	"fmt"
	"math"

	"github.com/aalhour/rowmutation/internal/encoding"
)

// TimeRange is a half-open interval [Min, Max) of cell timestamps.
type TimeRange struct {
	Min int64
	Max int64
}

// AllTime returns the range covering every timestamp.
func AllTime() TimeRange {
	return TimeRange{Min: 0, Max: math.MaxInt64}
}

// IsAllTime reports whether r covers every timestamp.
func (r TimeRange) IsAllTime() bool {
	return r.Min == 0 && r.Max == math.MaxInt64
}

// Contains reports whether ts falls inside r.
func (r TimeRange) Contains(ts int64) bool {
	return ts >= r.Min && ts < r.Max
}

// TimeRange returns the versions an increment reads before adding to them.
// It is AllTime for every kind but KindIncrement.
func (m *Mutation) TimeRange() TimeRange {
	if m.kind != KindIncrement {
		return AllTime()
	}
	return m.timeRange
}

// SetTimeRange restricts the versions an increment reads to [minTS, maxTS).
func (m *Mutation) SetTimeRange(minTS, maxTS int64) error {
	if m.kind != KindIncrement {
		return fmt.Errorf("%w: time range on a %s", ErrInvalidArgument, m.kind)
	}
	if minTS < 0 || maxTS < 0 {
		return fmt.Errorf("%w: timestamps must be non-negative, got [%d, %d)", ErrInvalidArgument, minTS, maxTS)
	}
	if maxTS < minTS {
		return fmt.Errorf("%w: max %d is smaller than min %d", ErrInvalidArgument, maxTS, minTS)
	}
	m.timeRange = TimeRange{Min: minTS, Max: maxTS}
	return nil
}

// timeRangeFootprint is the extra footprint of an increment: a reference to
// a time range object holding two longs and an all-time flag.
func timeRangeFootprint(model CostModel) int64 {
	return model.Reference + model.Align(model.ObjectHeader+2*model.Long+model.Bool)
}

// IncrementAmount decodes the amount carried by an increment cell.
func IncrementAmount(c Cell) (int64, error) {
	v := c.Value()
	if len(v) != 8 {
		return 0, fmt.Errorf("%w: increment value is %d bytes, want 8", ErrMalformedEncoding, len(v))
	}
	return int64(encoding.DecodeBigEndian64(v)), nil
}
