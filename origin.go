package rowmutation

// origin.go encodes the replication-origin identifiers carried under
// AttrOriginIDs.
//
// Layout (big-endian):
//
//	int32 count
//	count × { uint64 most-significant bits, uint64 least-significant bits }
//
// The most/least significant halves in big-endian order are exactly the
// 16 bytes of the identifier, so each id is written as its raw bytes.
// There is no version byte; the layout must stay backwards compatible.

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/aalhour/rowmutation/internal/encoding"
)

const (
	originCountSize = 4
	originIDSize    = 16
)

// EncodeOriginIDs returns the attribute encoding of ids.
func EncodeOriginIDs(ids []uuid.UUID) []byte {
	out := make([]byte, 0, originCountSize+len(ids)*originIDSize)
	out = encoding.AppendBigEndian32(out, uint32(int32(len(ids))))
	for _, id := range ids {
		out = append(out, id[:]...)
	}
	return out
}

// DecodeOriginIDs parses an attribute value produced by EncodeOriginIDs.
// Bytes after the declared ids are ignored.
func DecodeOriginIDs(b []byte) ([]uuid.UUID, error) {
	s := encoding.NewSlice(b)
	n, ok := s.GetBigEndian32()
	if !ok {
		return nil, fmt.Errorf("%w: origin ids header is %d bytes, want %d",
			ErrMalformedEncoding, len(b), originCountSize)
	}
	count := int32(n)
	if count < 0 {
		return nil, fmt.Errorf("%w: negative origin id count %d", ErrMalformedEncoding, count)
	}
	need := int64(count) * originIDSize
	if need > math.MaxInt32 || int64(s.Remaining()) < need {
		return nil, fmt.Errorf("%w: %d origin ids need %d bytes, have %d",
			ErrMalformedEncoding, count, need, s.Remaining())
	}
	ids := make([]uuid.UUID, count)
	for i := range ids {
		msb, _ := s.GetBigEndian64()
		lsb, _ := s.GetBigEndian64()
		encoding.AppendBigEndian64(encoding.AppendBigEndian64(ids[i][:0], msb), lsb)
	}
	return ids, nil
}

// SetOriginIDs records the replication sources that have already applied
// this mutation.
func (m *Mutation) SetOriginIDs(ids []uuid.UUID) *Mutation {
	m.attrs.Set(AttrOriginIDs, EncodeOriginIDs(ids))
	return m
}

// OriginIDs returns the replication sources recorded on the mutation, in the
// order they were set. It returns an empty list when none were recorded and
// ErrMalformedEncoding when the attribute is truncated.
func (m *Mutation) OriginIDs() ([]uuid.UUID, error) {
	b := m.attrs.Get(AttrOriginIDs)
	if b == nil {
		return []uuid.UUID{}, nil
	}
	return DecodeOriginIDs(b)
}

// HasOriginID reports whether id is among the recorded origins. A malformed
// attribute reports false.
func (m *Mutation) HasOriginID(id uuid.UUID) bool {
	ids, err := m.OriginIDs()
	if err != nil {
		return false
	}
	for _, have := range ids {
		if have == id {
			return true
		}
	}
	return false
}
