// Package cellblock implements the compact cell encoding used to hand a
// mutation's cells to the transport layer.
//
// Block Format:
//
//	Header:
//	  - 1 byte: compression type (compression.Type)
//	  - 1 byte: checksum type (checksum.Type)
//	  - varint32: uncompressed payload length
//	Payload (possibly compressed):
//	  - varint32: cell count
//	  - Cells (repeated):
//	    - length-prefixed row
//	    - length-prefixed family
//	    - length-prefixed qualifier
//	    - varsigned64 timestamp (zigzag)
//	    - 1 byte: cell type
//	    - length-prefixed value
//	Trailer:
//	  - 4 bytes: checksum (little-endian uint32) of everything after the
//	    compression byte, followed by the compression byte itself. With
//	    TypeNoChecksum the trailer is zero.
//
// Cells appear in the order they were added; for a mutation that is family
// order, then insertion order within a family.
package cellblock

import (
	"errors"
	"fmt"

	"github.com/aalhour/rowmutation/internal/checksum"
	"github.com/aalhour/rowmutation/internal/compression"
	"github.com/aalhour/rowmutation/internal/encoding"
	"github.com/aalhour/rowmutation/internal/mempool"
)

// headerMinSize is the smallest possible header: two type bytes and a
// one-byte varint.
const headerMinSize = 3

// trailerSize is the size of the checksum trailer.
const trailerSize = 4

var (
	// ErrCorrupted indicates a malformed cell block.
	ErrCorrupted = errors.New("cellblock: corrupted block")

	// ErrChecksumMismatch indicates the stored checksum does not match the payload.
	ErrChecksumMismatch = errors.New("cellblock: checksum mismatch")

	// ErrTooSmall indicates the block is smaller than header plus trailer.
	ErrTooSmall = errors.New("cellblock: too small")
)

// Entry is one decoded cell. Byte slices alias the decoded payload.
type Entry struct {
	Row       []byte
	Family    []byte
	Qualifier []byte
	Timestamp int64
	Type      byte
	Value     []byte
}

// Builder accumulates cells into a block.
// A Builder is not safe for concurrent use.
type Builder struct {
	body  []byte
	count uint32
}

// NewBuilder returns a Builder whose scratch buffer is sized for sizeHint
// bytes of encoded cells.
func NewBuilder(sizeHint int) *Builder {
	return &Builder{body: mempool.GlobalPool.Get(sizeHint)}
}

// Add appends one cell.
func (b *Builder) Add(row, family, qualifier []byte, ts int64, typ byte, value []byte) {
	b.body = encoding.AppendLengthPrefixedSlice(b.body, row)
	b.body = encoding.AppendLengthPrefixedSlice(b.body, family)
	b.body = encoding.AppendLengthPrefixedSlice(b.body, qualifier)
	b.body = encoding.AppendVarsignedint64(b.body, ts)
	b.body = append(b.body, typ)
	b.body = encoding.AppendLengthPrefixedSlice(b.body, value)
	b.count++
}

// Count returns the number of cells added so far.
func (b *Builder) Count() uint32 {
	return b.count
}

// Finish seals the block. The Builder must not be used afterwards.
func (b *Builder) Finish(ct compression.Type, cs checksum.Type) ([]byte, error) {
	defer b.release()

	if !cs.IsSupported() {
		return nil, fmt.Errorf("cellblock: unsupported checksum type %s", cs)
	}

	raw := mempool.GlobalPool.Get(encoding.MaxVarint32Length + len(b.body))
	raw = encoding.AppendVarint32(raw, b.count)
	raw = append(raw, b.body...)
	defer mempool.GlobalPool.Put(raw)

	stored, err := compression.Compress(ct, raw)
	if err != nil {
		return nil, fmt.Errorf("cellblock: compress: %w", err)
	}

	out := make([]byte, 0, headerMinSize+encoding.MaxVarint32Length+len(stored)+trailerSize)
	out = append(out, byte(ct), byte(cs))
	out = encoding.AppendVarint32(out, uint32(len(raw)))
	out = append(out, stored...)
	out = encoding.AppendFixed32(out, checksum.Compute(cs, out[1:], byte(ct)))
	return out, nil
}

func (b *Builder) release() {
	mempool.GlobalPool.Put(b.body)
	b.body = nil
}

// Info describes a block without decoding its cells.
type Info struct {
	Compression compression.Type
	Checksum    checksum.Type
	RawLength   uint32
	StoredBytes int
}

// ReadInfo parses and validates the header and checksum of a block.
func ReadInfo(data []byte) (Info, error) {
	info, _, err := open(data)
	return info, err
}

// open validates framing and checksum and returns the stored payload.
func open(data []byte) (Info, []byte, error) {
	if len(data) < headerMinSize+trailerSize {
		return Info{}, nil, ErrTooSmall
	}
	info := Info{
		Compression: compression.Type(data[0]),
		Checksum:    checksum.Type(data[1]),
	}
	if !info.Compression.IsSupported() {
		return Info{}, nil, fmt.Errorf("%w: unknown compression type %d", ErrCorrupted, data[0])
	}
	if !info.Checksum.IsSupported() {
		return Info{}, nil, fmt.Errorf("%w: unknown checksum type %d", ErrCorrupted, data[1])
	}
	rawLen, n, err := encoding.DecodeVarint32(data[2:])
	if err != nil {
		return Info{}, nil, fmt.Errorf("%w: payload length: %v", ErrCorrupted, err)
	}
	info.RawLength = rawLen

	bodyStart := 2 + n
	bodyEnd := len(data) - trailerSize
	if bodyEnd < bodyStart {
		return Info{}, nil, ErrTooSmall
	}
	stored := data[bodyStart:bodyEnd]
	info.StoredBytes = len(stored)

	want := encoding.DecodeFixed32(data[bodyEnd:])
	if got := checksum.Compute(info.Checksum, data[1:bodyEnd], data[0]); got != want {
		return Info{}, nil, fmt.Errorf("%w: got 0x%08x, want 0x%08x", ErrChecksumMismatch, got, want)
	}
	return info, stored, nil
}

// Iterate decodes a block and calls fn for each cell in order.
// Entries alias the decoded payload and must be copied to outlive the call.
// An error returned by fn stops iteration and is returned as is.
func Iterate(data []byte, fn func(Entry) error) error {
	info, stored, err := open(data)
	if err != nil {
		return err
	}
	// The header length bounds the decoded size, so a block cannot make the
	// decoder allocate more than it declares.
	raw, err := compression.Decompress(info.Compression, stored, int(info.RawLength))
	if err != nil {
		return fmt.Errorf("%w: decompress: %v", ErrCorrupted, err)
	}

	s := encoding.NewSlice(raw)
	count, ok := s.GetVarint32()
	if !ok {
		return fmt.Errorf("%w: cell count", ErrCorrupted)
	}
	for i := uint32(0); i < count; i++ {
		e, ok := readEntry(s)
		if !ok {
			return fmt.Errorf("%w: cell %d of %d truncated", ErrCorrupted, i, count)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	if s.Remaining() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorrupted, s.Remaining())
	}
	return nil
}

func readEntry(s *encoding.Slice) (Entry, bool) {
	var e Entry
	var ok bool
	if e.Row, ok = s.GetLengthPrefixedSlice(); !ok {
		return e, false
	}
	if e.Family, ok = s.GetLengthPrefixedSlice(); !ok {
		return e, false
	}
	if e.Qualifier, ok = s.GetLengthPrefixedSlice(); !ok {
		return e, false
	}
	if e.Timestamp, ok = s.GetVarsignedint64(); !ok {
		return e, false
	}
	if e.Type, ok = s.GetByte(); !ok {
		return e, false
	}
	if e.Value, ok = s.GetLengthPrefixedSlice(); !ok {
		return e, false
	}
	return e, true
}

// Decode returns every cell of a block.
func Decode(data []byte) ([]Entry, error) {
	var out []Entry
	err := Iterate(data, func(e Entry) error {
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
