// Package encoding provides the binary primitives behind the mutation
// attribute codecs and the cell-block layout.
//
// Two families of encodings live here:
//   - Big-endian fixed-width integers, used by attribute payloads that must
//     match a Java DataOutput stream byte for byte (origin identifiers).
//   - Little-endian fixed-width integers and 7-bit varints with MSB
//     continuation, used by the cell-block layout.
package encoding

import (
	"encoding/binary"
	"errors"
)

// MaxVarint32Length is the maximum number of bytes a varint32 can occupy.
const MaxVarint32Length = 5

// MaxVarint64Length is the maximum number of bytes a varint64 can occupy.
const MaxVarint64Length = 10

var (
	// ErrBufferTooSmall is returned when the buffer doesn't have enough space.
	ErrBufferTooSmall = errors.New("encoding: buffer too small")

	// ErrVarintOverflow is returned when a varint exceeds the maximum value.
	ErrVarintOverflow = errors.New("encoding: varint overflow")

	// ErrVarintTermination is returned when varint doesn't terminate properly.
	ErrVarintTermination = errors.New("encoding: varint not terminated")
)

// -----------------------------------------------------------------------------
// Fixed-width encoding (big-endian)
// -----------------------------------------------------------------------------

// AppendBigEndian32 appends a big-endian uint32 to dst and returns the extended slice.
func AppendBigEndian32(dst []byte, value uint32) []byte {
	return binary.BigEndian.AppendUint32(dst, value)
}

// AppendBigEndian64 appends a big-endian uint64 to dst and returns the extended slice.
func AppendBigEndian64(dst []byte, value uint64) []byte {
	return binary.BigEndian.AppendUint64(dst, value)
}

// DecodeBigEndian32 decodes a uint32 from a 4-byte big-endian buffer.
// REQUIRES: src has at least 4 bytes.
func DecodeBigEndian32(src []byte) uint32 {
	return binary.BigEndian.Uint32(src)
}

// DecodeBigEndian64 decodes a uint64 from an 8-byte big-endian buffer.
// REQUIRES: src has at least 8 bytes.
func DecodeBigEndian64(src []byte) uint64 {
	return binary.BigEndian.Uint64(src)
}

// -----------------------------------------------------------------------------
// Fixed-width encoding (little-endian)
// -----------------------------------------------------------------------------

// DecodeFixed32 decodes a uint32 from a 4-byte little-endian buffer.
// REQUIRES: src has at least 4 bytes.
func DecodeFixed32(src []byte) uint32 {
	return binary.LittleEndian.Uint32(src)
}

// AppendFixed32 appends a little-endian uint32 to dst and returns the extended slice.
func AppendFixed32(dst []byte, value uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, value)
}

// -----------------------------------------------------------------------------
// Variable-length encoding (7-bit with MSB continuation)
// -----------------------------------------------------------------------------

// EncodeVarint32 encodes a uint32 as a varint into dst.
// Returns the number of bytes written.
// REQUIRES: dst has at least MaxVarint32Length bytes.
func EncodeVarint32(dst []byte, value uint32) int {
	const B = 128
	i := 0
	for value >= B {
		dst[i] = byte(value&(B-1)) | B
		value >>= 7
		i++
	}
	dst[i] = byte(value)
	return i + 1
}

// AppendVarint32 appends a uint32 as a varint to dst and returns the extended slice.
func AppendVarint32(dst []byte, value uint32) []byte {
	var buf [MaxVarint32Length]byte
	n := EncodeVarint32(buf[:], value)
	return append(dst, buf[:n]...)
}

// DecodeVarint32 decodes a varint32 from src.
// Returns the decoded value and the number of bytes consumed.
// Returns (0, 0, error) on error.
func DecodeVarint32(src []byte) (value uint32, bytesRead int, err error) {
	var result uint32
	for shift := uint(0); shift < 32; shift += 7 {
		if bytesRead >= len(src) {
			return 0, 0, ErrVarintTermination
		}
		b := src[bytesRead]
		bytesRead++
		if b < 128 {
			result |= uint32(b) << shift
			return result, bytesRead, nil
		}
		result |= uint32(b&0x7f) << shift
	}
	return 0, 0, ErrVarintOverflow
}

// AppendVarint64 appends a uint64 as a varint to dst and returns the extended slice.
func AppendVarint64(dst []byte, value uint64) []byte {
	for value >= 128 {
		dst = append(dst, byte(value&127)|128)
		value >>= 7
	}
	return append(dst, byte(value))
}

// DecodeVarint64 decodes a varint64 from src.
// Returns the decoded value and the number of bytes consumed.
// Returns (0, 0, error) on error.
func DecodeVarint64(src []byte) (value uint64, bytesRead int, err error) {
	var result uint64
	for shift := uint(0); shift < 64; shift += 7 {
		if bytesRead >= len(src) {
			return 0, 0, ErrVarintTermination
		}
		b := src[bytesRead]
		bytesRead++
		if b < 128 {
			result |= uint64(b) << shift
			return result, bytesRead, nil
		}
		result |= uint64(b&0x7f) << shift
	}
	return 0, 0, ErrVarintOverflow
}

// -----------------------------------------------------------------------------
// Signed varint (zigzag encoding)
// -----------------------------------------------------------------------------

// I64ToZigzag converts a signed int64 to an unsigned uint64 using zigzag encoding.
func I64ToZigzag(v int64) uint64 {
	return (uint64(v) << 1) ^ uint64(v>>63)
}

// ZigzagToI64 converts a zigzag-encoded uint64 back to a signed int64.
func ZigzagToI64(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}

// AppendVarsignedint64 appends a signed int64 using zigzag + varint encoding.
func AppendVarsignedint64(dst []byte, v int64) []byte {
	return AppendVarint64(dst, I64ToZigzag(v))
}

// -----------------------------------------------------------------------------
// Length-prefixed slices
// -----------------------------------------------------------------------------

// AppendLengthPrefixedSlice appends a length-prefixed slice to dst.
// Format: [varint32 length][bytes]
func AppendLengthPrefixedSlice(dst []byte, value []byte) []byte {
	dst = AppendVarint32(dst, uint32(len(value)))
	return append(dst, value...)
}

// DecodeLengthPrefixedSlice decodes a length-prefixed slice from src.
// Returns the slice (pointing into src), bytes consumed, and any error.
func DecodeLengthPrefixedSlice(src []byte) (value []byte, bytesRead int, err error) {
	length, n, err := DecodeVarint32(src)
	if err != nil {
		return nil, 0, err
	}
	bytesRead = n
	if uint64(bytesRead)+uint64(length) > uint64(len(src)) {
		return nil, 0, ErrBufferTooSmall
	}
	value = src[bytesRead : bytesRead+int(length)]
	bytesRead += int(length)
	return value, bytesRead, nil
}

// -----------------------------------------------------------------------------
// Sequential reader
// -----------------------------------------------------------------------------

// Slice is a helper for reading sequentially from a byte slice.
// Every Get* method returns false and leaves the position untouched when the
// remaining input cannot satisfy the read.
type Slice struct {
	data []byte
	pos  int
}

// NewSlice creates a new Slice from a byte slice.
func NewSlice(data []byte) *Slice {
	return &Slice{data: data, pos: 0}
}

// Remaining returns the number of bytes remaining.
func (s *Slice) Remaining() int {
	return len(s.data) - s.pos
}

// GetBigEndian32 reads a big-endian 32-bit value.
func (s *Slice) GetBigEndian32() (uint32, bool) {
	if s.Remaining() < 4 {
		return 0, false
	}
	v := DecodeBigEndian32(s.data[s.pos:])
	s.pos += 4
	return v, true
}

// GetBigEndian64 reads a big-endian 64-bit value.
func (s *Slice) GetBigEndian64() (uint64, bool) {
	if s.Remaining() < 8 {
		return 0, false
	}
	v := DecodeBigEndian64(s.data[s.pos:])
	s.pos += 8
	return v, true
}

// GetVarint32 reads a varint32.
func (s *Slice) GetVarint32() (uint32, bool) {
	v, n, err := DecodeVarint32(s.data[s.pos:])
	if err != nil {
		return 0, false
	}
	s.pos += n
	return v, true
}

// GetVarsignedint64 reads a zigzag-encoded signed int64.
func (s *Slice) GetVarsignedint64() (int64, bool) {
	u, n, err := DecodeVarint64(s.data[s.pos:])
	if err != nil {
		return 0, false
	}
	s.pos += n
	return ZigzagToI64(u), true
}

// GetByte reads a single byte.
func (s *Slice) GetByte() (byte, bool) {
	if s.Remaining() < 1 {
		return 0, false
	}
	b := s.data[s.pos]
	s.pos++
	return b, true
}

// GetLengthPrefixedSlice reads a length-prefixed slice.
func (s *Slice) GetLengthPrefixedSlice() ([]byte, bool) {
	v, n, err := DecodeLengthPrefixedSlice(s.data[s.pos:])
	if err != nil {
		return nil, false
	}
	s.pos += n
	return v, true
}
