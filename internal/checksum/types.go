package checksum

import (
	"github.com/zeebo/xxh3"
)

// Type represents the type of checksum algorithm.
// The numeric values are stored in cell blocks and MUST NOT change.
type Type uint8

const (
	// TypeNoChecksum means no checksum is used.
	TypeNoChecksum Type = 0
	// TypeCRC32C is masked CRC32C (Castagnoli).
	TypeCRC32C Type = 1
	// TypeXXH3 is the low 32 bits of XXH3-64.
	TypeXXH3 Type = 4
)

// String returns a human-readable name for the checksum type.
func (t Type) String() string {
	switch t {
	case TypeNoChecksum:
		return "NoChecksum"
	case TypeCRC32C:
		return "CRC32C"
	case TypeXXH3:
		return "XXH3"
	default:
		return "Unknown"
	}
}

// IsSupported returns true if Compute knows the algorithm.
func (t Type) IsSupported() bool {
	return t == TypeNoChecksum || t == TypeCRC32C || t == TypeXXH3
}

// Compute returns the checksum of data followed by lastByte.
// Blocks carry their compression tag outside the payload; passing it as
// lastByte covers it without copying the payload.
func Compute(t Type, data []byte, lastByte byte) uint32 {
	switch t {
	case TypeCRC32C:
		crc := Value(data)
		crc = Extend(crc, []byte{lastByte})
		return Mask(crc)
	case TypeXXH3:
		h := xxh3.New()
		_, _ = h.Write(data)
		_, _ = h.Write([]byte{lastByte})
		return uint32(h.Sum64())
	default:
		return 0
	}
}
