// Package compression compresses cell blocks before they are handed to the
// transport layer.
//
// A cell block records its codec in a 1-byte type tag ahead of the payload,
// so the numeric values below are part of the block layout and MUST NOT change.
package compression

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type represents a compression algorithm.
type Type uint8

const (
	// NoCompression stores the payload as is.
	NoCompression Type = 0x0

	// SnappyCompression uses Google Snappy block format.
	SnappyCompression Type = 0x1

	// ZlibCompression uses zlib (deflate with header).
	ZlibCompression Type = 0x2

	// LZ4Compression uses the LZ4 frame format at the fast level.
	LZ4Compression Type = 0x4

	// LZ4HCCompression uses the LZ4 frame format at a high compression level.
	LZ4HCCompression Type = 0x5

	// ZstdCompression uses Zstandard.
	ZstdCompression Type = 0x7
)

var (
	// ErrUnsupported is returned for a type tag with no codec.
	ErrUnsupported = errors.New("compression: unsupported type")

	// ErrSizeMismatch is returned when a payload does not decompress to the
	// length the caller expects.
	ErrSizeMismatch = errors.New("compression: decompressed size mismatch")
)

// String returns the human-readable name of the compression type.
func (t Type) String() string {
	switch t {
	case NoCompression:
		return "NoCompression"
	case SnappyCompression:
		return "Snappy"
	case ZlibCompression:
		return "Zlib"
	case LZ4Compression:
		return "LZ4"
	case LZ4HCCompression:
		return "LZ4HC"
	case ZstdCompression:
		return "ZSTD"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// IsSupported returns true if the compression type has a codec.
func (t Type) IsSupported() bool {
	switch t {
	case NoCompression, SnappyCompression, ZlibCompression, LZ4Compression, LZ4HCCompression, ZstdCompression:
		return true
	default:
		return false
	}
}

// Compress compresses data using the specified compression type.
func Compress(t Type, data []byte) ([]byte, error) {
	switch t {
	case NoCompression:
		return data, nil

	case SnappyCompression:
		return snappy.Encode(nil, data), nil

	case ZlibCompression:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("zlib write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("zlib close: %w", err)
		}
		return buf.Bytes(), nil

	case LZ4Compression:
		return compressLZ4(data, lz4.Fast)

	case LZ4HCCompression:
		return compressLZ4(data, lz4.Level9)

	case ZstdCompression:
		enc, err := zstdEncoder()
		if err != nil {
			return nil, err
		}
		return enc.EncodeAll(data, nil), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
	}
}

func compressLZ4(data []byte, level lz4.CompressionLevel) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.CompressionLevelOption(level)); err != nil {
		return nil, fmt.Errorf("lz4 apply level: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress decompresses data using the specified compression type.
// rawLen is the exact decompressed length recorded by the caller; output of
// any other length fails with ErrSizeMismatch. Output is never allocated
// past rawLen, whatever size the compressed stream itself declares.
func Decompress(t Type, data []byte, rawLen int) ([]byte, error) {
	if rawLen < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrSizeMismatch, rawLen)
	}
	switch t {
	case NoCompression:
		return checkLength(data, rawLen)

	case SnappyCompression:
		n, err := snappy.DecodedLen(data)
		if err != nil {
			return nil, fmt.Errorf("snappy decode: %w", err)
		}
		if n != rawLen {
			return nil, fmt.Errorf("%w: snappy declares %d bytes, want %d", ErrSizeMismatch, n, rawLen)
		}
		if rawLen > len(data)*maxSnappyExpansion {
			return nil, fmt.Errorf("%w: %d snappy bytes cannot expand to %d", ErrSizeMismatch, len(data), rawLen)
		}
		out, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("snappy decode: %w", err)
		}
		return checkLength(out, rawLen)

	case ZlibCompression:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zlib reader: %w", err)
		}
		defer func() { _ = r.Close() }()
		return readLimited(r, rawLen)

	case LZ4Compression, LZ4HCCompression:
		return readLimited(lz4.NewReader(bytes.NewReader(data)), rawLen)

	case ZstdCompression:
		if rawLen > maxPrealloc {
			r, err := zstd.NewReader(bytes.NewReader(data),
				zstd.WithDecoderConcurrency(1),
				zstd.WithDecoderMaxMemory(uint64(rawLen)+1))
			if err != nil {
				return nil, fmt.Errorf("zstd reader: %w", err)
			}
			defer r.Close()
			return readLimited(r, rawLen)
		}
		dec, err := zstdDecoder()
		if err != nil {
			return nil, err
		}
		out, err := dec.DecodeAll(data, make([]byte, 0, rawLen))
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return checkLength(out, rawLen)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
	}
}

// maxPrealloc caps how much a length from untrusted input may reserve up
// front. Larger outputs grow only as the codec actually produces bytes.
const maxPrealloc = 1 << 20

// maxSnappyExpansion bounds the snappy block ratio: the densest element is a
// 3-byte copy that emits 64 bytes.
const maxSnappyExpansion = 32

func boundedHint(n int) int {
	if n < 0 {
		return 0
	}
	return min(n, maxPrealloc)
}

// readLimited reads at most rawLen+1 bytes from r, enough to tell an
// oversized stream from an exact one.
func readLimited(r io.Reader, rawLen int) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, boundedHint(rawLen)))
	if _, err := buf.ReadFrom(io.LimitReader(r, int64(rawLen)+1)); err != nil {
		return nil, err
	}
	return checkLength(buf.Bytes(), rawLen)
}

func checkLength(out []byte, rawLen int) ([]byte, error) {
	if len(out) != rawLen {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, len(out), rawLen)
	}
	return out, nil
}

// zstd encoders and decoders are safe for concurrent EncodeAll/DecodeAll and
// expensive to build, so one of each is shared by the package.
var (
	zstdOnce    sync.Once
	zstdEnc     *zstd.Encoder
	zstdDec     *zstd.Decoder
	zstdInitErr error
)

func initZstd() {
	zstdEnc, zstdInitErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if zstdInitErr != nil {
		zstdInitErr = fmt.Errorf("zstd encoder: %w", zstdInitErr)
		return
	}
	zstdDec, zstdInitErr = zstd.NewReader(nil, zstd.WithDecodeAllCapLimit(true))
	if zstdInitErr != nil {
		zstdInitErr = fmt.Errorf("zstd decoder: %w", zstdInitErr)
	}
}

func zstdEncoder() (*zstd.Encoder, error) {
	zstdOnce.Do(initZstd)
	return zstdEnc, zstdInitErr
}

func zstdDecoder() (*zstd.Decoder, error) {
	zstdOnce.Do(initZstd)
	return zstdDec, zstdInitErr
}
