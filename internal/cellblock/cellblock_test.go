package cellblock

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/aalhour/rowmutation/internal/checksum"
	"github.com/aalhour/rowmutation/internal/compression"
	"github.com/aalhour/rowmutation/internal/encoding"
)

var allCompressions = []compression.Type{
	compression.NoCompression,
	compression.SnappyCompression,
	compression.ZlibCompression,
	compression.LZ4Compression,
	compression.LZ4HCCompression,
	compression.ZstdCompression,
}

func sampleEntries() []Entry {
	return []Entry{
		{Row: []byte("r1"), Family: []byte("cf"), Qualifier: []byte("q1"), Timestamp: 1, Type: 4, Value: []byte("v1")},
		{Row: []byte("r1"), Family: []byte("cf"), Qualifier: []byte("q2"), Timestamp: 2, Type: 4, Value: []byte("v2")},
		{Row: []byte("r1"), Family: []byte("cf2"), Qualifier: []byte("q1"), Timestamp: math.MaxInt64, Type: 4, Value: []byte("v3")},
		{Row: []byte("r1"), Family: []byte("cf2"), Qualifier: nil, Timestamp: -5, Type: 14, Value: nil},
	}
}

func build(t *testing.T, entries []Entry, ct compression.Type, cs checksum.Type) []byte {
	t.Helper()
	b := NewBuilder(128)
	for _, e := range entries {
		b.Add(e.Row, e.Family, e.Qualifier, e.Timestamp, e.Type, e.Value)
	}
	if b.Count() != uint32(len(entries)) {
		t.Fatalf("Count = %d, want %d", b.Count(), len(entries))
	}
	block, err := b.Finish(ct, cs)
	if err != nil {
		t.Fatalf("Finish(%s, %s): %v", ct, cs, err)
	}
	return block
}

func entriesEqual(a, b Entry) bool {
	return bytes.Equal(a.Row, b.Row) &&
		bytes.Equal(a.Family, b.Family) &&
		bytes.Equal(a.Qualifier, b.Qualifier) &&
		a.Timestamp == b.Timestamp &&
		a.Type == b.Type &&
		bytes.Equal(a.Value, b.Value)
}

func TestRoundTrip(t *testing.T) {
	want := sampleEntries()
	for _, ct := range allCompressions {
		for _, cs := range []checksum.Type{checksum.TypeNoChecksum, checksum.TypeCRC32C, checksum.TypeXXH3} {
			t.Run(fmt.Sprintf("%s/%s", ct, cs), func(t *testing.T) {
				block := build(t, want, ct, cs)

				got, err := Decode(block)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if len(got) != len(want) {
					t.Fatalf("decoded %d entries, want %d", len(got), len(want))
				}
				for i := range want {
					if !entriesEqual(got[i], want[i]) {
						t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
					}
				}

				info, err := ReadInfo(block)
				if err != nil {
					t.Fatalf("ReadInfo: %v", err)
				}
				if info.Compression != ct || info.Checksum != cs {
					t.Errorf("info = %+v", info)
				}
			})
		}
	}
}

func TestEmptyBlock(t *testing.T) {
	block := build(t, nil, compression.NoCompression, checksum.TypeCRC32C)
	got, err := Decode(block)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("decoded %d entries from empty block", len(got))
	}
}

func TestGoldenUncompressedLayout(t *testing.T) {
	b := NewBuilder(0)
	b.Add([]byte("r"), []byte("f"), []byte("q"), 1, 4, []byte("v"))
	block, err := b.Finish(compression.NoCompression, checksum.TypeNoChecksum)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x00,       // compression
		0x00,       // checksum type
		0x0B,       // raw length
		0x01,       // count
		0x01, 'r',  // row
		0x01, 'f',  // family
		0x01, 'q',  // qualifier
		0x02,       // zigzag(1)
		0x04,       // type
		0x01, 'v',  // value
		0, 0, 0, 0, // no checksum
	}
	if !bytes.Equal(block, want) {
		t.Errorf("block = %x\nwant    %x", block, want)
	}
}

func TestEveryBitFlipDetected(t *testing.T) {
	for _, cs := range []checksum.Type{checksum.TypeCRC32C, checksum.TypeXXH3} {
		for _, ct := range []compression.Type{compression.NoCompression, compression.SnappyCompression} {
			block := build(t, sampleEntries(), ct, cs)
			for i := range block {
				for bit := 0; bit < 8; bit++ {
					corrupt := append([]byte(nil), block...)
					corrupt[i] ^= 1 << bit
					if _, err := Decode(corrupt); err == nil {
						t.Fatalf("%s/%s: flip of byte %d bit %d not detected", ct, cs, i, bit)
					}
				}
			}
		}
	}
}

func TestTruncatedBlocks(t *testing.T) {
	block := build(t, sampleEntries(), compression.NoCompression, checksum.TypeXXH3)
	for n := 0; n < len(block); n++ {
		if _, err := Decode(block[:n]); err == nil {
			t.Fatalf("truncation to %d bytes not detected", n)
		}
	}
	if _, err := Decode(block[:2]); !errors.Is(err, ErrTooSmall) {
		t.Errorf("2-byte block: err = %v, want ErrTooSmall", err)
	}
}

func TestChecksumMismatchSentinel(t *testing.T) {
	block := build(t, sampleEntries(), compression.NoCompression, checksum.TypeCRC32C)
	block[len(block)-1] ^= 0xFF
	if _, err := Decode(block); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("err = %v, want ErrChecksumMismatch", err)
	}
}

func TestUnknownTypesRejected(t *testing.T) {
	block := build(t, sampleEntries(), compression.NoCompression, checksum.TypeNoChecksum)

	bad := append([]byte(nil), block...)
	bad[0] = 0x3
	if _, err := Decode(bad); !errors.Is(err, ErrCorrupted) {
		t.Errorf("unknown compression: err = %v, want ErrCorrupted", err)
	}

	bad = append([]byte(nil), block...)
	bad[1] = 0x9
	if _, err := Decode(bad); !errors.Is(err, ErrCorrupted) {
		t.Errorf("unknown checksum: err = %v, want ErrCorrupted", err)
	}

	b := NewBuilder(0)
	if _, err := b.Finish(compression.NoCompression, checksum.Type(9)); err == nil {
		t.Error("Finish accepted an unknown checksum type")
	}
	b = NewBuilder(0)
	if _, err := b.Finish(compression.Type(3), checksum.TypeCRC32C); !errors.Is(err, compression.ErrUnsupported) {
		t.Errorf("Finish(unknown compression): err = %v", err)
	}
}

// seal frames stored exactly as Finish does, with whatever raw length the
// caller claims.
func seal(ct compression.Type, cs checksum.Type, rawLen uint32, stored []byte) []byte {
	out := []byte{byte(ct), byte(cs)}
	out = encoding.AppendVarint32(out, rawLen)
	out = append(out, stored...)
	return encoding.AppendFixed32(out, checksum.Compute(cs, out[1:], byte(ct)))
}

func TestDeclaredLengthBoundsDecoding(t *testing.T) {
	payload := bytes.Repeat([]byte{0}, 4096)
	for _, ct := range allCompressions {
		stored, err := compression.Compress(ct, payload)
		if err != nil {
			t.Fatalf("Compress(%s): %v", ct, err)
		}
		for _, rawLen := range []uint32{16, math.MaxUint32} {
			t.Run(fmt.Sprintf("%s/%d", ct, rawLen), func(t *testing.T) {
				block := seal(ct, checksum.TypeCRC32C, rawLen, stored)
				if _, err := Decode(block); !errors.Is(err, ErrCorrupted) {
					t.Errorf("err = %v, want ErrCorrupted", err)
				}
			})
		}
	}

	// An 18-byte snappy block that claims 4 GiB of cells.
	huge := seal(compression.SnappyCompression, checksum.TypeCRC32C, math.MaxUint32,
		[]byte{0xff, 0xff, 0xff, 0xff, 0x0f, 0x00, 'x'})
	if _, err := Decode(huge); !errors.Is(err, ErrCorrupted) {
		t.Errorf("huge snappy claim: err = %v, want ErrCorrupted", err)
	}
}

func TestIterateStopsOnHandlerError(t *testing.T) {
	block := build(t, sampleEntries(), compression.ZstdCompression, checksum.TypeXXH3)
	stop := errors.New("stop")
	seen := 0
	err := Iterate(block, func(Entry) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("err = %v, want stop", err)
	}
	if seen != 2 {
		t.Errorf("handler called %d times, want 2", seen)
	}
}

func FuzzDecode(f *testing.F) {
	b := NewBuilder(0)
	b.Add([]byte("r"), []byte("f"), []byte("q"), 1, 4, []byte("v"))
	seed, _ := b.Finish(compression.NoCompression, checksum.TypeNoChecksum)
	f.Add(seed)
	f.Add([]byte{})
	f.Add([]byte{0x00, 0x00, 0x00, 0, 0, 0, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		// Must never panic.
		_, _ = Decode(data)
	})
}
