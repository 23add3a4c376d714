package rowmutation

// options.go implements the configuration shared by the tracker and the
// cell-block helpers.

import (
	"fmt"

	"github.com/aalhour/rowmutation/internal/checksum"
	"github.com/aalhour/rowmutation/internal/compression"
	"github.com/aalhour/rowmutation/internal/logging"
)

// Logger is an alias for the logging.Logger interface.
// This allows users to pass their own logger implementation.
type Logger = logging.Logger

// CompressionType is an alias for the cell-block compression type.
type CompressionType = compression.Type

// Compression type constants
const (
	NoCompression     = compression.NoCompression
	SnappyCompression = compression.SnappyCompression
	ZlibCompression   = compression.ZlibCompression
	LZ4Compression    = compression.LZ4Compression
	LZ4HCCompression  = compression.LZ4HCCompression
	ZstdCompression   = compression.ZstdCompression
)

// ChecksumType is an alias for the cell-block checksum type.
type ChecksumType = checksum.Type

// Checksum type constants
const (
	ChecksumTypeNoChecksum = checksum.TypeNoChecksum
	ChecksumTypeCRC32C     = checksum.TypeCRC32C
	ChecksumTypeXXH3       = checksum.TypeXXH3
)

// DefaultFlushThreshold is the pending footprint, in bytes, at which a
// FootprintTracker asks for a flush.
const DefaultFlushThreshold = 2 * 1024 * 1024

// Options configures footprint accounting, diagnostics and cell blocks.
type Options struct {
	// CostModel is used for every footprint estimate.
	// Default: DefaultCostModel()
	CostModel CostModel

	// Logger receives tracker and cell-block messages.
	// If nil, a WARN-level logger writing to stderr is used.
	Logger Logger

	// CellBlock selects compression and checksum for EncodeCellBlockWith
	// and DecodeMutationWith.
	// If nil, DefaultCellBlockOptions() is used.
	CellBlock *CellBlockOptions

	// FlushThreshold is the pending footprint at which ShouldFlush reports
	// true. 0 disables flush requests.
	// Default: DefaultFlushThreshold
	FlushThreshold uint64

	// MaxSummaryColumns bounds the cell details logged for a mutation.
	// Default: DefaultMaxColumns
	MaxSummaryColumns int
}

// DefaultOptions returns options with the default cost model, a 2 MiB flush
// threshold and CRC32C-checked, uncompressed cell blocks.
func DefaultOptions() *Options {
	return &Options{
		CostModel:         DefaultCostModel(),
		CellBlock:         DefaultCellBlockOptions(),
		FlushThreshold:    DefaultFlushThreshold,
		MaxSummaryColumns: DefaultMaxColumns,
	}
}

// Validate checks that the options can be used.
func (o *Options) Validate() error {
	if !o.CostModel.Valid() {
		return fmt.Errorf("%w: cost model alignment %d is not a power of two or reference size %d is not positive",
			ErrInvalidArgument, o.CostModel.Alignment, o.CostModel.Reference)
	}
	if o.MaxSummaryColumns < 0 {
		return fmt.Errorf("%w: MaxSummaryColumns %d is negative", ErrInvalidArgument, o.MaxSummaryColumns)
	}
	if o.CellBlock != nil {
		if err := o.CellBlock.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CellBlockOptions resolves the cell-block settings o selects: o.CellBlock,
// or DefaultCellBlockOptions when it is nil, with a nil Logger falling back
// to o.Logger. The result is a copy. A nil o returns the defaults.
func (o *Options) CellBlockOptions() *CellBlockOptions {
	if o == nil {
		return DefaultCellBlockOptions()
	}
	cb := DefaultCellBlockOptions()
	if o.CellBlock != nil {
		*cb = *o.CellBlock
	}
	if cb.Logger == nil {
		cb.Logger = o.Logger
	}
	return cb
}

// CellBlockOptions selects how EncodeCellBlock seals a block.
type CellBlockOptions struct {
	// Compression applied to the cell payload.
	// Default: NoCompression
	Compression CompressionType

	// Checksum protecting the block.
	// Default: ChecksumTypeCRC32C
	Checksum ChecksumType

	// Logger receives decode failures. If nil, a WARN-level logger writing
	// to stderr is used.
	Logger Logger
}

// DefaultCellBlockOptions returns uncompressed, CRC32C-checked blocks.
func DefaultCellBlockOptions() *CellBlockOptions {
	return &CellBlockOptions{
		Compression: NoCompression,
		Checksum:    ChecksumTypeCRC32C,
	}
}

// Validate checks that the compression and checksum types are known.
func (o *CellBlockOptions) Validate() error {
	if !o.Compression.IsSupported() {
		return fmt.Errorf("%w: compression %s", ErrInvalidArgument, o.Compression)
	}
	if !o.Checksum.IsSupported() {
		return fmt.Errorf("%w: checksum %s", ErrInvalidArgument, o.Checksum)
	}
	return nil
}
