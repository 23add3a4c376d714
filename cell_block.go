package rowmutation

// cell_block.go serializes a mutation's cells into a cell block and back.

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/aalhour/rowmutation/internal/cellblock"
	"github.com/aalhour/rowmutation/internal/logging"
)

var (
	// ErrCorruptCellBlock is returned when a cell block is malformed.
	ErrCorruptCellBlock = cellblock.ErrCorrupted

	// ErrCellBlockChecksum is returned when a cell block fails its checksum.
	ErrCellBlockChecksum = cellblock.ErrChecksumMismatch
)

// EncodeCellBlock writes every cell of the mutation, in family order, into a
// sealed cell block. A nil opts uses DefaultCellBlockOptions.
func (m *Mutation) EncodeCellBlock(opts *CellBlockOptions) ([]byte, error) {
	if opts == nil {
		opts = DefaultCellBlockOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	b := cellblock.NewBuilder(m.cellBlockSizeHint())
	m.families.Ascend(func(_ []byte, cells []Cell) bool {
		for _, c := range cells {
			b.Add(c.Row(), c.Family(), c.Qualifier(), c.Timestamp(), byte(c.Type()), c.Value())
		}
		return true
	})
	n := b.Count()
	block, err := b.Finish(opts.Compression, opts.Checksum)
	if err != nil {
		return nil, err
	}
	logging.OrDefault(opts.Logger).Debugf("%sencoded %d cells of row %q into %d bytes (%s, %s)",
		logging.NSCellBlock, n, m.row, len(block), opts.Compression, opts.Checksum)
	return block, nil
}

// EncodeCellBlockWith seals the mutation's cells using the cell-block
// settings of opts, see Options.CellBlockOptions. A nil opts uses
// DefaultOptions.
func (m *Mutation) EncodeCellBlockWith(opts *Options) ([]byte, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return m.EncodeCellBlock(opts.CellBlockOptions())
}

// cellBlockSizeHint approximates the encoded size of the cells.
func (m *Mutation) cellBlockSizeHint() int {
	n := 0
	m.families.Ascend(func(_ []byte, cells []Cell) bool {
		for _, c := range cells {
			n += len(c.Row()) + len(c.Family()) + len(c.Qualifier()) + len(c.Value()) + 16
		}
		return true
	})
	return n
}

// DecodeCellBlock returns the cells of a block in stored order. The cells own
// their bytes and do not alias data.
func DecodeCellBlock(data []byte) ([]Cell, error) {
	var cells []Cell
	err := cellblock.Iterate(data, func(e cellblock.Entry) error {
		cells = append(cells, entryToCell(e))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cells, nil
}

func entryToCell(e cellblock.Entry) *KeyValue {
	return NewKeyValue(
		cloneBytes(e.Row),
		cloneBytes(e.Family),
		cloneBytes(e.Qualifier),
		e.Timestamp,
		CellType(e.Type),
		cloneBytes(e.Value),
	)
}

// DecodeMutation rebuilds a mutation of the given kind from a cell block.
// Every cell must belong to the same row; an empty block has no row and is
// rejected. Failures are logged through opts.Logger.
func DecodeMutation(kind Kind, data []byte, opts *CellBlockOptions) (*Mutation, error) {
	if opts == nil {
		opts = DefaultCellBlockOptions()
	}
	m, err := decodeMutation(kind, data)
	if err != nil {
		logging.OrDefault(opts.Logger).Warnf("%sdecode of %d-byte block failed: %v",
			logging.NSCellBlock, len(data), err)
		return nil, err
	}
	return m, nil
}

// DecodeMutationWith is DecodeMutation with the cell-block settings of opts.
func DecodeMutationWith(kind Kind, data []byte, opts *Options) (*Mutation, error) {
	return DecodeMutation(kind, data, opts.CellBlockOptions())
}

func decodeMutation(kind Kind, data []byte) (*Mutation, error) {
	var m *Mutation
	err := cellblock.Iterate(data, func(e cellblock.Entry) error {
		if m == nil {
			var err error
			if m, err = NewMutation(kind, cloneBytes(e.Row)); err != nil {
				return err
			}
		} else if !bytes.Equal(e.Row, m.row) {
			return fmt.Errorf("%w: block mixes rows %q and %q", ErrInvalidArgument, m.row, e.Row)
		}
		kv := entryToCell(e)
		m.families.Append(kv.Family(), kv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: block holds no cells", ErrInvalidArgument)
	}
	return m, nil
}

// IsCorruptCellBlock reports whether err means the block bytes are damaged,
// as opposed to a well-formed block with unusable contents.
func IsCorruptCellBlock(err error) bool {
	return errors.Is(err, cellblock.ErrCorrupted) ||
		errors.Is(err, cellblock.ErrChecksumMismatch) ||
		errors.Is(err, cellblock.ErrTooSmall)
}
