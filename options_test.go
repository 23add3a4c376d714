package rowmutation

import (
	"errors"
	"testing"

	"github.com/aalhour/rowmutation/internal/logging"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if opts.FlushThreshold != DefaultFlushThreshold {
		t.Errorf("FlushThreshold = %d", opts.FlushThreshold)
	}
	if opts.MaxSummaryColumns != DefaultMaxColumns {
		t.Errorf("MaxSummaryColumns = %d", opts.MaxSummaryColumns)
	}
	if opts.CellBlock.Compression != NoCompression || opts.CellBlock.Checksum != ChecksumTypeCRC32C {
		t.Errorf("CellBlock = %+v", opts.CellBlock)
	}
	if opts.CostModel != DefaultCostModel() {
		t.Errorf("CostModel = %+v", opts.CostModel)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"zero cost model", func(o *Options) { o.CostModel = CostModel{} }},
		{"odd alignment", func(o *Options) { o.CostModel.Alignment = 6 }},
		{"negative columns", func(o *Options) { o.MaxSummaryColumns = -1 }},
		{"bad compression", func(o *Options) { o.CellBlock.Compression = CompressionType(200) }},
		{"bad checksum", func(o *Options) { o.CellBlock.Checksum = ChecksumType(200) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(opts)
			if err := opts.Validate(); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Validate() = %v, want ErrInvalidArgument", err)
			}
		})
	}

	opts := DefaultOptions()
	opts.CellBlock = nil
	if err := opts.Validate(); err != nil {
		t.Errorf("nil CellBlock: Validate() = %v", err)
	}
}

func TestOptionsCellBlockOptions(t *testing.T) {
	var nilOpts *Options
	if got := nilOpts.CellBlockOptions(); *got != *DefaultCellBlockOptions() {
		t.Errorf("nil Options: %+v", got)
	}

	opts := DefaultOptions()
	opts.Logger = logging.Discard
	opts.CellBlock = &CellBlockOptions{Compression: ZstdCompression, Checksum: ChecksumTypeXXH3}
	got := opts.CellBlockOptions()
	if got.Compression != ZstdCompression || got.Checksum != ChecksumTypeXXH3 {
		t.Errorf("CellBlockOptions() = %+v", got)
	}
	if got.Logger != logging.Discard {
		t.Errorf("Logger = %v, want the Options logger", got.Logger)
	}
	if opts.CellBlock.Logger != nil {
		t.Error("CellBlockOptions modified Options.CellBlock")
	}

	opts.CellBlock = nil
	if got := opts.CellBlockOptions(); got.Compression != NoCompression || got.Checksum != ChecksumTypeCRC32C {
		t.Errorf("nil CellBlock: %+v", got)
	}
}
