package rowmutation

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestBuildersCellShape(t *testing.T) {
	row := []byte("row")
	fam := []byte("cf")
	qual := []byte("q")

	tests := []struct {
		name     string
		build    func(m *Mutation)
		wantQual []byte
		wantTS   int64
		wantType CellType
		wantVal  []byte
	}{
		{"AddColumn", func(m *Mutation) { m.AddColumn(fam, qual, []byte("v")) }, qual, 100, CellTypePut, []byte("v")},
		{"AddColumnAt", func(m *Mutation) { m.AddColumnAt(fam, qual, 7, []byte("v")) }, qual, 7, CellTypePut, []byte("v")},
		{"AddDeleteFamily", func(m *Mutation) { m.AddDeleteFamily(fam) }, nil, 100, CellTypeDeleteFamily, nil},
		{"AddDeleteFamilyAt", func(m *Mutation) { m.AddDeleteFamilyAt(fam, 3) }, nil, 3, CellTypeDeleteFamily, nil},
		{"AddDeleteFamilyVersion", func(m *Mutation) { m.AddDeleteFamilyVersion(fam, 4) }, nil, 4, CellTypeDeleteFamilyVersion, nil},
		{"AddDeleteColumns", func(m *Mutation) { m.AddDeleteColumns(fam, qual) }, qual, 100, CellTypeDeleteColumn, nil},
		{"AddDeleteColumnsAt", func(m *Mutation) { m.AddDeleteColumnsAt(fam, qual, 5) }, qual, 5, CellTypeDeleteColumn, nil},
		{"AddDeleteColumn", func(m *Mutation) { m.AddDeleteColumn(fam, qual) }, qual, 100, CellTypeDelete, nil},
		{"AddDeleteColumnAt", func(m *Mutation) { m.AddDeleteColumnAt(fam, qual, 6) }, qual, 6, CellTypeDelete, nil},
		{"AddIncrement", func(m *Mutation) { m.AddIncrement(fam, qual, -2) }, qual, 100, CellTypePut,
			[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := NewPut(row)
			m.SetTimestamp(100)
			tt.build(m)

			cells := m.CellsFor(fam)
			if len(cells) != 1 {
				t.Fatalf("got %d cells, want 1", len(cells))
			}
			c := cells[0]
			if !bytes.Equal(c.Row(), row) {
				t.Errorf("Row() = %q", c.Row())
			}
			if !bytes.Equal(c.Family(), fam) {
				t.Errorf("Family() = %q", c.Family())
			}
			if !bytes.Equal(c.Qualifier(), tt.wantQual) {
				t.Errorf("Qualifier() = %q, want %q", c.Qualifier(), tt.wantQual)
			}
			if c.Timestamp() != tt.wantTS {
				t.Errorf("Timestamp() = %d, want %d", c.Timestamp(), tt.wantTS)
			}
			if c.Type() != tt.wantType {
				t.Errorf("Type() = %v, want %v", c.Type(), tt.wantType)
			}
			if !bytes.Equal(c.Value(), tt.wantVal) {
				t.Errorf("Value() = %x, want %x", c.Value(), tt.wantVal)
			}
		})
	}
}

func TestSetTimestampAffectsLaterCellsOnly(t *testing.T) {
	m, _ := NewPut([]byte("r"))
	m.AddColumn([]byte("cf"), []byte("a"), nil)
	m.SetTimestamp(42)
	m.AddColumn([]byte("cf"), []byte("b"), nil)

	cells := m.CellsFor([]byte("cf"))
	if cells[0].Timestamp() != LatestTimestamp {
		t.Errorf("first cell ts = %d, want LatestTimestamp", cells[0].Timestamp())
	}
	if cells[1].Timestamp() != 42 {
		t.Errorf("second cell ts = %d, want 42", cells[1].Timestamp())
	}
}

func TestIncrementAmount(t *testing.T) {
	m, _ := NewIncrement([]byte("r"))
	for _, amount := range []int64{0, 1, -1, math.MaxInt64, math.MinInt64} {
		m.AddIncrement([]byte("cf"), []byte("n"), amount)
	}
	cells := m.CellsFor([]byte("cf"))
	for i, want := range []int64{0, 1, -1, math.MaxInt64, math.MinInt64} {
		got, err := IncrementAmount(cells[i])
		if err != nil {
			t.Fatalf("IncrementAmount: %v", err)
		}
		if got != want {
			t.Errorf("amount[%d] = %d, want %d", i, got, want)
		}
	}

	bad := NewKeyValue([]byte("r"), []byte("cf"), []byte("n"), 1, CellTypePut, []byte{1, 2, 3})
	if _, err := IncrementAmount(bad); !errors.Is(err, ErrMalformedEncoding) {
		t.Errorf("short value: got %v, want ErrMalformedEncoding", err)
	}
}

func TestSetTimeRange(t *testing.T) {
	inc, _ := NewIncrement([]byte("r"))
	if !inc.TimeRange().IsAllTime() {
		t.Errorf("default TimeRange() = %+v, want all time", inc.TimeRange())
	}
	if err := inc.SetTimeRange(10, 20); err != nil {
		t.Fatalf("SetTimeRange: %v", err)
	}
	tr := inc.TimeRange()
	if !tr.Contains(10) || tr.Contains(20) || tr.Contains(9) {
		t.Errorf("TimeRange %+v has wrong bounds", tr)
	}

	for _, bounds := range [][2]int64{{20, 10}, {-1, 5}, {0, -1}} {
		if err := inc.SetTimeRange(bounds[0], bounds[1]); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("SetTimeRange(%d, %d) = %v, want ErrInvalidArgument", bounds[0], bounds[1], err)
		}
	}

	put, _ := NewPut([]byte("r"))
	if err := put.SetTimeRange(0, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetTimeRange on a Put = %v, want ErrInvalidArgument", err)
	}
}
