package heapsize

import "testing"

func TestAlign(t *testing.T) {
	m := Default()
	tests := []struct {
		in, want int64
	}{
		{0, 0},
		{1, 8},
		{7, 8},
		{8, 8},
		{9, 16},
		{63, 64},
	}
	for _, tt := range tests {
		if got := m.Align(tt.in); got != tt.want {
			t.Errorf("Align(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}

	none := m
	none.Alignment = 1
	if got := none.Align(13); got != 13 {
		t.Errorf("Align with quantum 1 = %d, want 13", got)
	}
}

func TestDefaultModelShapes(t *testing.T) {
	m := Default()
	if !m.Valid() {
		t.Fatal("Default() model is not valid")
	}

	want := map[string][2]int64{
		"ObjectHeader":     {m.ObjectHeader, 16},
		"ArrayHeader":      {m.ArrayHeader, 24},
		"ListHeader":       {m.ListHeader, 56},
		"MapEntry":         {m.MapEntry, 64},
		"OrderedMapHeader": {m.OrderedMapHeader, 80},
		"StringHeader":     {m.StringHeader, 64},
	}
	for name, v := range want {
		if v[0] != v[1] {
			t.Errorf("%s = %d, want %d", name, v[0], v[1])
		}
	}
}

func TestModelsAreAligned(t *testing.T) {
	for name, m := range map[string]Model{"default": Default(), "compact": Compact()} {
		t.Run(name, func(t *testing.T) {
			if !m.Valid() {
				t.Fatal("model is not valid")
			}
			for _, v := range []int64{m.ArrayHeader, m.ListHeader, m.MapEntry, m.OrderedMapHeader, m.StringHeader} {
				if v%m.Alignment != 0 {
					t.Errorf("composite %d is not a multiple of %d", v, m.Alignment)
				}
			}
		})
	}
}

func TestCompactIsSmaller(t *testing.T) {
	d, c := Default(), Compact()
	if c.MapEntry > d.MapEntry || c.OrderedMapHeader > d.OrderedMapHeader {
		t.Errorf("compact model should not exceed default: %+v vs %+v", c, d)
	}
}

func TestArrayHelpersMonotone(t *testing.T) {
	m := Default()
	prevBytes, prevRefs := int64(0), int64(0)
	for n := 0; n < 100; n++ {
		b, r := m.ByteArray(n), m.ReferenceArray(n)
		if b < prevBytes || r < prevRefs {
			t.Fatalf("n=%d: ByteArray %d (prev %d), ReferenceArray %d (prev %d)", n, b, prevBytes, r, prevRefs)
		}
		if b%m.Alignment != 0 || r%m.Alignment != 0 {
			t.Fatalf("n=%d: unaligned result", n)
		}
		prevBytes, prevRefs = b, r
	}
	if m.MapEntries(3) != 3*m.MapEntry {
		t.Errorf("MapEntries(3) = %d", m.MapEntries(3))
	}
	if m.String(0) != m.StringHeader {
		t.Errorf("String(0) = %d", m.String(0))
	}
}

func TestInvalidModel(t *testing.T) {
	m := Default()
	m.Alignment = 6
	if m.Valid() {
		t.Error("alignment 6 should be invalid")
	}
	m.Alignment = 0
	if m.Valid() {
		t.Error("alignment 0 should be invalid")
	}
}
