package encoding

import "testing"

func TestToStringBinary(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"nil", nil, "null"},
		{"empty", []byte{}, ""},
		{"alnum", []byte("cf2"), "cf2"},
		{"punct", []byte("a-b_c:d"), "a-b_c:d"},
		{"binary", []byte{0x00, 0xFF, 'x'}, `\x00\xFFx`},
		{"backslash", []byte(`a\b`), `a\x5Cb`},
		{"newline", []byte("a\nb"), `a\x0Ab`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToStringBinary(tt.in); got != tt.want {
				t.Errorf("ToStringBinary(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
