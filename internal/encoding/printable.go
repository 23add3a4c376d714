package encoding

import "strings"

const hexDigits = "0123456789ABCDEF"

// printablePunct lists the non-alphanumeric ASCII characters that are
// emitted verbatim by ToStringBinary. Backslash is deliberately absent so
// that an escaped byte can never be confused with literal input.
const printablePunct = " `~!@#$%^&*()-_=+[]{}|;:'\",.<>/?"

// ToStringBinary renders b as a printable string. ASCII letters, digits and
// common punctuation pass through; every other byte becomes \xHH.
// A nil slice renders as "null".
func ToStringBinary(b []byte) string {
	if b == nil {
		return "null"
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if isPrintable(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteString(`\x`)
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0F])
	}
	return sb.String()
}

func isPrintable(c byte) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		return true
	default:
		return strings.IndexByte(printablePunct, c) >= 0
	}
}
