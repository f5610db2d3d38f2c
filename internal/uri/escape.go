// Package uri implements the RFC 3986 percent-encoding used when rendering
// query strings.
package uri

import "strings"

func hex(c byte) (h [2]byte) {
	const hexSet = "0123456789ABCDEF"
	h[0] = hexSet[c>>4]
	h[1] = hexSet[c&0xF]
	return
}

// isUnreserved reports whether c is in the RFC 3986 unreserved set.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-2.3
func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~':
		return true
	}
	return false
}

// EscapeDataString percent-encodes every byte of s outside the unreserved
// set. Unlike url.QueryEscape, space becomes %20 and reserved delimiters such
// as '&', '=' and '+' are always escaped, so the result is safe as either a
// query key or a query value.
func EscapeDataString(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isUnreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	b := new(strings.Builder)
	b.Grow(len(s) + 2*n)

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		h := hex(c)
		b.Write([]byte{'%', h[0], h[1]})
	}

	return b.String()
}

// isPathChar reports whether c may appear unescaped in a path segment or as
// a segment separator (RFC 3986 pchar plus '/').
func isPathChar(c byte) bool {
	if isUnreserved(c) {
		return true
	}
	switch c {
	case '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', ':', '@', '/':
		return true
	}
	return false
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// EscapePath percent-encodes the bytes of an already escaped path that are
// not allowed there, leaving existing escapes such as %2F untouched. A '%'
// that does not start an escape becomes %25.
func EscapePath(s string) string {
	b := new(strings.Builder)
	b.Grow(len(s))

	for idx := 0; idx < len(s); idx++ {
		c := s[idx]
		switch {
		case c == '%' && idx+2 < len(s) && isHex(s[idx+1]) && isHex(s[idx+2]):
			b.WriteByte(c)
		case c != '%' && isPathChar(c):
			b.WriteByte(c)
		default:
			h := hex(c)
			b.Write([]byte{'%', h[0], h[1]})
		}
	}

	return b.String()
}
