package http1

import "strings"

// ParseQuery splits a raw query string on '&' into decoded key/value pairs.
//
// Empty segments are skipped, a segment without '=' maps its key to "" and
// the last occurrence of a repeated key wins.
func ParseQuery(raw string) map[string]string {
	params := make(map[string]string)

	for _, token := range strings.Split(raw, "&") {
		if token == "" {
			continue
		}
		key, value, _ := strings.Cut(token, "=")
		params[Unescape(key)] = Unescape(value)
	}

	return params
}

// Unescape decodes %XX sequences and turns '+' into a space.
//
// Decoding is lenient: a '%' not followed by two hex digits is kept as is,
// so unlike net/url it never fails.
func Unescape(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '+':
			b.WriteByte(' ')
		case '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
				i += 2
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
