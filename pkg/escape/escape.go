package escape

import (
	"github.com/vango-dev/escaper/internal/errors"
)

const upperHex = "0123456789ABCDEF"

// Errors reported by the escaping functions. Compare with errors.Is.
var (
	ErrMalformed      = errors.New(errors.CodeMalformed)
	ErrInvalidContext = errors.New(errors.CodeInvalidCtx)
)

// byteSet is a membership table over all byte values.
type byteSet [256]bool

func newByteSet(chars string) *byteSet {
	var s byteSet
	for i := 0; i < len(chars); i++ {
		s[chars[i]] = true
	}
	return &s
}

// with returns a copy of s with chars added.
func (s *byteSet) with(chars string) *byteSet {
	c := *s
	for i := 0; i < len(chars); i++ {
		c[chars[i]] = true
	}
	return &c
}

func (s *byteSet) has(c byte) bool { return s[c] }

// primitiveSet is set plus the introducer, so that escaped output decodes
// unambiguously.
func primitiveSet(set string, introducer byte) *byteSet {
	s := newByteSet(set)
	s[introducer] = true
	return s
}

func appendHex(dst []byte, introducer, c byte) []byte {
	return append(dst, introducer, upperHex[c>>4], upperHex[c&0x0F])
}

// appendEscaped appends s with every byte in set replaced by introducer and
// two hex digits.
func appendEscaped(dst []byte, s string, introducer byte, set *byteSet) []byte {
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !set.has(c) {
			continue
		}
		dst = append(dst, s[last:i]...)
		dst = appendHex(dst, introducer, c)
		last = i + 1
	}
	return append(dst, s[last:]...)
}

// Escape returns a copy of in where every byte found in set, and every
// occurrence of introducer itself, is replaced by introducer followed by two
// uppercase hex digits. Other bytes are copied unchanged.
func Escape(in []byte, introducer byte, set string) []byte {
	return appendEscaped(make([]byte, 0, len(in)), string(in), introducer, primitiveSet(set, introducer))
}

// EscapeString is Escape for strings.
func EscapeString(in string, introducer byte, set string) string {
	return string(appendEscaped(make([]byte, 0, len(in)), in, introducer, primitiveSet(set, introducer)))
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func hexPair(a, b byte) (byte, bool) {
	hi, ok1 := unhex(a)
	lo, ok2 := unhex(b)
	return hi<<4 | lo, ok1 && ok2
}

// decodeHexAt decodes the two hex digits following the introducer at s[i].
func decodeHexAt(s string, i int) (byte, bool) {
	if i+2 >= len(s) {
		return 0, false
	}
	return hexPair(s[i+1], s[i+2])
}

func malformedAt(s string, i int) error {
	end := i + 3
	if end > len(s) {
		end = len(s)
	}
	return errors.New(errors.CodeMalformed).WithDetailf("invalid sequence %q at offset %d", s[i:end], i)
}

// appendUnescaped decodes s into dst. With plusToSpace, '+' decodes to a
// space.
func appendUnescaped(dst []byte, s string, introducer byte, plusToSpace bool) ([]byte, error) {
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == introducer:
			v, ok := decodeHexAt(s, i)
			if !ok {
				return nil, malformedAt(s, i)
			}
			dst = append(dst, s[last:i]...)
			dst = append(dst, v)
			i += 2
			last = i + 1
		case plusToSpace && c == '+':
			dst = append(dst, s[last:i]...)
			dst = append(dst, ' ')
			last = i + 1
		}
	}
	return append(dst, s[last:]...), nil
}

// Unescape reverses Escape. Hex digits may be in either case. An introducer
// that is not followed by two hex digits yields ErrMalformed and no output.
func Unescape(in []byte, introducer byte) ([]byte, error) {
	return appendUnescaped(make([]byte, 0, len(in)), string(in), introducer, false)
}

// UnescapeString is Unescape for strings.
func UnescapeString(in string, introducer byte) (string, error) {
	out, err := appendUnescaped(make([]byte, 0, len(in)), in, introducer, false)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// UnescapeInPlace decodes buf into its own storage and returns the decoded
// prefix. The whole input is validated first, so on error buf is untouched.
func UnescapeInPlace(buf []byte, introducer byte) ([]byte, error) {
	for i := 0; i < len(buf); i++ {
		if buf[i] != introducer {
			continue
		}
		if i+2 >= len(buf) {
			return nil, malformedAt(string(buf), i)
		}
		if _, ok := hexPair(buf[i+1], buf[i+2]); !ok {
			return nil, malformedAt(string(buf), i)
		}
		i += 2
	}

	w := 0
	for r := 0; r < len(buf); r++ {
		c := buf[r]
		if c == introducer {
			c, _ = hexPair(buf[r+1], buf[r+2])
			r += 2
		}
		buf[w] = c
		w++
	}
	return buf[:w], nil
}
