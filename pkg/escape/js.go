package escape

import (
	"unicode/utf8"

	"github.com/vango-dev/escaper/internal/errors"
)

// jsUnsafe holds the bytes JSEscape encodes as \xHH: control bytes, DEL,
// quotes of every literal kind, the backslash, and characters that matter
// to an enclosing <script> element or HTML attribute.
var jsUnsafe = func() *byteSet {
	s := newByteSet("\"'\\/<>&;=`\x7f")
	for c := 0; c < 0x20; c++ {
		s[c] = true
	}
	return s
}()

func appendJS(dst []byte, s string) []byte {
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case jsUnsafe.has(c):
			dst = append(dst, s[last:i]...)
			dst = append(dst, '\\', 'x', upperHex[c>>4], upperHex[c&0x0F])
			last = i + 1
		case c == 0xE2 && i+2 < len(s) && s[i+1] == 0x80 && (s[i+2] == 0xA8 || s[i+2] == 0xA9):
			dst = append(dst, s[last:i]...)
			// U+2028 and U+2029 end a line in pre-ES2019 string literals.
			if s[i+2] == 0xA8 {
				dst = append(dst, `\u2028`...)
			} else {
				dst = append(dst, `\u2029`...)
			}
			i += 2
			last = i + 1
		}
	}
	return append(dst, s[last:]...)
}

// JSEscape makes s safe inside a single-quoted, double-quoted or template
// JavaScript string literal, including one inside a <script> element.
func JSEscape(s string) string {
	return string(appendJS(make([]byte, 0, len(s)), s))
}

// JSUnescape decodes the \xHH and \uHHHH sequences JSEscape produces. Any
// other backslash sequence is ErrMalformed.
func JSUnescape(s string) (string, error) {
	out := make([]byte, 0, len(s))
	last := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			continue
		}
		out = append(out, s[last:i]...)
		if i+1 >= len(s) {
			return "", malformedAt(s, i)
		}
		switch s[i+1] {
		case 'x':
			if i+3 >= len(s) {
				return "", malformedAt(s, i)
			}
			v, ok := hexPair(s[i+2], s[i+3])
			if !ok {
				return "", malformedAt(s, i)
			}
			out = append(out, v)
			i += 3
		case 'u':
			if i+5 >= len(s) {
				return "", malformedAt(s, i)
			}
			hi, ok1 := hexPair(s[i+2], s[i+3])
			lo, ok2 := hexPair(s[i+4], s[i+5])
			if !ok1 || !ok2 {
				return "", malformedAt(s, i)
			}
			out = utf8.AppendRune(out, rune(hi)<<8|rune(lo))
			i += 5
		default:
			return "", errors.New(errors.CodeMalformed).
				WithDetailf("unsupported sequence %q at offset %d", s[i:i+2], i)
		}
		last = i + 1
	}
	return string(append(out, s[last:]...)), nil
}
