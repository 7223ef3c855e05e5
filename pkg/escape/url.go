package escape

// unreserved holds the characters URL escaping leaves alone.
var unreserved = newByteSet("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.~")

func appendURL(dst []byte, s, other, space string) []byte {
	extra := newByteSet(other)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			dst = append(dst, space...)
		case unreserved.has(c) && !extra.has(c):
			dst = append(dst, c)
		default:
			dst = appendHex(dst, '%', c)
		}
	}
	return dst
}

// URLEscape percent-encodes every byte outside A-Z a-z 0-9 - _ . ~ and maps
// space to '+', as form-encoded query strings expect. Characters in other
// are encoded even when unreserved.
func URLEscape(s, other string) string {
	return string(appendURL(make([]byte, 0, len(s)), s, other, "+"))
}

// URLEscapeRFC2396 is URLEscape with space encoded as %20, for literal URLs.
func URLEscapeRFC2396(s, other string) string {
	return string(appendURL(make([]byte, 0, len(s)), s, other, "%20"))
}

// URLUnescape reverses URLEscape: %HH is decoded and '+' becomes a space.
func URLUnescape(s string) (string, error) {
	out, err := appendUnescaped(make([]byte, 0, len(s)), s, '%', true)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// URLUnescapeRFC2396 reverses URLEscapeRFC2396. '+' is left as is.
func URLUnescapeRFC2396(s string) (string, error) {
	out, err := appendUnescaped(make([]byte, 0, len(s)), s, '%', false)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
