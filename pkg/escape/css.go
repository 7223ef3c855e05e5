package escape

// cssURLUnsafe holds the bytes that could end a CSS url() token, a quoted
// CSS string or the enclosing <style> element.
var cssURLUnsafe = func() *byteSet {
	s := newByteSet(" ()'\"\\<>%{};\x7f")
	for c := 0; c < 0x20; c++ {
		s[c] = true
	}
	for c := 0x80; c < 0x100; c++ {
		s[c] = true
	}
	return s
}()

// CSSURLEscape percent-encodes s for use inside url(...) or an @import
// string. Decode with Unescape(b, '%').
func CSSURLEscape(s string) string {
	return string(appendEscaped(make([]byte, 0, len(s)), s, '%', cssURLUnsafe))
}
