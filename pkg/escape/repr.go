package escape

// Repr returns s double-quoted for logs and debugging output. Printable
// ASCII is kept, \n \r \t \" \\ use their short forms and every other byte
// is written as \xHH.
func Repr(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			out = append(out, `\n`...)
		case '\r':
			out = append(out, `\r`...)
		case '\t':
			out = append(out, `\t`...)
		case '"', '\\':
			out = append(out, '\\', c)
		default:
			if c < 0x20 || c >= 0x7F {
				out = append(out, '\\', 'x', upperHex[c>>4], upperHex[c&0x0F])
				continue
			}
			out = append(out, c)
		}
	}
	return string(append(out, '"'))
}
