package escape

import (
	"golang.org/x/net/html"
)

var (
	htmlReplacements = [256]string{
		'&':  "&amp;",
		'<':  "&lt;",
		'>':  "&gt;",
		'"':  "&quot;",
		'\'': "&#39;",
	}
	attrReplacements = [256]string{
		'&':  "&amp;",
		'<':  "&lt;",
		'>':  "&gt;",
		'"':  "&quot;",
		'\'': "&#39;",
		'\n': "&#10;",
		'\r': "&#13;",
		'\t': "&#9;",
	}
)

func appendReplaced(dst []byte, s string, table *[256]string) []byte {
	last := 0
	for i := 0; i < len(s); i++ {
		r := table[s[i]]
		if r == "" {
			continue
		}
		dst = append(dst, s[last:i]...)
		dst = append(dst, r...)
		last = i + 1
	}
	return append(dst, s[last:]...)
}

func appendHTML(dst []byte, s string) []byte {
	return appendReplaced(dst, s, &htmlReplacements)
}

// HTMLEscape escapes text for element content and quoted attribute values.
// & < > " become named entities and ' becomes &#39;. Other bytes, including
// invalid UTF-8, are copied unchanged.
func HTMLEscape(s string) string {
	return string(appendHTML(make([]byte, 0, len(s)), s))
}

// HTMLEscapeAttr is HTMLEscape plus numeric entities for tab, newline and
// carriage return, which attribute normalization would otherwise rewrite.
func HTMLEscapeAttr(s string) string {
	return string(appendReplaced(make([]byte, 0, len(s)), s, &attrReplacements))
}

// HTMLUnescape decodes every named and numeric character reference in s,
// following the HTML5 rules.
func HTMLUnescape(s string) string {
	return html.UnescapeString(s)
}
