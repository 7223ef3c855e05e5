package escape

import (
	"fmt"
	"strings"

	"github.com/vango-dev/escaper/internal/errors"
	"github.com/vango-dev/escaper/pkg/strbuf"
)

// Context is a set of escaping flags as attached to a template output site.
// Exactly one flag is meaningful per call, except that Function overrides
// everything set alongside it. Any other combination is refused by Resolve
// rather than ranked. Undef must be resolved before use.
type Context uint8

// Undef is the unresolved context. It is never valid for escaping.
const Undef Context = 0

const (
	None Context = 1 << iota
	HTML
	Script
	URL
	CSSURL
	Function
)

const allContexts = None | HTML | Script | URL | CSSURL | Function

var contextNames = []struct {
	c    Context
	name string
}{
	{None, "none"},
	{HTML, "html"},
	{Script, "script"},
	{URL, "url"},
	{CSSURL, "css_url"},
	{Function, "function"},
}

// String returns the flag names joined by '|', or "undef".
func (c Context) String() string {
	if c == Undef {
		return "undef"
	}
	var names []string
	for _, n := range contextNames {
		if c&n.c != 0 {
			names = append(names, n.name)
		}
	}
	if rest := c &^ allContexts; rest != 0 {
		names = append(names, fmt.Sprintf("0x%02X", uint8(rest)))
	}
	return strings.Join(names, "|")
}

// ParseContext parses a context name, case-insensitively. Accepted names are
// none, html, script (or js), url, css_url (or css-url) and function; several
// may be joined with '|'.
func ParseContext(name string) (Context, error) {
	var c Context
	for _, part := range strings.Split(name, "|") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "none":
			c |= None
		case "html":
			c |= HTML
		case "script", "js":
			c |= Script
		case "url":
			c |= URL
		case "css_url", "css-url", "cssurl":
			c |= CSSURL
		case "function":
			c |= Function
		default:
			return Undef, errors.New(errors.CodeInvalidCtx).WithDetailf("unknown context %q", part)
		}
	}
	return c, nil
}

// Mode is a resolved context: exactly one escaping behavior. The zero Mode
// is unresolved and refused by Escape.
type Mode struct {
	kind Context
}

// Resolve turns c into a Mode. Undef, unknown bits, and several flags set
// without Function are invalid.
func (c Context) Resolve() (Mode, error) {
	switch {
	case c == Undef:
		return Mode{}, errors.New(errors.CodeInvalidCtx).WithDetail("context is undef")
	case c&^allContexts != 0:
		return Mode{}, errors.New(errors.CodeInvalidCtx).WithDetailf("unknown context bits in %s", c)
	case c&Function != 0:
		return Mode{kind: Function}, nil
	case c&(c-1) != 0:
		return Mode{}, errors.New(errors.CodeInvalidCtx).WithDetailf("ambiguous context %s", c)
	}
	return Mode{kind: c}, nil
}

// Context returns the single flag m stands for, or Undef.
func (m Mode) Context() Context { return m.kind }

// String returns the mode's context name.
func (m Mode) String() string { return m.kind.String() }

// Valid reports whether m came from a successful Resolve.
func (m Mode) Valid() bool { return m.kind != Undef }

func (m Mode) appendTo(dst []byte, s string, p *Policy) []byte {
	switch m.kind {
	case HTML:
		return appendHTML(dst, s)
	case Script:
		return appendJS(dst, s)
	case URL:
		if !p.HasSecureProtocol(s) {
			return append(dst, Placeholder...)
		}
		return appendURLSafe(dst, s, urlAttrUnsafe)
	case CSSURL:
		if !p.HasSecureProtocol(s) {
			return append(dst, Placeholder...)
		}
		return appendURLSafe(dst, s, cssValidatedUnsafe)
	default:
		// None copies; Function leaves escaping to the caller's function.
		return append(dst, s...)
	}
}

func (m Mode) check() error {
	if !m.Valid() {
		return errors.New(errors.CodeInvalidCtx).WithDetail("mode is unresolved")
	}
	return nil
}

// Escape applies m to in with the default policy.
func (m Mode) Escape(in string) (string, error) {
	return m.escape(in, defaultPolicy)
}

func (m Mode) escape(in string, p *Policy) (string, error) {
	if err := m.check(); err != nil {
		return "", err
	}
	return string(m.appendTo(make([]byte, 0, len(in)), in, p)), nil
}

func (m Mode) escapeTo(dst *strbuf.Buffer, in string, p *Policy) error {
	if err := m.check(); err != nil {
		return err
	}
	return dst.AppendWith(func(b []byte) []byte {
		return m.appendTo(b, in, p)
	})
}

// EscapeContext resolves c and escapes in for it. The result is always a
// fresh string, also for None and Function.
func EscapeContext(c Context, in string) (string, error) {
	m, err := c.Resolve()
	if err != nil {
		return "", err
	}
	return m.Escape(in)
}

// EscapeContextTo is EscapeContext appending to dst. On error dst is
// unchanged.
func EscapeContextTo(dst *strbuf.Buffer, c Context, in string) error {
	m, err := c.Resolve()
	if err != nil {
		return err
	}
	return m.escapeTo(dst, in, defaultPolicy)
}

// UnescapeContext reverses EscapeContext where the escaping is reversible.
// URL and CSSURL decode every percent escape, so they restore the original
// only when it held no %HH triplets of its own; a rejected URL decodes to
// Placeholder.
func UnescapeContext(c Context, in string) (string, error) {
	m, err := c.Resolve()
	if err != nil {
		return "", err
	}
	switch m.kind {
	case HTML:
		return HTMLUnescape(in), nil
	case Script:
		return JSUnescape(in)
	case URL, CSSURL:
		return UnescapeString(in, '%')
	}
	return in, nil
}
