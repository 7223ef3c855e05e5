package escape

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/escaper/internal/errors"
)

// Placeholder replaces a URL whose scheme is not allowed.
const Placeholder = "#"

// Policy is an immutable scheme allow-list.
type Policy struct {
	schemes []string
}

var defaultPolicy = &Policy{schemes: []string{"http", "https", "ftp", "mailto"}}

// DefaultPolicy returns the policy allowing http, https, ftp and mailto.
func DefaultPolicy() *Policy { return defaultPolicy }

// NewPolicy builds a policy from scheme names. Names are lower-cased and a
// trailing ':' is dropped. A name that is not a valid URL scheme is an error.
func NewPolicy(schemes ...string) (*Policy, error) {
	p := &Policy{schemes: make([]string, 0, len(schemes))}
	seen := make(map[string]bool, len(schemes))
	for _, raw := range schemes {
		s := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(raw), ":"))
		if !validScheme(s) {
			return nil, errors.New(errors.CodeInvalidArg).WithDetailf("invalid URL scheme %q", raw)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		p.schemes = append(p.schemes, s)
	}
	return p, nil
}

// Schemes returns a copy of the allowed scheme names.
func (p *Policy) Schemes() []string {
	out := make([]string, len(p.schemes))
	copy(out, p.schemes)
	return out
}

// Allows reports whether scheme is on the list, ignoring case.
func (p *Policy) Allows(scheme string) bool {
	for _, s := range p.schemes {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

// validScheme reports whether s matches ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// HasSecureProtocol reports whether in is relative, scheme-relative, or
// uses an allowed scheme. Leading whitespace and control bytes are ignored,
// as are tabs and newlines inside the scheme, since browsers drop them too.
// Input containing character references must pass both as written and
// decoded, because an attribute value is decoded before it is used as a URL.
func (p *Policy) HasSecureProtocol(in string) bool {
	if !p.schemeAllowed(in) {
		return false
	}
	if strings.IndexByte(in, '&') >= 0 {
		return p.schemeAllowed(html.UnescapeString(in))
	}
	return true
}

func (p *Policy) schemeAllowed(in string) bool {
	s := strings.TrimLeftFunc(in, func(r rune) bool { return r <= ' ' })
	i := strings.IndexAny(s, ":/?#")
	if i < 0 || s[i] != ':' {
		return true
	}
	scheme := strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s[:i])
	return p.Allows(scheme)
}

// HasSecureProtocol checks in against the default policy.
func HasSecureProtocol(in string) bool {
	return defaultPolicy.HasSecureProtocol(in)
}

var (
	urlAttrUnsafe = func() *byteSet {
		s := newByteSet(" \"'<>\\`^{}|\x7f")
		for c := 0; c < 0x20; c++ {
			s[c] = true
		}
		for c := 0x80; c < 0x100; c++ {
			s[c] = true
		}
		return s
	}()
	cssValidatedUnsafe = urlAttrUnsafe.with("();")
)

// appendURLSafe percent-encodes the bytes in set and any '%' that does not
// start a valid %HH triplet. Existing triplets are kept.
func appendURLSafe(dst []byte, s string, set *byteSet) []byte {
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' {
			if _, ok := decodeHexAt(s, i); ok {
				i += 2
				continue
			}
		} else if !set.has(c) {
			continue
		}
		dst = append(dst, s[last:i]...)
		dst = appendHex(dst, '%', c)
		last = i + 1
	}
	return append(dst, s[last:]...)
}

func (p *Policy) validate(in string, set *byteSet) string {
	if !p.HasSecureProtocol(in) {
		return Placeholder
	}
	return string(appendURLSafe(make([]byte, 0, len(in)), in, set))
}

// ValidateURL returns in percent-encoded for an HTML attribute, or
// Placeholder when its scheme is not allowed. Rejection is not an error.
func (p *Policy) ValidateURL(in string) string {
	return p.validate(in, urlAttrUnsafe)
}

// ValidateCSSURL is ValidateURL for CSS url() values: parentheses and ';'
// are encoded as well so the value cannot close the token.
func (p *Policy) ValidateCSSURL(in string) string {
	return p.validate(in, cssValidatedUnsafe)
}

// ValidateURL validates in against the default policy.
func ValidateURL(in string) string {
	return defaultPolicy.ValidateURL(in)
}

// ValidateCSSURL validates in against the default policy.
func ValidateCSSURL(in string) string {
	return defaultPolicy.ValidateCSSURL(in)
}
