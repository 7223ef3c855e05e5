package escape

import (
	"strings"

	"github.com/vango-dev/escaper/internal/errors"
)

// UnescapeNamed reverses the escaper called name. "url" reverses URLEscape
// and "url_rfc" reverses URLEscapeRFC2396; any other name is parsed with
// ParseContext and reversed with UnescapeContext.
func UnescapeNamed(name, in string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "url", "form":
		return URLUnescape(in)
	case "url_rfc", "url-rfc", "rfc2396":
		return URLUnescapeRFC2396(in)
	}
	c, err := ParseContext(name)
	if err != nil {
		return "", err
	}
	return UnescapeContext(c, in)
}

// UnescapeIntroducer decodes in with the generic primitive. introducer must
// be exactly one byte.
func UnescapeIntroducer(introducer, in string) (string, error) {
	if len(introducer) != 1 {
		return "", errors.New(errors.CodeInvalidArg).WithDetailf("introducer %q must be a single byte", introducer)
	}
	return UnescapeString(in, introducer[0])
}
