package escape

import (
	"strings"
	"testing"

	escerrors "github.com/vango-dev/escaper/internal/errors"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"javascript scheme", "javascript:alert(1)", "#"},
		{"mixed case scheme", "JavaScript:alert(1)", "#"},
		{"leading whitespace", "  javascript:alert(1)", "#"},
		{"leading control byte", "\x01javascript:alert(1)", "#"},
		{"tab inside scheme", "java\tscript:alert(1)", "#"},
		{"data scheme", "data:text/html;base64,PHNjcmlwdD4=", "#"},
		{"encoded colon", "javascript&#58;alert(1)", "#"},
		{"unknown scheme", "foo:bar", "#"},
		{"space is encoded", "http://example.com/a b", "http://example.com/a%20b"},
		{"uppercase http", "HTTPS://example.com/", "HTTPS://example.com/"},
		{"absolute path", "/relative/path", "/relative/path"},
		{"relative path", "relative/path?q=1", "relative/path?q=1"},
		{"colon after path", "a/b:c", "a/b:c"},
		{"colon in query", "?next=http:x", "?next=http:x"},
		{"scheme relative", "//cdn.example.com/app.js", "//cdn.example.com/app.js"},
		{"mailto", "mailto:me@example.com", "mailto:me@example.com"},
		{"ftp", "ftp://files.example.com/a", "ftp://files.example.com/a"},
		{"quote breakout", `http://x.com/"onmouseover="alert(1)`, "http://x.com/%22onmouseover=%22alert(1)"},
		{"angle brackets", "http://x.com/<b>", "http://x.com/%3Cb%3E"},
		{"valid escape kept", "http://x.com/a%20b", "http://x.com/a%20b"},
		{"stray percent", "http://x.com/100%", "http://x.com/100%25"},
		{"bad triplet", "http://x.com/%zz", "http://x.com/%25zz"},
		{"non-ascii", "http://x.com/é", "http://x.com/%C3%A9"},
		{"query kept", "https://x.com/s?q=a&b=c#top", "https://x.com/s?q=a&b=c#top"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateURL(tt.input); got != tt.expected {
				t.Errorf("ValidateURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidateURL_NoLiteralUnsafeBytes(t *testing.T) {
	out := ValidateURL("http://example.com/a b\t\"'<>`{}|\\^")
	if strings.ContainsAny(out, " \t\"'<>`{}|\\^") {
		t.Errorf("ValidateURL() = %q", out)
	}
}

func TestValidateCSSURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"http://x.com/a)b", "http://x.com/a%29b"},
		{"http://x.com/a(b);c", "http://x.com/a%28b%29%3Bc"},
		{"http://x.com/a'b\"c", "http://x.com/a%27b%22c"},
		{"javascript:alert(1)", "#"},
		{"expression(alert(1))", "expression%28alert%281%29%29"},
		{"/img/bg.png", "/img/bg.png"},
		{"http://x.com/</style>", "http://x.com/%3C/style%3E"},
	}

	for _, tt := range tests {
		if got := ValidateCSSURL(tt.input); got != tt.expected {
			t.Errorf("ValidateCSSURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestHasSecureProtocol(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"http://a", true},
		{"Https://a", true},
		{"ftp://a", true},
		{"mailto:a@b", true},
		{"//a", true},
		{"/a", true},
		{"a", true},
		{"#frag", true},
		{"javascript:x", false},
		{"vbscript:x", false},
		{"data:x", false},
		{" \njavascript:x", false},
		{"jav\nascript:x", false},
		{"http:", true},
		{":x", false},
	}

	for _, tt := range tests {
		if got := HasSecureProtocol(tt.input); got != tt.expected {
			t.Errorf("HasSecureProtocol(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy("HTTPS:", " data ", "https")
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}
	if got := strings.Join(p.Schemes(), ","); got != "https,data" {
		t.Errorf("Schemes() = %q, want %q", got, "https,data")
	}
	if got := p.ValidateURL("data:image/png,abc"); got != "data:image/png,abc" {
		t.Errorf("ValidateURL(data:) = %q", got)
	}
	if got := p.ValidateURL("http://x.com"); got != Placeholder {
		t.Errorf("ValidateURL(http:) = %q, want %q", got, Placeholder)
	}
	if got := p.ValidateURL("/still/relative"); got != "/still/relative" {
		t.Errorf("ValidateURL(relative) = %q", got)
	}

	for _, bad := range []string{"", "1http", "ht tp", "java:script"} {
		_, err := NewPolicy(bad)
		if escerrors.CodeOf(err) != escerrors.CodeInvalidArg {
			t.Errorf("NewPolicy(%q) error = %v, want %s", bad, err, escerrors.CodeInvalidArg)
		}
	}
}

func TestPolicy_SchemesIsCopy(t *testing.T) {
	s := DefaultPolicy().Schemes()
	s[0] = "javascript"
	if HasSecureProtocol("javascript:x") {
		t.Fatal("mutating Schemes() changed the default policy")
	}
}

func BenchmarkValidateURL(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = ValidateURL("https://example.com/path with spaces?q=1&r=<2>")
	}
}
