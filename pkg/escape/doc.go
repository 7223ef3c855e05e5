// Package escape produces injection-safe output for the places a template
// renderer writes untrusted values into: HTML text and attributes, URLs,
// CSS url() tokens and JavaScript string literals.
//
// # Contexts
//
// Callers that already know where a value will land pick the escaper
// directly (HTMLEscape, JSEscape, ...). Callers driven by a template's
// context annotations use EscapeContext, which resolves a Context flag set
// into a Mode and dispatches:
//
//	None      copy through
//	HTML      HTMLEscape
//	Script    JSEscape
//	URL       ValidateURL
//	CSSURL    ValidateCSSURL
//	Function  no transform; a user function does the escaping
//
// Undef is never valid at dispatch time.
//
// # URL validation
//
// URLs are checked against a scheme allow-list before anything is escaped.
// A URL with a scheme outside the list is replaced by Placeholder ("#");
// escaping cannot make javascript: safe. Relative and scheme-relative URLs
// are always accepted. Only accepted URLs are then percent-encoded.
//
// # Generic primitive
//
// Escape and Unescape implement introducer-plus-two-hex-digits encoding over
// arbitrary bytes, NULs included. Unescape is strict: an introducer not
// followed by two hex digits is reported as ErrMalformed.
//
// All functions in this package are safe for concurrent use.
package escape
