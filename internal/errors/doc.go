// Package errors provides the structured error type shared by the escaper
// packages.
//
// Every failure the buffer, split and escaping code can report is one
// registered code with a category, a short message and a longer detail:
//
//   - memory: out-of-memory (E101) and capacity-exceeded (E102)
//   - escape: malformed escape sequence (E103) and invalid context (E104)
//   - io: stream read failures (E105)
//   - argument: invalid arguments (E106)
//   - config: configuration load and validation failures (E201, E202)
//
// Errors compare by code, so a package can export a sentinel and callers can
// match it with the standard library:
//
//	var ErrCapacity = errors.New(errors.CodeCapacity)
//
//	if stderrors.Is(err, strbuf.ErrCapacity) { ... }
//
// # Usage
//
//	err := errors.New(errors.CodeMalformed).
//	    WithDetail("introducer '%' at offset 3 is not followed by two hex digits").
//	    WithSuggestion("escape the input with the same introducer before decoding")
//
//	fmt.Println(err.Format())
package errors
