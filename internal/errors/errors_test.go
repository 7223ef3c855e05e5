package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "out of memory",
			code:    CodeNoMem,
			wantMsg: "Out of memory",
			wantCat: CategoryMemory,
		},
		{
			name:    "malformed escape",
			code:    CodeMalformed,
			wantMsg: "Malformed escape sequence",
			wantCat: CategoryEscape,
		},
		{
			name:    "stream error",
			code:    CodeStream,
			wantMsg: "Stream read failed",
			wantCat: CategoryIO,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "in.txt")
	if err.Message != `file "in.txt" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "in.txt" not found`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestError_Error(t *testing.T) {
	err := New(CodeCapacity)
	if got, want := err.Error(), "E102: Capacity exceeded"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = New(CodeCapacity).WithDetail("need 12 bytes, have 8")
	if got, want := err.Error(), "E102: Capacity exceeded: need 12 bytes, have 8"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestError_Is(t *testing.T) {
	sentinel := New(CodeCapacity)
	err := New(CodeCapacity).WithDetail("fixed buffer")

	if !stderrors.Is(err, sentinel) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, New(CodeNoMem)) {
		t.Error("errors.Is should not match a different code")
	}

	wrapped := fmt.Errorf("appending: %w", err)
	if !stderrors.Is(wrapped, sentinel) {
		t.Error("errors.Is should match through fmt.Errorf wrapping")
	}

	a := &Error{Message: "a"}
	b := &Error{Message: "a"}
	if stderrors.Is(a, b) {
		t.Error("code-less errors should only match themselves")
	}
}

func TestError_WithSuggestion(t *testing.T) {
	err := New(CodeInvalidCtx).WithSuggestion("resolve the context first")
	if err.Suggestion != "resolve the context first" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
}

func TestError_WithDetailf(t *testing.T) {
	err := New(CodeMalformed).WithDetailf("offset %d", 7)
	if err.Detail != "offset 7" {
		t.Errorf("Detail = %q, want %q", err.Detail, "offset 7")
	}
}

func TestError_Wrap(t *testing.T) {
	inner := &testError{msg: "disk gone"}
	err := New(CodeStream).Wrap(inner)

	if err.Unwrap() != inner {
		t.Error("Unwrap should return the wrapped error")
	}
	if !strings.HasSuffix(err.Error(), "disk gone") {
		t.Errorf("Error() = %q, want wrapped cause suffix", err.Error())
	}
	var target *testError
	if !stderrors.As(err, &target) {
		t.Error("errors.As should reach the wrapped error")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q", got)
	}
	if got := CodeOf(&testError{msg: "x"}); got != "" {
		t.Errorf("CodeOf(plain) = %q", got)
	}
	wrapped := fmt.Errorf("ctx: %w", New(CodeInvalidArg))
	if got := CodeOf(wrapped); got != CodeInvalidArg {
		t.Errorf("CodeOf(wrapped) = %q, want %q", got, CodeInvalidArg)
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeMalformed).
		WithSuggestion("decode with the introducer used to encode").
		Wrap(&testError{msg: "offset 4"})

	formatted := err.Format()

	if !strings.Contains(formatted, "E103") {
		t.Error("Format should contain error code")
	}
	if !strings.Contains(formatted, "Malformed escape sequence") {
		t.Error("Format should contain error message")
	}
	if !strings.Contains(formatted, "fixed-width representation") {
		t.Error("Format should fall back to the registered detail")
	}
	if !strings.Contains(formatted, "Hint:") {
		t.Error("Format should contain hint")
	}
	if !strings.Contains(formatted, "Cause: offset 4") {
		t.Error("Format should contain the wrapped cause")
	}
}

func TestFormatJSON(t *testing.T) {
	err := New(CodeMalformed).WithDetail(`bad "%zz"`)
	json := err.FormatJSON()

	if !strings.Contains(json, `"code":"E103"`) {
		t.Error("JSON should contain code")
	}
	if !strings.Contains(json, `"category":"escape"`) {
		t.Error("JSON should contain category")
	}
	if !strings.Contains(json, `"message":"Malformed escape sequence"`) {
		t.Error("JSON should contain message")
	}
	if !strings.Contains(json, `"detail":"bad \"%zz\""`) {
		t.Errorf("JSON should contain the quoted detail, got %s", json)
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate(CodeCapacity)
	if !ok {
		t.Error("E102 should exist")
	}
	if template.Message != "Capacity exceeded" {
		t.Error("Template message mismatch")
	}

	_, ok = GetTemplate("E999")
	if ok {
		t.Error("E999 should not exist")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
