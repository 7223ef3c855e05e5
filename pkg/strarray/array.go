// Package strarray holds ordered string fragments, typically produced by
// splitting a string on a separator.
package strarray

import (
	"math"
	"strings"

	"github.com/vango-dev/escaper/internal/errors"
	"github.com/vango-dev/escaper/pkg/strbuf"
)

// minEntries is the smallest table an Array grows to.
const minEntries = 8

// Errors reported by Array and Split. Compare with errors.Is.
var (
	ErrInvalidArg = errors.New(errors.CodeInvalidArg)
	ErrNoMem      = errors.New(errors.CodeNoMem)
)

// Array is an ordered list of strings. The zero value is an empty array.
type Array struct {
	entries []string
}

// New returns an empty array with room for capacity entries.
func New(capacity int) *Array {
	if capacity < 0 {
		capacity = 0
	}
	return &Array{entries: make([]string, 0, capacity)}
}

// Len returns the number of entries.
func (a *Array) Len() int { return len(a.entries) }

// Cap returns the table capacity.
func (a *Array) Cap() int { return cap(a.entries) }

// At returns entry i. It panics if i is out of range, like a slice index.
func (a *Array) At(i int) string { return a.entries[i] }

// Entries returns a copy of the entries.
func (a *Array) Entries() []string {
	out := make([]string, len(a.entries))
	copy(out, a.entries)
	return out
}

// Append adds s at the end.
func (a *Array) Append(s string) error {
	if len(a.entries) == cap(a.entries) {
		if err := a.grow(); err != nil {
			return err
		}
	}
	a.entries = append(a.entries, s)
	return nil
}

func (a *Array) grow() error {
	c := cap(a.entries)
	if c > math.MaxInt/2 {
		return errors.New(errors.CodeNoMem).WithDetailf("string array of %d entries cannot grow", c)
	}
	newCap := 2 * c
	if newCap < minEntries {
		newCap = minEntries
	}
	t := make([]string, len(a.entries), newCap)
	copy(t, a.entries)
	a.entries = t
	return nil
}

// Join concatenates the entries with sep between them.
func (a *Array) Join(sep string) string {
	return strings.Join(a.entries, sep)
}

// Release drops every entry and the table.
func (a *Array) Release() {
	a.entries = nil
}

// Split slices s around each occurrence of sep. With n > 0 at most n
// splits are made and the rest of s, separators included, becomes the last
// entry. Empty input yields a single empty entry; adjacent separators yield
// empty entries. s is not modified.
func Split(s, sep string, n int) (*Array, error) {
	if sep == "" {
		return nil, errors.New(errors.CodeInvalidArg).WithDetail("empty separator")
	}

	a := New(0)
	splits := 0
	for n <= 0 || splits < n {
		i := strings.Index(s, sep)
		if i < 0 {
			break
		}
		if err := a.Append(s[:i]); err != nil {
			return nil, err
		}
		s = s[i+len(sep):]
		splits++
	}
	if err := a.Append(s); err != nil {
		return nil, err
	}
	return a, nil
}

// SplitBuffer splits the content of b. The entries are copies; b may be
// reused afterwards.
func SplitBuffer(b *strbuf.Buffer, sep string, n int) (*Array, error) {
	return Split(b.String(), sep, n)
}
