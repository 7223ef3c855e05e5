package strbuf

import (
	"fmt"
	"math"

	"github.com/vango-dev/escaper/internal/errors"
)

// minGrow is the smallest capacity an owned buffer grows to.
const minGrow = 64

// Errors reported by Buffer operations. Compare with errors.Is.
var (
	ErrNoMem      = errors.New(errors.CodeNoMem)
	ErrCapacity   = errors.New(errors.CodeCapacity)
	ErrStream     = errors.New(errors.CodeStream)
	ErrInvalidArg = errors.New(errors.CodeInvalidArg)
)

// Buffer is a growable byte string. The zero value is an empty, non-fixed
// buffer ready to use.
type Buffer struct {
	buf   []byte
	fixed bool
	limit int
}

// New creates a non-fixed buffer with the given initial capacity.
func New(size int) *Buffer {
	if size < 0 {
		size = 0
	}
	return &Buffer{buf: make([]byte, 0, size)}
}

// NewFixed creates a buffer over storage[:0] that never reallocates. The
// storage stays owned by the caller; its capacity is the buffer's capacity.
func NewFixed(storage []byte) *Buffer {
	return &Buffer{buf: storage[:0], fixed: true}
}

// Init resets b to an empty, non-fixed buffer without storage.
func (b *Buffer) Init() {
	*b = Buffer{}
}

// SetLimit caps the capacity an owned buffer may grow to. Zero removes the
// cap. Growth beyond the limit fails with ErrNoMem.
func (b *Buffer) SetLimit(n int) {
	if n < 0 {
		n = 0
	}
	b.limit = n
}

// Len returns the content length.
func (b *Buffer) Len() int { return len(b.buf) }

// Cap returns the allocated capacity.
func (b *Buffer) Cap() int { return cap(b.buf) }

// Fixed reports whether b is backed by caller-owned storage.
func (b *Buffer) Fixed() bool { return b.fixed }

// Bytes returns the content. The slice aliases the buffer and is valid until
// the next mutation.
func (b *Buffer) Bytes() []byte { return b.buf }

// String returns a copy of the content.
func (b *Buffer) String() string { return string(b.buf) }

// Clear sets the length to zero and keeps the capacity.
func (b *Buffer) Clear() {
	b.buf = b.buf[:0]
}

// Release drops owned storage. A fixed buffer keeps pointing at the caller's
// storage with zero length.
func (b *Buffer) Release() {
	if b.fixed {
		b.buf = b.buf[:0]
		return
	}
	b.buf = nil
}

// Grow ensures room for n more bytes without changing the content.
func (b *Buffer) Grow(n int) error {
	if n < 0 {
		return errors.New(errors.CodeInvalidArg).WithDetailf("negative grow size %d", n)
	}
	return b.grow(n)
}

// grow makes room for n more bytes. On failure the buffer is unchanged.
func (b *Buffer) grow(n int) error {
	have := len(b.buf)
	if n <= cap(b.buf)-have {
		return nil
	}
	if b.fixed {
		return errors.New(errors.CodeCapacity).
			WithDetailf("need %d bytes, fixed capacity is %d", have+n, cap(b.buf))
	}
	if n > math.MaxInt-have {
		return errors.New(errors.CodeNoMem).WithDetailf("size overflow appending %d bytes to %d", n, have)
	}
	need := have + n

	newCap := minGrow
	if c := cap(b.buf); c <= math.MaxInt/2 && 2*c > newCap {
		newCap = 2 * c
	}
	if need > newCap {
		newCap = need
	}
	if b.limit > 0 && newCap > b.limit {
		if need > b.limit {
			return errors.New(errors.CodeNoMem).WithDetailf("need %d bytes, limit is %d", need, b.limit)
		}
		newCap = b.limit
	}

	nb := make([]byte, have, newCap)
	copy(nb, b.buf)
	b.buf = nb
	return nil
}

// Set replaces the content with s.
func (b *Buffer) Set(s string) error {
	if len(s) > cap(b.buf) {
		if err := b.grow(len(s) - len(b.buf)); err != nil {
			return err
		}
	}
	b.buf = append(b.buf[:0], s...)
	return nil
}

// Append appends s.
func (b *Buffer) Append(s string) error {
	if err := b.grow(len(s)); err != nil {
		return err
	}
	b.buf = append(b.buf, s...)
	return nil
}

// AppendBytes appends p, embedded NUL bytes included.
func (b *Buffer) AppendBytes(p []byte) error {
	if err := b.grow(len(p)); err != nil {
		return err
	}
	b.buf = append(b.buf, p...)
	return nil
}

// AppendN appends the first n bytes of p.
func (b *Buffer) AppendN(p []byte, n int) error {
	if n < 0 || n > len(p) {
		return errors.New(errors.CodeInvalidArg).WithDetailf("length %d out of range [0,%d]", n, len(p))
	}
	return b.AppendBytes(p[:n])
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) error {
	if err := b.grow(1); err != nil {
		return err
	}
	b.buf = append(b.buf, c)
	return nil
}

// Appendf formats according to format and appends the result. Output of any
// length is accepted: it is formatted into the spare capacity first and, if it
// did not fit, the buffer grows to the now known size.
func (b *Buffer) Appendf(format string, args ...any) error {
	return b.AppendVf(format, args)
}

// AppendVf is Appendf with the arguments passed as a slice.
func (b *Buffer) AppendVf(format string, args []any) error {
	return b.AppendWith(func(dst []byte) []byte {
		return fmt.Appendf(dst, format, args...)
	})
}

// AppendWith calls fn with the content and keeps what fn appends to it.
// fn must leave the existing bytes alone. When the output does not fit a
// fixed buffer or the limit, it is discarded and the content is unchanged.
func (b *Buffer) AppendWith(fn func(dst []byte) []byte) error {
	have := len(b.buf)
	out := fn(b.buf)
	n := len(out) - have
	if n < 0 {
		return errors.New(errors.CodeInvalidArg).WithDetail("append function shortened the content")
	}
	if n > cap(b.buf)-have {
		if err := b.grow(n); err != nil {
			return err
		}
	}
	b.buf = append(b.buf[:have], out[have:]...)
	return nil
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.AppendBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString implements io.StringWriter.
func (b *Buffer) WriteString(s string) (int, error) {
	if err := b.Append(s); err != nil {
		return 0, err
	}
	return len(s), nil
}

// WriteByte implements io.ByteWriter.
func (b *Buffer) WriteByte(c byte) error {
	return b.AppendByte(c)
}

// Sprintf formats into a fresh buffer and returns the result.
func Sprintf(format string, args ...any) (string, error) {
	var b Buffer
	if err := b.AppendVf(format, args); err != nil {
		return "", err
	}
	return b.String(), nil
}
