package strbuf

import (
	"bufio"
	stderrors "errors"
	"io"

	"github.com/vango-dev/escaper/internal/errors"
)

// LineReader is the subset of *bufio.Reader ReadLine needs.
type LineReader interface {
	ReadSlice(delim byte) ([]byte, error)
}

// ReadLine appends one line from r, including its trailing '\n'. A last line
// without a terminator is appended as-is.
//
// It returns true when bytes were appended and (false, nil) at end of input
// with nothing left to read. If the buffer cannot grow, the error is
// ErrCapacity or ErrNoMem and the buffer is restored to its prior content,
// even when part of the line was already appended. Any other read failure is
// reported as ErrStream; bytes read before the failure stay appended, since
// they are consumed from r.
func (b *Buffer) ReadLine(r LineReader) (bool, error) {
	start := len(b.buf)
	appended := false
	for {
		chunk, err := r.ReadSlice('\n')
		if len(chunk) > 0 {
			if gerr := b.AppendBytes(chunk); gerr != nil {
				b.buf = b.buf[:start]
				return false, gerr
			}
			appended = true
		}
		switch {
		case err == nil:
			return true, nil
		case stderrors.Is(err, bufio.ErrBufferFull):
			continue
		case stderrors.Is(err, io.EOF):
			return appended, nil
		default:
			return appended, errors.New(errors.CodeStream).Wrap(err)
		}
	}
}
