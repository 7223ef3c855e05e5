// Package strbuf provides Buffer, a growable byte string used by the escaping
// code to build output.
//
// A Buffer either owns its storage and grows it on demand (at least doubling,
// so repeated small appends cost O(1) amortized per byte) or is a fixed view
// over caller-provided storage that never reallocates. Appending past the end
// of a fixed buffer fails with ErrCapacity and leaves the content untouched:
//
//	storage := make([]byte, 0, 16)
//	b := strbuf.NewFixed(storage)
//	if err := b.Append("longer than sixteen bytes"); errors.Is(err, strbuf.ErrCapacity) {
//	    // b.Len() == 0
//	}
//
// Buffers are meant to be reused: Clear drops the content but keeps the
// capacity, so a hot loop can escape thousands of values without allocating.
//
// A Buffer is not safe for concurrent use.
package strbuf
