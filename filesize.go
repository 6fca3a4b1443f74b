package pageswap

import "sync/atomic"

// fileSizeRegister is the atomically maintained logical length of the
// backing file, in bytes. It exists so the hot read/write path never has to
// stat the file to learn its length: writes raise it monotonically before
// issuing the write (see io_scalar.go/io_vector.go for why the ordering
// matters), and Truncate resets it unconditionally to zero.
type fileSizeRegister struct {
	size atomic.Int64
}

// get returns the current size with acquire semantics.
func (r *fileSizeRegister) get() int64 {
	return r.size.Load()
}

// increaseTo raises the size to at least newSize via a compare-and-swap
// loop. It never lowers the value; a concurrent racer raising it past
// newSize first is left alone.
func (r *fileSizeRegister) increaseTo(newSize int64) {
	for {
		current := r.size.Load()
		if current >= newSize {
			return
		}
		if r.size.CompareAndSwap(current, newSize) {
			return
		}
	}
}

// set stores v unconditionally. Only Truncate (which resets to zero) and
// the constructor (which primes the value from the token stripe's on-disk
// size) should call this; every other mutator must go through increaseTo.
func (r *fileSizeRegister) set(v int64) {
	r.size.Store(v)
}

// lastPageID returns the largest valid page id for the current size and
// pageSize: -1 ("no pages") when size is 0, size/pageSize - 1 when size is
// an exact multiple of pageSize, and size/pageSize when the tail page is
// partial (spec §4.C).
func (r *fileSizeRegister) lastPageID(pageSize int) int64 {
	size := r.get()
	if size == 0 {
		return -1
	}

	ps := int64(pageSize)
	div := size / ps
	mod := size % ps
	if mod == 0 {
		return div - 1
	}
	return div
}
