package pageswap

import "io"

// FileSystem is the capability set the swapper needs from its environment:
// opening, creating, and deleting the backing file, and reporting its block
// size for direct-I/O validation. It exists so tests can substitute a fake
// that reports handles as closed on demand, exactly modeling the
// closed-channel failures this package's reopen logic exists to survive —
// generalizing the example corpus's FS/Real/fault-injection split to this
// component's narrower needs.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FileSystem interface {
	// Open opens path for positioned I/O. If direct is true, the returned
	// Handle should use O_DIRECT (or the platform equivalent) where
	// supported. The file is created if it does not already exist.
	Open(path string, direct bool) (Handle, error)

	// Delete removes path. Used by CloseAndDelete.
	Delete(path string) error

	// BlockSize reports the underlying filesystem's block size for path,
	// used to validate Config.UseDirectIO.
	BlockSize(path string) (int64, error)
}

// Handle is one open channel to the backing file. The swapper holds K of
// them (the "channel stripe set"); each behaves as if it has its own
// position cursor, since every positioned method takes an explicit offset
// and never mutates shared state visible to other callers.
//
// Handle implementations must tolerate concurrent positioned calls from
// multiple goroutines without corrupting unrelated in-flight operations.
type Handle interface {
	// ReadAt reads into p starting at off. Per io.ReaderAt, it may return
	// n < len(p) along with io.EOF; it must not return n < len(p) with a
	// nil error.
	io.ReaderAt

	// WriteAt writes all of p starting at off, or returns an error. Per
	// io.WriterAt, a short write must be accompanied by a non-nil error.
	io.WriterAt

	// ReadVectorAt performs one positioned scatter-read across bufs,
	// starting at off, returning the total bytes read. Returns
	// errFastPathUnsupported if the platform has no scatter/gather
	// positioned read; callers fall back to repeated ReadAt.
	ReadVectorAt(bufs [][]byte, off int64) (int64, error)

	// WriteVectorAt performs one positioned gather-write across bufs,
	// starting at off. Returns errFastPathUnsupported under the same
	// condition as ReadVectorAt.
	WriteVectorAt(bufs [][]byte, off int64) (int64, error)

	// Truncate sets the file's length.
	Truncate(size int64) error

	// Sync flushes the file to stable storage. If metadataToo is false,
	// implementations may use the weaker "data only" variant where the
	// platform distinguishes them (e.g. fdatasync vs fsync).
	Sync(metadataToo bool) error

	// TryLock attempts to acquire an exclusive advisory lock covering the
	// whole file without blocking. It returns (true, nil) on success,
	// (false, nil) if the lock is held elsewhere, and a non-nil error for
	// anything else including errLockingUnsupported on platforms that
	// can't stripe channels under a lock (see fs_windows.go).
	TryLock() (bool, error)

	// Close closes the handle. Closing also releases any lock held
	// through TryLock.
	Close() error

	// Size reports the handle's current length.
	Size() (int64, error)

	// IsOpen reports whether the handle is still usable. It must return
	// false after Close, and should return false if the handle was closed
	// out from under the caller (e.g. by another goroutine, or - in test
	// doubles - by simulated interruption).
	IsOpen() bool

	// HasFastPath reports whether ReadVectorAt/WriteVectorAt are backed
	// by a real positioned scatter/gather syscall rather than always
	// returning errFastPathUnsupported.
	HasFastPath() bool
}

// errFastPathUnsupported is returned by ReadVectorAt/WriteVectorAt when the
// platform has no positioned vectored I/O primitive. It is not exported:
// callers never need to check for it directly, since the vectored I/O
// engine (io_vector.go) handles the fallback internally.
type fastPathUnsupportedError struct{}

func (fastPathUnsupportedError) Error() string {
	return "pageswap: vectored positioned i/o not supported on this platform"
}

var errFastPathUnsupported error = fastPathUnsupportedError{}
