// Package pageswap implements a single-file page swapper: the lowest layer
// of a database page cache. It translates fixed-size page read/write calls
// into positioned I/O against one backing file, so that higher layers (the
// in-memory buffer pool, eviction policy, dirty-page tracking) never have to
// think about file descriptors, short reads, or file growth.
//
// The package is organised into several files for clarity:
//
//	config.go     – construction parameters & platform defaults
//	errors.go     – sentinel errors
//	fs.go         – filesystem/handle interfaces (the test seam)
//	fs_unix.go    – default handle implementation (pread/pwrite/preadv/pwritev/flock)
//	fs_windows.go – default handle implementation without vectored I/O or locking
//	stripe.go     – channel stripe set
//	filesize.go   – atomic file-size register
//	lock.go       – advisory exclusive region lock
//	io_scalar.go  – positioned read/write, zero-fill, reopen retry
//	io_vector.go  – vectored read/write, reopen retry, scalar fallback
//	reopen.go     – reopen-on-closed-handle critical section
//	evict.go      – eviction callback dispatch
//	metrics.go    – lightweight atomic counters
//	log.go        – structured diagnostics
//	swapper.go    – the Swapper type and its lifecycle
//
// # Basic usage
//
//	sw, err := pageswap.New("/var/lib/db/store.1", nil, pageswap.Config{
//	    PageSize: 8192,
//	})
//	if err != nil {
//	    // handle [ErrFileLocked] (another instance already owns the file)
//	}
//	defer sw.Close()
//
//	buf := make([]byte, sw.PageSize())
//	n, err := sw.Write(3, buf)
//	n, err = sw.Read(3, buf)
//
// # Concurrency
//
// Every exported method on [Swapper] is safe to call concurrently from any
// number of goroutines. There is no internal worker pool; callers provide
// their own concurrency.
//
// # Scope
//
// This package does not decide which pages to evict, track dirty pages, log
// transactions, recover from crashes, manage more than one file, checksum
// pages, or encrypt pages. All of that belongs to the enclosing page cache.
package pageswap
