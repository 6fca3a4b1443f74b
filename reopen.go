package pageswap

import (
	"errors"
	"fmt"
)

// isClosedHandleError reports whether err indicates the handle it came from
// is no longer usable — the Go analogue of java.nio.channels.
// ClosedChannelException, which in this package's model is how we observe
// "someone (a concurrent Close, or in tests a fake FileSystem) pulled the
// rug out from under an in-flight operation."
func isClosedHandleError(h Handle, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errHandleClosed) {
		return true
	}
	return !h.IsOpen()
}

// errHandleClosed is the error the test handles return from I/O methods
// once closed. The default osHandle never returns it: a closed os.File
// reports an error satisfying errors.Is(err, fs.ErrClosed), and
// isClosedHandleError recognizes that case through the handle's IsOpen.
// This sentinel lets handle implementations and tests signal the condition
// explicitly without depending on os.File's exact wrapping.
var errHandleClosed = errors.New("pageswap: handle closed")

// reopen is the critical section from spec §4.G: replace the stripe at
// index i if, and only if, its handle was closed out from under us by
// something other than an explicit Close. Must be called with s.mu held.
func (s *Swapper) reopen(index int, cause error) error {
	current := s.stripes.at(index)
	if current.IsOpen() {
		// Someone else already healed it.
		return nil
	}

	if s.closed.Load() {
		return fmt.Errorf("%w: %w", ErrClosed, cause)
	}

	fresh, err := s.fsys.Open(s.path, s.useDirectIO)
	if err != nil {
		return fmt.Errorf("reopening %s: %w (original: %w)", s.path, err, cause)
	}

	old := s.stripes.replace(index, fresh)
	_ = old.Close() // already dead; best-effort cleanup.
	s.metrics.reopens.Add(1)

	if index == tokenStripe {
		// Closing the old handle released any lock it held.
		held, lockErr := acquireLock(fresh, s.path)
		if lockErr != nil {
			return fmt.Errorf("reacquiring lock after reopen: %w (original: %w)", lockErr, cause)
		}
		s.lockHeld.Store(held)
		s.metrics.lockReacquisitions.Add(1)
	}

	s.logger.Debug("pageswap: reopened stripe after closed handle", "path", s.path, "stripe", index)

	return nil
}

// reopenLocked acquires the swapper's mutex before delegating to reopen. It
// is the entry point used by the I/O engines.
func (s *Swapper) reopenLocked(index int, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reopen(index, cause)
}
