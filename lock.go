package pageswap

import "errors"

// errLockingUnsupported is returned by Handle.TryLock on platforms where
// holding a lock on one handle would restrict I/O to that handle alone,
// breaking channel striping (Windows — see fs_windows.go). The lock
// manager treats it as "skip locking, not a failure": external mutual
// exclusion is presumed to be enforced by a higher-level lock file, exactly
// as spec §4.D documents.
var errLockingUnsupported = errors.New("pageswap: locking unsupported on this platform")

// acquireLock attempts the exclusive region lock on the token stripe.
// Returns (held=true, nil) on success, (false, nil) if locking is simply
// unsupported on this platform, and a non-nil error (a *FileLockError) if
// the lock is held by someone else or something else went wrong.
func acquireLock(h Handle, path string) (bool, error) {
	held, err := h.TryLock()
	if err != nil {
		if errors.Is(err, errLockingUnsupported) {
			return false, nil
		}
		return false, newFileLockError(path, err)
	}

	if !held {
		return false, newFileLockError(path, nil)
	}

	return true, nil
}
