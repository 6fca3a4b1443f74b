package pageswap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestReopenRecoversFromClosedHandle simulates the Go analogue of a Java
// ClosedChannelException: something force-closes the handle backing the
// stripe a write is about to use, and the write must transparently reopen
// and succeed rather than surfacing the closed-handle error to the caller.
func TestReopenRecoversFromClosedHandle(t *testing.T) {
	fsys := newFakeFileSystem()
	sw, err := New("test.db", fsys, Config{PageSize: 16, NoChannelStriping: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sw.Close() })

	handle := sw.stripes.at(tokenStripe).(*fakeHandle)
	handle.forceClose()

	n, err := sw.Write(1, make([]byte, 16))
	require.NoError(t, err)
	require.Equal(t, 16, n)
	require.Equal(t, int64(1), sw.Stats().Reopens)

	// The reopened token stripe must have re-acquired the lock.
	require.True(t, sw.lockHeld.Load())
}

// TestReopenRefusesAfterExplicitClose ensures the critical section
// distinguishes "closed out from under us" from "we closed it ourselves":
// once Close has run, a closed-handle error must propagate as ErrClosed,
// not trigger a reopen.
func TestReopenRefusesAfterExplicitClose(t *testing.T) {
	fsys := newFakeFileSystem()
	sw, err := New("test.db", fsys, Config{PageSize: 16, NoChannelStriping: true})
	require.NoError(t, err)

	require.NoError(t, sw.Close())

	err = sw.reopen(tokenStripe, errHandleClosed)
	require.ErrorIs(t, err, ErrClosed)
}

// TestReopenExhaustsRetryBudget confirms a handle that comes back closed on
// every single reopen eventually surfaces ErrInterrupted instead of
// retrying forever. It uses a dedicated always-dead FileSystem (rather than
// fakeFileSystem) so the scenario isn't entangled with lock reacquisition.
func TestReopenExhaustsRetryBudget(t *testing.T) {
	fsys := &alwaysDeadFS{}
	sw, err := New("test.db", fsys, Config{PageSize: 16, NoChannelStriping: true, MaxReopenAttempts: 2})
	require.NoError(t, err)

	_, err = sw.Write(0, make([]byte, 16))
	require.ErrorIs(t, err, ErrInterrupted)
}

// alwaysDeadFS.Open always hands back a handle that reports itself closed
// and declines locking (errLockingUnsupported), so reopen's lock
// reacquisition step is a harmless no-op and every retry observes the same
// dead handle again, exhausting the budget deterministically.
type alwaysDeadFS struct{}

func (*alwaysDeadFS) Open(path string, direct bool) (Handle, error) {
	return &deadHandle{}, nil
}

func (*alwaysDeadFS) Delete(path string) error            { return nil }
func (*alwaysDeadFS) BlockSize(path string) (int64, error) { return 512, nil }

type deadHandle struct{}

func (*deadHandle) ReadAt(p []byte, off int64) (int, error)  { return 0, errHandleClosed }
func (*deadHandle) WriteAt(p []byte, off int64) (int, error) { return 0, errHandleClosed }
func (*deadHandle) ReadVectorAt(bufs [][]byte, off int64) (int64, error) {
	return 0, errHandleClosed
}
func (*deadHandle) WriteVectorAt(bufs [][]byte, off int64) (int64, error) {
	return 0, errHandleClosed
}
func (*deadHandle) Truncate(size int64) error   { return nil }
func (*deadHandle) Sync(metadataToo bool) error { return nil }
func (*deadHandle) TryLock() (bool, error)      { return false, errLockingUnsupported }
func (*deadHandle) Close() error                { return nil }
func (*deadHandle) Size() (int64, error)        { return 0, nil }
func (*deadHandle) IsOpen() bool                { return false }
func (*deadHandle) HasFastPath() bool           { return true }
