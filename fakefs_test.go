package pageswap

import (
	"io"
	"sync"
)

// fakeFileSystem is an in-memory FileSystem used to exercise the reopen and
// lock paths deterministically, generalizing the Real/Chaos fault-injection
// split from calvinalkan-agent-task/pkg/fs to this package's narrower
// FileSystem/Handle surface: every open file is a shared *fakeFile, and a
// test can tell any one of its open handles to report itself closed on
// demand, modeling the closed-channel failures reopen.go exists to survive.
type fakeFileSystem struct {
	mu      sync.Mutex
	files   map[string]*fakeFile
	deleted map[string]bool
}

func newFakeFileSystem() *fakeFileSystem {
	return &fakeFileSystem{
		files:   make(map[string]*fakeFile),
		deleted: make(map[string]bool),
	}
}

func (fs *fakeFileSystem) Open(path string, direct bool) (Handle, error) {
	fs.mu.Lock()
	f, ok := fs.files[path]
	if !ok {
		f = &fakeFile{}
		fs.files[path] = f
	}
	fs.mu.Unlock()

	return &fakeHandle{file: f, open: true}, nil
}

func (fs *fakeFileSystem) Delete(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.files, path)
	fs.deleted[path] = true
	return nil
}

func (fs *fakeFileSystem) BlockSize(path string) (int64, error) {
	return 512, nil
}

// fakeFile is the shared backing store behind every fakeHandle opened on the
// same path, mimicking how several stripe handles all observe the same
// underlying file's bytes and length.
type fakeFile struct {
	mu     sync.Mutex
	data   []byte
	locked bool
}

type fakeHandle struct {
	file *fakeFile
	open bool
}

func (h *fakeHandle) ReadAt(p []byte, off int64) (int, error) {
	h.file.mu.Lock()
	defer h.file.mu.Unlock()

	if !h.open {
		return 0, errHandleClosed
	}

	if off >= int64(len(h.file.data)) {
		return 0, io.EOF
	}

	n := copy(p, h.file.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (h *fakeHandle) WriteAt(p []byte, off int64) (int, error) {
	h.file.mu.Lock()
	defer h.file.mu.Unlock()

	if !h.open {
		return 0, errHandleClosed
	}

	need := off + int64(len(p))
	if need > int64(len(h.file.data)) {
		grown := make([]byte, need)
		copy(grown, h.file.data)
		h.file.data = grown
	}
	copy(h.file.data[off:], p)
	return len(p), nil
}

func (h *fakeHandle) ReadVectorAt(bufs [][]byte, off int64) (int64, error) {
	var total int64
	for _, buf := range bufs {
		n, err := h.ReadAt(buf, off+total)
		total += int64(n)
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
	}
	return total, nil
}

func (h *fakeHandle) WriteVectorAt(bufs [][]byte, off int64) (int64, error) {
	var total int64
	for _, buf := range bufs {
		n, err := h.WriteAt(buf, off+total)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (h *fakeHandle) Truncate(size int64) error {
	h.file.mu.Lock()
	defer h.file.mu.Unlock()
	if !h.open {
		return errHandleClosed
	}
	if size <= int64(len(h.file.data)) {
		h.file.data = h.file.data[:size]
	} else {
		grown := make([]byte, size)
		copy(grown, h.file.data)
		h.file.data = grown
	}
	return nil
}

func (h *fakeHandle) Sync(metadataToo bool) error {
	if !h.open {
		return errHandleClosed
	}
	return nil
}

func (h *fakeHandle) TryLock() (bool, error) {
	h.file.mu.Lock()
	defer h.file.mu.Unlock()
	if !h.open {
		return false, errHandleClosed
	}
	if h.file.locked {
		return false, nil
	}
	h.file.locked = true
	return true, nil
}

func (h *fakeHandle) Close() error {
	h.file.mu.Lock()
	defer h.file.mu.Unlock()
	if h.open {
		h.open = false
		h.file.locked = false
	}
	return nil
}

func (h *fakeHandle) Size() (int64, error) {
	h.file.mu.Lock()
	defer h.file.mu.Unlock()
	return int64(len(h.file.data)), nil
}

func (h *fakeHandle) IsOpen() bool {
	h.file.mu.Lock()
	defer h.file.mu.Unlock()
	return h.open
}

func (h *fakeHandle) HasFastPath() bool { return true }

// forceClose simulates an external interruption: the handle is reported
// closed even though nothing called Close. Real flock semantics release the
// lock as soon as the underlying fd is closed by any means, so this clears
// it too, matching osHandle's behavior on a real forced close.
func (h *fakeHandle) forceClose() {
	h.file.mu.Lock()
	h.open = false
	h.file.locked = false
	h.file.mu.Unlock()
}
