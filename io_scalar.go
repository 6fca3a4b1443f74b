package pageswap

import (
	"errors"
	"fmt"
	"io"
)

// readScalar implements spec §4.E's read: compute the offset, short-circuit
// to a full zero-fill when it's already past EOF, otherwise loop ReadAt
// until EOF or a full page, zero-filling whatever ReadAt didn't cover.
//
// The retry-on-closed-handle loop is iterative rather than the original's
// tail recursion (spec §9's design note): same behavior, no stack growth
// across up to maxReopenAttempts retries.
func (s *Swapper) readScalar(pageID int64, buf []byte) (int, error) {
	offset := pageID * int64(s.pageSize)

	for attemptsLeft := s.maxReopenAttempts; ; attemptsLeft-- {
		if offset >= s.fileSize.get() {
			zero(buf[:s.pageSize])
			return 0, nil
		}

		index := s.stripes.index(pageID)
		handle := s.stripes.at(index)

		n, err := readFullAt(handle, buf[:s.pageSize], offset)
		if err == nil {
			s.metrics.bytesRead.Add(int64(n))
			return n, nil
		}

		if !isClosedHandleError(handle, err) {
			return n, fmt.Errorf("pageswap: read page %d: %w", pageID, err)
		}

		if reopenErr := s.reopenLocked(index, err); reopenErr != nil {
			return 0, reopenErr
		}

		if attemptsLeft < 1 {
			return 0, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
	}
}

// readFullAt loops ReadAt until the buffer is full or EOF, zero-filling the
// remainder on EOF. It is also used by the vectored fallback path.
func readFullAt(h Handle, buf []byte, offset int64) (int, error) {
	readSoFar := 0
	for readSoFar < len(buf) {
		n, err := h.ReadAt(buf[readSoFar:], offset+int64(readSoFar))
		readSoFar += n
		if err != nil {
			if errors.Is(err, io.EOF) {
				zero(buf[readSoFar:])
				return readSoFar, nil
			}
			return readSoFar, err
		}
	}
	return readSoFar, nil
}

// writeScalar implements spec §4.E's write: raise fileSize to cover the
// page *before* issuing the write, so a concurrent reader computing
// offset < fileSize can never observe the new region as not-yet-written.
func (s *Swapper) writeScalar(pageID int64, buf []byte) (int, error) {
	offset := pageID * int64(s.pageSize)

	for attemptsLeft := s.maxReopenAttempts; ; attemptsLeft-- {
		s.fileSize.increaseTo(offset + int64(s.pageSize))

		index := s.stripes.index(pageID)
		handle := s.stripes.at(index)

		_, err := handle.WriteAt(buf[:s.pageSize], offset)
		if err == nil {
			s.metrics.bytesWritten.Add(int64(s.pageSize))
			return s.pageSize, nil
		}

		if !isClosedHandleError(handle, err) {
			return 0, fmt.Errorf("pageswap: write page %d: %w", pageID, err)
		}

		if reopenErr := s.reopenLocked(index, err); reopenErr != nil {
			return 0, reopenErr
		}

		if attemptsLeft < 1 {
			return 0, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
	}
}

// zero clears b in place.
func zero(b []byte) {
	clear(b)
}
