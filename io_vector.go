package pageswap

import "fmt"

// readVector implements spec §4.F's vectored read. When the selected
// stripe's handle has a fast path (preadv on every target but Windows — see
// fs_unix.go/fs_windows.go), it issues positioned scatter-reads for the
// whole run; the kernel already serializes each call against the file's
// offset, which is the property the original's reflection-retrieved
// "position lock" existed to provide, so no user-space lock is needed here.
// Otherwise, or if the fast path fails with anything but a closed handle, it
// falls back to one readScalar call per page (spec §4.F.6).
func (s *Swapper) readVector(startPageID int64, bufs [][]byte) (int64, error) {
	index := s.stripes.index(startPageID)
	handle := s.stripes.at(index)

	if !handle.HasFastPath() {
		return s.readVectorFallback(startPageID, bufs)
	}

	n, err := s.readVectorFastPath(startPageID, index, bufs)
	if err != nil {
		if isClosedHandleError(handle, err) {
			return 0, err
		}
		s.logger.Warn("pageswap: vectored read fast path failed, falling back to scalar", "path", s.path, "err", err)
		return s.readVectorFallback(startPageID, bufs)
	}

	return n, nil
}

func (s *Swapper) readVectorFastPath(startPageID int64, index int, bufs [][]byte) (int64, error) {
	offset := startPageID * int64(s.pageSize)
	toRead := int64(s.pageSize) * int64(len(bufs))

	var readSoFar int64
	for attemptsLeft := s.maxReopenAttempts; readSoFar < toRead; {
		handle := s.stripes.at(index)

		// unix.Preadv reports end-of-file as a short read with a nil
		// error (it wraps the raw readv(2) syscall, which returns fewer
		// bytes than requested at EOF rather than synthesizing io.EOF the
		// way Go's io.Reader convention does).
		n, err := handle.ReadVectorAt(remainingBufs(bufs, readSoFar, s.pageSize), offset+readSoFar)
		if err == nil {
			readSoFar += n
			if n == 0 {
				break // EOF
			}
			continue
		}

		if !isClosedHandleError(handle, err) {
			return readSoFar, fmt.Errorf("pageswap: vectored read from page %d: %w", startPageID, err)
		}

		if reopenErr := s.reopenLocked(index, err); reopenErr != nil {
			return readSoFar, reopenErr
		}

		if attemptsLeft < 1 {
			return readSoFar, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		attemptsLeft--
	}

	zeroVectorTail(bufs, readSoFar, s.pageSize)
	s.metrics.bytesRead.Add(readSoFar)
	return readSoFar, nil
}

// remainingBufs returns the suffix of bufs starting consumed bytes in,
// slicing the first partially-consumed buffer rather than copying, so a
// retried preadv/pwritev call resumes exactly where the last one left off.
func remainingBufs(bufs [][]byte, consumed int64, pageSize int) [][]byte {
	skip := int(consumed / int64(pageSize))
	within := int(consumed % int64(pageSize))

	rest := bufs[skip:]
	if within == 0 || len(rest) == 0 {
		return rest
	}

	out := make([][]byte, len(rest))
	copy(out, rest)
	out[0] = out[0][within:]
	return out
}

// zeroVectorTail zero-fills whatever the vectored read didn't cover: the
// remainder of the partially-filled page at n's boundary, and every
// subsequent page in full. Preserved at byte granularity (not whole-page
// granularity) per SPEC_FULL.md §9, matching the original exactly.
func zeroVectorTail(bufs [][]byte, bytesRead int64, pageSize int) {
	fullPages := int(bytesRead / int64(pageSize))
	partial := int(bytesRead % int64(pageSize))

	if fullPages < len(bufs) {
		zero(bufs[fullPages][partial:pageSize])
		for i := fullPages + 1; i < len(bufs); i++ {
			zero(bufs[i][:pageSize])
		}
	}
}

func (s *Swapper) readVectorFallback(startPageID int64, bufs [][]byte) (int64, error) {
	var total int64
	for i, buf := range bufs {
		n, err := s.readScalar(startPageID+int64(i), buf)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// writeVector implements spec §4.F's vectored write, symmetric to
// readVector: raise fileSize to cover the whole run before issuing the
// gather-write, then positioned pwritev calls (or a scalar fallback).
func (s *Swapper) writeVector(startPageID int64, bufs [][]byte) (int64, error) {
	offset := startPageID * int64(s.pageSize)
	toWrite := int64(s.pageSize) * int64(len(bufs))
	s.fileSize.increaseTo(offset + toWrite)

	index := s.stripes.index(startPageID)
	handle := s.stripes.at(index)

	if !handle.HasFastPath() {
		return s.writeVectorFallback(startPageID, bufs)
	}

	n, err := s.writeVectorFastPath(startPageID, index, bufs)
	if err != nil {
		if isClosedHandleError(handle, err) {
			return 0, err
		}
		s.logger.Warn("pageswap: vectored write fast path failed, falling back to scalar", "path", s.path, "err", err)
		return s.writeVectorFallback(startPageID, bufs)
	}

	return n, nil
}

func (s *Swapper) writeVectorFastPath(startPageID int64, index int, bufs [][]byte) (int64, error) {
	offset := startPageID * int64(s.pageSize)
	toWrite := int64(s.pageSize) * int64(len(bufs))

	var written int64
	for attemptsLeft := s.maxReopenAttempts; written < toWrite; {
		handle := s.stripes.at(index)

		n, err := handle.WriteVectorAt(remainingBufs(bufs, written, s.pageSize), offset+written)
		if err == nil {
			written += n
			continue
		}

		if !isClosedHandleError(handle, err) {
			return written, fmt.Errorf("pageswap: vectored write from page %d: %w", startPageID, err)
		}

		if reopenErr := s.reopenLocked(index, err); reopenErr != nil {
			return written, reopenErr
		}

		if attemptsLeft < 1 {
			return written, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		attemptsLeft--
	}

	s.metrics.bytesWritten.Add(written)
	return written, nil
}

func (s *Swapper) writeVectorFallback(startPageID int64, bufs [][]byte) (int64, error) {
	var total int64
	for i, buf := range bufs {
		n, err := s.writeScalar(startPageID+int64(i), buf)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
