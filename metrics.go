package pageswap

import "sync/atomic"

// swapperMetrics holds the atomic counters maintained by the I/O and reopen
// engines, generalizing the hit/miss counters
// luhtfiimanal-go-cache-archive/stats.go reports for its ring buffer to this
// component's actual events: bytes moved, and how often the closed-handle
// recovery path had to run.
type swapperMetrics struct {
	bytesRead          atomic.Int64
	bytesWritten       atomic.Int64
	reopens            atomic.Int64
	lockReacquisitions atomic.Int64
}

// Metrics is a point-in-time snapshot returned by [Swapper.Stats].
type Metrics struct {
	BytesRead          int64
	BytesWritten       int64
	Reopens            int64
	LockReacquisitions int64
}

func (m *swapperMetrics) snapshot() Metrics {
	return Metrics{
		BytesRead:          m.bytesRead.Load(),
		BytesWritten:       m.bytesWritten.Load(),
		Reopens:            m.reopens.Load(),
		LockReacquisitions: m.lockReacquisitions.Load(),
	}
}
