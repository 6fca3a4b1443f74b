package pageswap

import (
	"log/slog"
	"math/bits"
	"runtime"
)

// defaultMaxReopenAttempts is the retry budget for closed-handle recovery,
// carried over unchanged from the original implementation this package
// generalizes.
const defaultMaxReopenAttempts = 42

// defaultChannelStripeShift is the number of low-order page-id bits consumed
// before rotating to the next stripe: 16 consecutive pages per stripe.
const defaultChannelStripeShift = 4

// EvictionCallback is invoked by [Swapper.Evicted] when the enclosing cache
// evicts a page bound to this swapper.
type EvictionCallback func(pageID int64)

// Config carries the construction parameters for [New]. Unlike the original
// this package is modeled on, these are passed explicitly rather than read
// from process-wide flags on the hot path.
type Config struct {
	// PageSize is the fixed size, in bytes, of every page. Must be > 0.
	PageSize int

	// OnEvict is invoked by Evicted. May be nil.
	OnEvict EvictionCallback

	// NoChannelStriping forces a single stripe (K=1), disabling the
	// concurrency benefit of channel striping. Useful on platforms or
	// filesystems where opening many handles to one file is undesirable.
	NoChannelStriping bool

	// UseDirectIO requests O_DIRECT on Linux. The constructor fails with
	// ErrInvalidConfig if the host isn't Linux or PageSize isn't a
	// multiple of the target file's block size.
	UseDirectIO bool

	// ChannelStripePower, if > 0, overrides the default exponent of two
	// for the stripe count (K = 1<<ChannelStripePower). The zero value
	// means "use the platform default" (0 on non-Windows, scaled to core
	// count on Windows); to force K=1 explicitly, set NoChannelStriping
	// instead of passing a power of 0.
	ChannelStripePower int

	// ChannelStripeShift, if > 0, overrides the default of 4 (16
	// consecutive pages per stripe before rotating).
	ChannelStripeShift int

	// MaxReopenAttempts, if > 0, overrides the default retry budget of 42
	// for closed-handle recovery.
	MaxReopenAttempts int

	// Logger receives diagnostic events (reopen, fast-path fallback). A
	// nil Logger uses slog.Default().
	Logger *slog.Logger
}

// withDefaults returns a copy of cfg with zero-value fields replaced by
// platform defaults, and validates PageSize.
func (cfg Config) withDefaults() (Config, error) {
	if cfg.PageSize <= 0 {
		return cfg, &ConfigError{Reason: "page size must be positive"}
	}

	if cfg.ChannelStripeShift <= 0 {
		cfg.ChannelStripeShift = defaultChannelStripeShift
	}

	if cfg.MaxReopenAttempts <= 0 {
		cfg.MaxReopenAttempts = defaultMaxReopenAttempts
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return cfg, nil
}

// stripeCount resolves K from cfg, honoring NoChannelStriping and the
// platform default described in spec §4.B: 1 on non-Windows, the smallest
// power of two >= NumCPU on Windows, but never less than 2 and capped at 64.
func (cfg Config) stripeCount() int {
	if cfg.NoChannelStriping {
		return 1
	}

	power := cfg.ChannelStripePower
	if power <= 0 {
		power = defaultChannelStripePower()
	}

	if power < 0 {
		power = 0
	}
	if power > 6 {
		power = 6
	}

	return 1 << power
}

// defaultChannelStripePower mirrors the original's Windows-only scaling:
// Windows lacks true positioned pread/pwrite, so striping across several
// channels is the only way to get concurrent I/O on one file. Everywhere
// else, a single channel with pread/pwrite already services concurrent
// callers without contention.
func defaultChannelStripePower() int {
	if runtime.GOOS != "windows" {
		return 0
	}

	cores := runtime.NumCPU()
	if cores <= 1 {
		return 1
	}

	power := bits.Len(uint(cores - 1))
	if power < 1 {
		power = 1
	}

	return power
}
