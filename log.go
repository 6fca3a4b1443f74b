package pageswap

import "log/slog"

// withSwapperAttrs returns the base slog.Logger attributes shared by every
// diagnostic record this package emits, so call sites only add what's
// specific to the event (stripe index, attempt count, and so on).
func withSwapperAttrs(logger *slog.Logger, path string) *slog.Logger {
	return logger.With("component", "pageswap", "path", path)
}
