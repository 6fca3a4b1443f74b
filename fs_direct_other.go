//go:build !windows && !linux

package pageswap

// oDirectFlag is zero on non-Linux unix targets: Config.UseDirectIO is
// rejected with ErrInvalidConfig before this flag would ever be consulted,
// since direct I/O validation requires Linux (see swapper.go).
const oDirectFlag = 0
