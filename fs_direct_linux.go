//go:build linux

package pageswap

import "golang.org/x/sys/unix"

// oDirectFlag is the open(2) flag that requests direct I/O, bypassing the
// page cache. Config.UseDirectIO's constructor-time validation (Linux only,
// per spec) makes this the only platform where it is ever non-zero.
const oDirectFlag = unix.O_DIRECT
