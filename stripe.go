package pageswap

import "sync/atomic"

// tokenStripe is the stripe index that owns the region lock and services
// Force/Truncate, matching spec §4.D/§4.I.
const tokenStripe = 0

// stripeSet holds the K independent handles to one file and the arithmetic
// that maps a page id to a handle. Lookup is branch-free: (pageID >>
// shift) & mask, generalized from the index-search in
// luhtfiimanal-go-cache-archive/shard_lookup.go to a direct computation,
// since every stripe here is the same size class (one open handle) rather
// than a range of record ids.
//
// Each slot is an atomic.Pointer[Handle] rather than a plain Handle: unlike
// the Java original, where a reference store/load is atomic by the JLS and
// an unlocked read of channels[stripe] is safe, a Go interface value is two
// words, and reopen (reopen.go) installs a fresh handle from a different
// goroutine than the one calling at() on the hot path. Without this, at()
// and replace() racing would be a torn read, generalizing the fileSize
// register's unsafe-primitive-to-atomic translation (filesize.go) to this
// slot too, per spec §5/§9.
type stripeSet struct {
	handles []atomic.Pointer[Handle]
	mask    int
	shift   uint
}

// newStripeSet opens count handles to path via fsys, validating that count
// is a power of two.
func newStripeSet(fsys FileSystem, path string, count int, shift int, direct bool) (*stripeSet, error) {
	if count < 1 || count&(count-1) != 0 {
		return nil, &ConfigError{Reason: "stripe count must be a power of two"}
	}

	handles := make([]atomic.Pointer[Handle], count)
	for i := 0; i < count; i++ {
		h, err := fsys.Open(path, direct)
		if err != nil {
			for j := 0; j < i; j++ {
				_ = (*handles[j].Load()).Close()
			}
			return nil, err
		}
		handles[i].Store(&h)
	}

	return &stripeSet{
		handles: handles,
		mask:    count - 1,
		shift:   uint(shift),
	}, nil
}

// count returns K.
func (s *stripeSet) count() int { return len(s.handles) }

// index computes the stripe for a page id: (pageID >> shift) & mask.
func (s *stripeSet) index(pageID int64) int {
	return int(pageID>>s.shift) & s.mask
}

// at returns the handle currently installed at i. Callers racing a reopen
// may observe either the old or the freshly installed handle; both are
// valid, and a closed old handle funnels the caller into the reopen path.
func (s *stripeSet) at(i int) Handle {
	return *s.handles[i].Load()
}

// replace installs a freshly opened handle at index i, returning the
// previous one so the caller (reopen.go) can decide what, if anything, to
// do with it (it is already closed by definition — that's why we're here).
func (s *stripeSet) replace(i int, h Handle) Handle {
	old := s.handles[i].Swap(&h)
	return *old
}

// closeAll closes every stripe, returning the first error encountered with
// the rest folded in via errors.Join, matching spec §4.I's "first wins,
// rest are suppressed" close aggregation.
func (s *stripeSet) closeAll() error {
	hs := make([]Handle, len(s.handles))
	for i := range s.handles {
		hs[i] = *s.handles[i].Load()
	}
	return closeAllHandles(hs)
}
