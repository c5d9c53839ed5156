package eventful

import (
	"sync/atomic"

	"github.com/cespare/xxhash"
)

// Deduplicator remembers the digest of the last payload it let through.
type Deduplicator struct {
	lastHash atomic.Uint64
	seen     atomic.Bool
}

// Check reports whether data differs from the previous payload and returns its digest.
func (d *Deduplicator) Check(data []byte) (uint64, bool) {
	return d.CheckHash(xxhash.Sum64(data))
}

func (d *Deduplicator) CheckHash(h uint64) (uint64, bool) {
	if d.seen.Load() && h == d.lastHash.Load() {
		return h, false
	}
	d.lastHash.Store(h)
	d.seen.Store(true)
	return h, true
}
