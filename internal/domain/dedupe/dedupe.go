// Package dedupe tracks candidate fingerprints already generated in a run.
package dedupe

import (
	"context"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

const defaultMaxSize = 50000

// Deduper records seen grouping fingerprints so each distinct grouping is
// scored at most once.
type Deduper interface {
	// SeenAndRecord atomically checks if fp was seen and records it if not.
	// Returns true if fp was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, fp uint64) bool

	Size() int64
}

// inMemoryDeduper keeps fingerprints in a set. In bounded mode a ring of
// insertion order evicts the oldest fingerprint once the set is full.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    mapset.Set[uint64]
	ring    []uint64
	next    int
	maxSize int // 0 or negative = unbounded
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = mapset.NewThreadUnsafeSet[uint64]()
	if d.maxSize > 0 {
		d.ring = make([]uint64, 0, d.maxSize)
	}
	return d
}

// SeenAndRecord atomically checks if fp was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, fp uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.seen.Contains(fp) {
		return true
	}
	if d.maxSize > 0 {
		if len(d.ring) < d.maxSize {
			d.ring = append(d.ring, fp)
		} else {
			d.seen.Remove(d.ring[d.next])
			d.ring[d.next] = fp
			d.next = (d.next + 1) % d.maxSize
		}
	}
	d.seen.Add(fp)
	return false
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.seen.Cardinality())
}
