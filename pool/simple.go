package pool

import "sync"

// Oversize bounds for the Simple Pool's matching policy: the second
// threshold is 32MiB, each with its own maximum allowed oversize.
const (
	oneMiB        uintptr = 1 << 20
	thirtyTwoMiB  uintptr = 32 << 20
	oversizeSmall uintptr = 1 << 20 // max oversize for 1MiB < s <= 32MiB
	oversizeLarge uintptr = 1 << 22 // max oversize for s > 32MiB
)

// SimplePool is the alternate policy: a single free set spanning the
// full range of request sizes, matched with a bounded-oversize
// best-fit instead of exact size classes. No background reclamation
// thread; eviction only happens on allocation pressure.
type SimplePool struct {
	mu        sync.Mutex
	available []Block
	deferred  deferredQueue
	handles   registry

	alloc     Allocator
	collector Collector
	metrics   *Metrics
}

// NewSimplePool constructs a SimplePool around the given native
// allocator and managed-memory collector. Call Init before use.
func NewSimplePool(alloc Allocator, collector Collector, metrics *Metrics) *SimplePool {
	return &SimplePool{alloc: alloc, collector: collector, metrics: metrics}
}

// Init prepares the pool for use. There is no class table to
// pre-create and no background thread to spawn for this policy; Init
// exists to satisfy the common Pool capability set and to match the
// Binned Pool's lifecycle.
func (p *SimplePool) Init() {
	p.mu.Lock()
	if p.handles.blocks == nil {
		p.handles = newRegistry()
	}
	p.mu.Unlock()
}

// satisfies reports whether a cached block of size b can serve a
// request of size s: s <= b <= s + maxOversize(s).
func satisfies(b, s uintptr) bool {
	if b < s {
		return false
	}
	switch {
	case s <= oneMiB:
		return true // unbounded oversize acceptable below 1MiB
	case s <= thirtyTwoMiB:
		return b <= s+oversizeSmall
	default:
		return b <= s+oversizeLarge
	}
}

// Alloc returns a pointer to a region of at least bytes bytes, or
// ok=false once the three-phase ladder is exhausted.
func (p *SimplePool) Alloc(bytes uintptr) (uintptr, bool) {
	steps := []ladderStep{
		{"scan_cache", func() (Block, bool) { return p.popMatching(bytes) }},
		{"incremental_collect_then_native_alloc", func() (Block, bool) {
			p.collector.Collect(false)
			return p.nativeAlloc(bytes)
		}},
		{"full_collect_then_reclaim_then_alloc", func() (Block, bool) {
			p.collector.Collect(true)
			p.reclaim(&bytes)
			return p.nativeAlloc(bytes)
		}},
	}

	b, ok := runLadder(p.metrics, steps)
	if !ok {
		logger.Debugw("simple pool allocation failed",
			"bytes", bytes, "err", wrapLadderFailure("full_collect_then_reclaim_then_alloc"))
		p.metrics.failed()
		return 0, false
	}

	p.mu.Lock()
	p.handles.put(b)
	used, cached := p.memoryLocked()
	p.mu.Unlock()
	p.metrics.setUsage(used, cached)
	return b.Ptr, true
}

// popMatching is ladder phase 1: an unordered scan of available for
// the first block satisfying the request. Any order is acceptable
// since oversize waste is bounded per class.
func (p *SimplePool) popMatching(bytes uintptr) (Block, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, b := range p.available {
		if satisfies(b.Size, bytes) {
			last := len(p.available) - 1
			p.available[i] = p.available[last]
			p.available = p.available[:last]
			return b, true
		}
	}
	return Block{}, false
}

// nativeAlloc is ladder phase 2/3's direct allocator call, performed
// at exactly the requested size. The Simple Pool never rounds.
func (p *SimplePool) nativeAlloc(bytes uintptr) (Block, bool) {
	p.metrics.nativeAlloc()
	ptr, ok := p.alloc.Alloc(bytes)
	if !ok {
		return Block{}, false
	}
	return newBlock(ptr, bytes), true
}

// Free returns ptr to the pool's deferred-free queue. The Simple Pool
// has no oversize bypass path; every block goes through the same
// queue regardless of size.
func (p *SimplePool) Free(ptr uintptr) {
	p.mu.Lock()
	b, ok := p.handles.take(ptr)
	p.mu.Unlock()
	if !ok {
		panic(ErrInvalidFree)
	}
	p.deferred.push(b)
}

// reclaim drains the deferred-free queue into available, then evicts
// arbitrarily until either target is met or available is empty. A nil
// target drains everything.
func (p *SimplePool) reclaim(target *uintptr) uintptr {
	p.mu.Lock()
	p.available = append(p.available, p.deferred.drain()...)

	var toEvict []Block
	var freed uintptr
	for len(p.available) > 0 {
		if target != nil && freed >= *target {
			break
		}
		last := len(p.available) - 1
		b := p.available[last]
		p.available = p.available[:last]
		toEvict = append(toEvict, b)
		freed += b.Size
	}
	used, cached := p.memoryLocked()
	p.mu.Unlock()
	p.metrics.setUsage(used, cached)

	for _, b := range toEvict {
		p.alloc.Release(b.Ptr)
		p.metrics.nativeRelease(b.Size)
	}
	return freed
}

// UsedMemory returns the sum of sizes of blocks currently checked out
// to callers.
func (p *SimplePool) UsedMemory() uintptr {
	p.mu.Lock()
	defer p.mu.Unlock()
	used, _ := p.memoryLocked()
	return used
}

// CachedMemory returns the sum of sizes of cached, unused blocks.
func (p *SimplePool) CachedMemory() uintptr {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, cached := p.memoryLocked()
	return cached
}

// memoryLocked computes (used, cached) bytes. Must be called with
// p.mu held.
func (p *SimplePool) memoryLocked() (used uintptr, cached uintptr) {
	for _, b := range p.handles.blocks {
		used += b.Size
	}
	for _, b := range p.available {
		cached += b.Size
	}
	return used, cached
}
