package pool

import "sync"

// MaxPoolBytes is the largest request size served from bins. Requests
// of exactly this size still use the bin path; larger requests bypass
// the pool entirely.
const MaxPoolBytes uintptr = 1 << 27

// BinnedPool is the primary policy: one free list per power-of-two
// size class, usage tracking, and (optionally) a background
// reclaimer.
type BinnedPool struct {
	mu       sync.Mutex
	classes  *classTable
	deferred deferredQueue
	handles  registry

	alloc     Allocator
	collector Collector
	metrics   *Metrics

	stopReclaimer chan struct{}
}

// NewBinnedPool constructs a BinnedPool around the given native
// allocator and managed-memory collector. Call Init before use.
func NewBinnedPool(alloc Allocator, collector Collector, metrics *Metrics) *BinnedPool {
	return &BinnedPool{
		alloc:     alloc,
		collector: collector,
		metrics:   metrics,
	}
}

// Init performs class pre-creation and, when MANAGED_POOL is enabled,
// spawns the background reclaimer. Idempotent in effect but callers
// should invoke it once.
func (p *BinnedPool) Init() {
	p.mu.Lock()
	if p.classes == nil {
		p.classes = newClassTable()
		p.handles = newRegistry()
	}
	p.mu.Unlock()

	if p.stopReclaimer == nil && managedPoolEnabled() {
		p.stopReclaimer = make(chan struct{})
		startReclaimer(p, p.stopReclaimer)
	}
}

// Close stops the background reclaimer, if one is running. It lets
// the reclaimer goroutine be stopped deterministically, e.g. by
// tests; the reclaimer never cancels itself.
func (p *BinnedPool) Close() {
	if p.stopReclaimer != nil {
		close(p.stopReclaimer)
		p.stopReclaimer = nil
	}
}

// Alloc returns a pointer to a region of at least bytes bytes, or
// ok=false on ladder exhaustion. Requests of at most MaxPoolBytes are
// rounded up to their class size; larger requests bypass the pool and
// are tracked only in the handle registry.
func (p *BinnedPool) Alloc(bytes uintptr) (uintptr, bool) {
	if bytes > MaxPoolBytes {
		return p.allocOversize(bytes)
	}
	return p.allocPooled(bytes)
}

func (p *BinnedPool) allocOversize(bytes uintptr) (uintptr, bool) {
	p.metrics.nativeAlloc()
	ptr, ok := p.alloc.Alloc(bytes)
	if !ok {
		p.metrics.failed()
		return 0, false
	}
	p.mu.Lock()
	p.handles.put(newBlock(ptr, bytes))
	p.mu.Unlock()
	return ptr, true
}

// allocPooled runs the 8-step escalation ladder for a request that
// maps to size class pid.
func (p *BinnedPool) allocPooled(bytes uintptr) (uintptr, bool) {
	pid := poolIndex(bytes)
	size := poolSize(pid)

	steps := []ladderStep{
		{"pop_class", func() (Block, bool) { return p.popClass(pid) }},
		{"native_alloc", func() (Block, bool) { return p.nativeAlloc(size) }},
		{"incremental_collect_then_pop", func() (Block, bool) {
			p.collector.Collect(false)
			return p.popClass(pid)
		}},
		{"reclaim_then_alloc", func() (Block, bool) {
			p.reclaim(&bytes, false)
			return p.nativeAlloc(size)
		}},
		{"full_collect_then_pop", func() (Block, bool) {
			p.collector.Collect(true)
			return p.popClass(pid)
		}},
		{"reclaim_then_alloc_again", func() (Block, bool) {
			p.reclaim(&bytes, false)
			return p.nativeAlloc(size)
		}},
		{"reclaim_all_then_alloc", func() (Block, bool) {
			p.reclaim(nil, true)
			return p.nativeAlloc(size)
		}},
	}

	b, ok := runLadder(p.metrics, steps)
	if !ok {
		logger.Debugw("binned pool allocation failed",
			"bytes", bytes, "class", pid, "err", wrapLadderFailure("reclaim_all_then_alloc"))
		p.metrics.failed()
		return 0, false
	}

	p.mu.Lock()
	p.insertFresh(pid, b)
	p.handles.put(b)
	used, cached := p.memoryLocked()
	p.mu.Unlock()
	p.metrics.setUsage(used, cached)
	return b.Ptr, true
}

// popClass is ladder step 1: pop a cached block from available[pid].
func (p *BinnedPool) popClass(pid PoolID) (Block, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.classes.class(pid)
	n := len(c.available)
	if n == 0 {
		return Block{}, false
	}
	b := c.available[n-1]
	c.available = c.available[:n-1]
	c.used[b.Ptr] = b
	c.usage = max(c.usage, c.currentUsage())
	return b, true
}

// nativeAlloc is ladder step 2: a direct call to the external
// allocator for the full class size, performed with the lock
// released.
func (p *BinnedPool) nativeAlloc(size uintptr) (Block, bool) {
	p.metrics.nativeAlloc()
	ptr, ok := p.alloc.Alloc(size)
	if !ok {
		return Block{}, false
	}
	return newBlock(ptr, size), true
}

// insertFresh records a freshly produced pooled block as checked out
// and updates the class's high-water usage. Must be called with p.mu
// held.
func (p *BinnedPool) insertFresh(pid PoolID, b Block) {
	c := p.classes.class(pid)
	c.used[b.Ptr] = b
	c.usage = max(c.usage, c.currentUsage())
}

// Free returns ptr to the pool. Pooled blocks are pushed to the
// deferred-free queue; oversize blocks are released to the native
// allocator immediately. Safe to call from finalizer contexts: no
// per-class bookkeeping happens here.
func (p *BinnedPool) Free(ptr uintptr) {
	p.mu.Lock()
	b, ok := p.handles.take(ptr)
	p.mu.Unlock()
	if !ok {
		panic(ErrInvalidFree)
	}

	if b.Size > MaxPoolBytes {
		p.metrics.nativeRelease(b.Size)
		p.alloc.Release(b.Ptr)
		return
	}
	p.deferred.push(b)
}

// UsedMemory returns the sum of class-size times population over used
// blocks.
func (p *BinnedPool) UsedMemory() uintptr {
	p.mu.Lock()
	defer p.mu.Unlock()
	used, _ := p.memoryLocked()
	return used
}

// CachedMemory returns the sum of class-size times population over
// available (cached, unused) blocks.
func (p *BinnedPool) CachedMemory() uintptr {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, cached := p.memoryLocked()
	return cached
}

// memoryLocked computes (used, cached) bytes across all classes. Must
// be called with p.mu held.
func (p *BinnedPool) memoryLocked() (used uintptr, cached uintptr) {
	for i, c := range p.classes.classes {
		size := poolSize(PoolID(i + 1))
		used += size * uintptr(len(c.used))
		cached += size * uintptr(len(c.available))
	}
	return used, cached
}
