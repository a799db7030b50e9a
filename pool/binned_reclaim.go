package pool

import "math"

// reclaim drains the deferred-free queue into the classes, then
// evicts cached blocks back to the native allocator. target is the
// number of bytes eviction should stop at once reached; a nil target
// means unset: drain everything marked reclaimable. In full mode
// every cached block is reclaimable; eviction still stops once a
// non-nil target is reached.
//
// Eviction proceeds largest class first. Returns the number of bytes
// actually freed.
func (p *BinnedPool) reclaim(target *uintptr, full bool) uintptr {
	p.mu.Lock()
	p.drainDeferredLocked()
	toEvict := p.selectEvictionsLocked(target, full)
	used, cached := p.memoryLocked()
	p.mu.Unlock()
	p.metrics.setUsage(used, cached)

	var freed uintptr
	for _, b := range toEvict {
		p.alloc.Release(b.Ptr)
		p.metrics.nativeRelease(b.Size)
		freed += b.Size
	}
	if freed > 0 {
		logger.Debugw("reclaim freed bytes", "bytes", freed, "full", full)
	}
	return freed
}

// drainDeferredLocked moves every block enqueued by Free into its
// class's available list, updating usage as in allocation. Must be
// called with p.mu held.
func (p *BinnedPool) drainDeferredLocked() {
	for _, b := range p.deferred.drain() {
		pid := poolIndex(b.Size)
		c := p.classes.class(pid)
		delete(c.used, b.Ptr)
		c.available = append(c.available, b)
		c.usage = max(c.usage, c.currentUsage())
	}
}

// selectEvictionsLocked computes the per-class reclaimable counts and
// pops that many blocks from the largest class down, stopping once
// cumulative size reaches *target (if target is non-nil). Must be
// called with p.mu held; the returned blocks have already been
// removed from their class's available list, so the caller may
// release the native allocation outside the lock.
func (p *BinnedPool) selectEvictionsLocked(target *uintptr, full bool) []Block {
	var evicted []Block
	var freed uintptr

	for i := len(p.classes.classes) - 1; i >= 0; i-- {
		if target != nil && freed >= *target {
			break
		}
		c := p.classes.classes[i]
		n := reclaimableCount(c, full)
		if n > len(c.available) {
			n = len(c.available)
		}
		for j := 0; j < n; j++ {
			if target != nil && freed >= *target {
				break
			}
			last := len(c.available) - 1
			b := c.available[last]
			c.available = c.available[:last]
			evicted = append(evicted, b)
			freed += b.Size
		}
	}
	return evicted
}

// reclaimableCount is the per-class reclaimable population: in full
// mode, every cached block; in background mode, the fraction of the
// class that the usage high-water marks never reached within the
// history window: 1 minus the max of history and the class's usage
// high-water mark since the last scan.
func reclaimableCount(c *poolClass, full bool) int {
	if full {
		return len(c.available)
	}
	total := len(c.used) + len(c.available)
	m := c.maxRecent(c.usage)
	return int(math.Floor((1 - m) * float64(total)))
}

// scan is invoked by the background reclaimer before it calls
// reclaim(full=false). It triggers an incremental managed collection,
// giving finalizers a chance to push into the deferred-free queue
// (those pushes are drained on the next reclaim, not here), then for
// every populated class shifts history left and appends the class's
// previous usage value, not the one just computed. The history always
// trails the live usage by one scan.
//
// Returns true if any class's previous usage differed from the newly
// computed current usage (a liveness signal the background reclaimer
// uses to decide whether to reset its backoff delay).
func (p *BinnedPool) scan() bool {
	p.collector.Collect(false)

	p.mu.Lock()
	defer p.mu.Unlock()

	changed := false
	for _, c := range p.classes.classes {
		total := len(c.used) + len(c.available)
		if total == 0 {
			continue
		}
		current := c.currentUsage()
		previous := c.usage
		c.pushHistory(previous)
		c.usage = current
		if previous != current {
			changed = true
		}
	}
	return changed
}
