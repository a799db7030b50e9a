package pool

import "sync"

// Pool is the capability set both policies expose: a caller that only
// needs alloc/free/stat semantics can depend on this interface and
// swap the underlying policy at process initialization without other
// code changes.
type Pool interface {
	Init()
	Alloc(bytes uintptr) (ptr uintptr, ok bool)
	Free(ptr uintptr)
	UsedMemory() uintptr
	CachedMemory() uintptr
	Stats() Stats
}

var (
	defaultOnce sync.Once
	defaultPool Pool
)

// Default returns the process-global pool instance, constructing it
// on first use with the given Allocator/Collector/Metrics. It offers
// singleton-module ergonomics layered over the per-instance
// BinnedPool/SimplePool types that let tests run multiple isolated
// pools concurrently.
//
// Subsequent calls ignore their arguments and return the pool built
// on first use; construct and hold your own *BinnedPool/*SimplePool
// directly if you need more than one pool per process.
func Default(alloc Allocator, collector Collector, metrics *Metrics) Pool {
	defaultOnce.Do(func() {
		defaultPool = NewBinnedPool(alloc, collector, metrics)
		defaultPool.Init()
	})
	return defaultPool
}

var (
	_ Pool = (*BinnedPool)(nil)
	_ Pool = (*SimplePool)(nil)
)
