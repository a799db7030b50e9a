package pool

// Allocator is the native device allocation primitive the pool caches
// around. It is provided by the host and must not panic under memory
// pressure; a failed allocation is signalled by the boolean return,
// never an error or exception.
type Allocator interface {
	// Alloc attempts a native allocation of exactly size bytes. ok is
	// false when the native allocator is under pressure and cannot
	// satisfy the request; ptr is meaningless in that case.
	Alloc(size uintptr) (ptr uintptr, ok bool)

	// Release returns a native allocation obtained from Alloc. It must
	// be infallible.
	Release(ptr uintptr)
}

// Collector is the host-side managed-memory system the pool asks to
// run a collection pass when it needs finalizers a chance to push
// freed blocks into the pool's deferred-free queue.
type Collector interface {
	// Collect requests an incremental (full=false) or full (full=true)
	// garbage collection. Synchronous: it does not return until the
	// pass (and any finalizers it ran) has completed.
	Collect(full bool)
}

// NopCollector is a Collector that does nothing, for callers with no
// managed-memory system to drive (e.g. a host that owns allocations
// outside of any garbage-collected runtime).
type NopCollector struct{}

// Collect implements Collector.
func (NopCollector) Collect(full bool) {}
