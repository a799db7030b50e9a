package pool

import "sync"

// fakeAllocator stands in for the native device allocator in tests,
// so pool behavior can be exercised deterministically against an
// injected allocator rather than real hardware.
type fakeAllocator struct {
	mu sync.Mutex

	nextPtr     uintptr
	allocCalls  int
	freeCalls   int
	exhausted   bool
	allocations map[uintptr]uintptr // ptr -> size, for leak checks
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{nextPtr: 0x1000, allocations: make(map[uintptr]uintptr)}
}

func (f *fakeAllocator) Alloc(size uintptr) (uintptr, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allocCalls++
	if f.exhausted {
		return 0, false
	}
	ptr := f.nextPtr
	f.nextPtr += size
	if f.nextPtr%8 != 0 {
		f.nextPtr += 8 - f.nextPtr%8
	}
	f.allocations[ptr] = size
	return ptr, true
}

func (f *fakeAllocator) Release(ptr uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.freeCalls++
	delete(f.allocations, ptr)
}

func (f *fakeAllocator) liveBytes() uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total uintptr
	for _, sz := range f.allocations {
		total += sz
	}
	return total
}

// fakeCollector counts incremental/full collection triggers; it never
// does anything to memory on its own (tests push to the deferred
// queue directly to simulate a finalizer callback).
type fakeCollector struct {
	mu               sync.Mutex
	incrementalCalls int
	fullCalls        int
	onCollect        func(full bool)
}

func (f *fakeCollector) Collect(full bool) {
	f.mu.Lock()
	if full {
		f.fullCalls++
	} else {
		f.incrementalCalls++
	}
	cb := f.onCollect
	f.mu.Unlock()
	if cb != nil {
		cb(full)
	}
}

func (f *fakeCollector) counts() (incremental, full int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.incrementalCalls, f.fullCalls
}
