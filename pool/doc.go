// Package pool implements a binned memory pool allocator for
// externally managed opaque memory (GPU device memory, or any region
// with an expensive native allocate/release primitive).
//
// Two independent policies share the same Allocator/Collector
// collaborator interfaces:
//
//	BinnedPool: one free list per power-of-two size class, usage
//	tracking, and a background reclaimer.
//
//	SimplePool: a single free set matched by bounded-oversize
//	best-fit, no background thread.
//
// Both implement Pool (Alloc/Free/UsedMemory/CachedMemory/Init) and
// can be swapped at process initialization. An application normally
// links exactly one.
//
// Neither policy splits, merges, or resizes blocks; each cached block
// is returned whole to the exact size class (or exact size, for the
// Simple Pool) it was allocated at.
package pool
