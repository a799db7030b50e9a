package pool

import "math/bits"

// PoolID identifies a binned pool size class. Classes are indexed
// from 1; class 0 is reserved to mean "not pooled".
type PoolID int

// preallocatedClasses is the number of size classes created eagerly
// at Init: up to 2^29 bytes cached per class, though MaxPoolBytes
// (2^27) is the request-size cutoff that routes a request to the bins
// at all.
const preallocatedClasses = 30

// poolIndex maps a request of n>0 bytes to its size class:
// pid = ceil(log2(n)) + 1. n==0 is defined to map to class 1 (size
// 1), matching the alloc(0) boundary behavior.
func poolIndex(n uintptr) PoolID {
	if n <= 1 {
		return 1
	}
	// bits.Len returns the number of bits to represent n, i.e.
	// floor(log2(n))+1. ceil(log2(n)) equals that unless n is itself
	// a power of two, in which case it is one less.
	l := bits.Len(uint(n - 1))
	return PoolID(l + 1)
}

// poolSize returns the canonical (rounded-up) size of class pid:
// 2^(pid-1).
func poolSize(pid PoolID) uintptr {
	return uintptr(1) << uint(pid-1)
}

// classTable holds the lazily-extendable set of size classes a
// BinnedPool has materialized storage for. Classes 1..preallocatedClasses
// are created eagerly by Init; extendClasses grows the table further
// under the pool's lock on a class overflow, the same function
// backing both paths so the eager and lazy bounds cannot disagree.
type classTable struct {
	classes []*poolClass
}

// poolClass is the per-class state: blocks handed to callers, cached
// unused blocks, and the usage/history bookkeeping the background
// reclaimer consults.
type poolClass struct {
	used      map[uintptr]Block
	available []Block

	// usage is the high-water-mark used/(used+available) observed
	// since the last scan; reset each scan.
	usage float64

	// history is a fixed-length window of the last usageWindow usage
	// samples (oldest first).
	history []float64
}

// usageWindow is the number of historic usage samples retained per
// class.
const usageWindow = 5

func newPoolClass() *poolClass {
	return &poolClass{
		used:    make(map[uintptr]Block),
		usage:   1, // empty classes read as fully utilized
		history: make([]float64, 0, usageWindow),
	}
}

// currentUsage computes len(used)/(len(used)+len(available)). An
// entirely empty class reads as usage 1 to discourage reclaiming
// classes with no population at all.
func (c *poolClass) currentUsage() float64 {
	total := len(c.used) + len(c.available)
	if total == 0 {
		return 1
	}
	return float64(len(c.used)) / float64(total)
}

// pushHistory appends v to the history window, evicting the oldest
// sample once the window is full.
func (c *poolClass) pushHistory(v float64) {
	if len(c.history) == usageWindow {
		copy(c.history, c.history[1:])
		c.history = c.history[:usageWindow-1]
	}
	c.history = append(c.history, v)
}

// maxRecent returns the maximum of history and current, the
// high-water mark used by background-mode reclaim.
func (c *poolClass) maxRecent(current float64) float64 {
	m := current
	for _, v := range c.history {
		if v > m {
			m = v
		}
	}
	return m
}

func newClassTable() *classTable {
	t := &classTable{}
	t.extendClasses(preallocatedClasses)
	return t
}

// extendClasses grows t so that classes 1..max all exist, creating
// any missing ones. Called at Init (eager, max=preallocatedClasses)
// and on ClassOverflow (lazy, max=poolIndex(n) for some oversize n);
// both callers share this one growth path.
func (t *classTable) extendClasses(max PoolID) {
	if int(max) <= len(t.classes) {
		return
	}
	grown := make([]*poolClass, max)
	copy(grown, t.classes)
	for i := len(t.classes); i < int(max); i++ {
		grown[i] = newPoolClass()
	}
	t.classes = grown
}

// class returns the state for pid, extending the table if pid exceeds
// what has been created so far. The overflow is transparent to the
// caller.
func (t *classTable) class(pid PoolID) *poolClass {
	if int(pid) > len(t.classes) {
		t.extendClasses(pid)
	}
	return t.classes[pid-1]
}
