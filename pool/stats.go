package pool

// Stats is a point-in-time snapshot of a pool's memory accounting,
// assembled from the same locked state UsedMemory/CachedMemory read.
// Intended for diagnostics and tests, not for hot-path decisions.
type Stats struct {
	UsedBytes   uintptr
	CachedBytes uintptr

	// Classes is nil for a SimplePool, which has no size classes.
	Classes []ClassStats
}

// ClassStats is the per-class population and usage-history window of
// a BinnedPool snapshot.
type ClassStats struct {
	PoolID    PoolID
	Size      uintptr
	Used      int
	Available int
	Usage     float64
	History   []float64
}

// Stats returns a snapshot of p's current memory accounting, one
// ClassStats entry per materialized size class.
func (p *BinnedPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	used, cached := p.memoryLocked()
	classes := make([]ClassStats, len(p.classes.classes))
	for i, c := range p.classes.classes {
		pid := PoolID(i + 1)
		history := make([]float64, len(c.history))
		copy(history, c.history)
		classes[i] = ClassStats{
			PoolID:    pid,
			Size:      poolSize(pid),
			Used:      len(c.used),
			Available: len(c.available),
			Usage:     c.usage,
			History:   history,
		}
	}
	return Stats{UsedBytes: used, CachedBytes: cached, Classes: classes}
}

// Stats returns a snapshot of p's current memory accounting. The
// Simple Pool has no size classes, so Classes is always nil.
func (p *SimplePool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	used, cached := p.memoryLocked()
	return Stats{UsedBytes: used, CachedBytes: cached}
}
