package pool

import "time"

// MinReclaimDelay and MaxReclaimDelay bound the background
// reclaimer's adaptive sleep.
const (
	MinReclaimDelay = 1 * time.Second
	MaxReclaimDelay = 5 * time.Second
)

// startReclaimer launches the background reclamation loop: scan, then
// adapt the delay based on whether scan reported activity, then
// reclaim(full=false), then sleep. It runs until stop is closed. The
// loop never cancels itself; only external closure of stop ends it,
// a test/embedding convenience layered over ordinary process
// teardown.
func startReclaimer(p *BinnedPool, stop <-chan struct{}) {
	go func() {
		delay := MinReclaimDelay
		for {
			active := p.scan()
			if active {
				delay = MinReclaimDelay
			} else {
				delay *= 2
				if delay > MaxReclaimDelay {
					delay = MaxReclaimDelay
				}
			}

			p.reclaim(nil, false)

			select {
			case <-stop:
				return
			case <-time.After(delay):
			}
		}
	}()
}
