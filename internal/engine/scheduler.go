package engine

import "time"

// scheduler drives reconcile ticks and grace sweeps from one goroutine so
// the two never interleave. An interval at or below zero disables that
// loop entirely.
type scheduler struct {
	reconcileEvery time.Duration
	graceEvery     time.Duration
	stop           chan struct{}
	done           chan struct{}
}

func newScheduler(reconcileEvery, graceEvery time.Duration) *scheduler {
	return &scheduler{
		reconcileEvery: reconcileEvery,
		graceEvery:     graceEvery,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

func (s *scheduler) run(e *Engine) {
	defer close(s.done)

	var reconcileC, graceC <-chan time.Time
	if s.reconcileEvery > 0 {
		t := time.NewTicker(s.reconcileEvery)
		defer t.Stop()
		reconcileC = t.C
	}
	if s.graceEvery > 0 {
		t := time.NewTicker(s.graceEvery)
		defer t.Stop()
		graceC = t.C
	}

	for {
		select {
		case <-s.stop:
			return
		case <-reconcileC:
			e.ReconcileNow()
		case <-graceC:
			e.GraceSweepNow()
		}
	}
}

// halt stops the loop and waits for any in-flight tick to finish.
func (s *scheduler) halt() {
	close(s.stop)
	<-s.done
}
