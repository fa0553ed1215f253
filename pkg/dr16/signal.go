package dr16

import (
	"context"
	"sync/atomic"
)

// Signal is a counting wake-up signal. Put never blocks, so it's safe to
// call from a receive context.
type Signal struct {
	count  atomic.Int64
	notify chan struct{}
}

// NewSignal creates a Signal with no pending counts.
func NewSignal() *Signal {
	return &Signal{notify: make(chan struct{}, 1)}
}

// Put increments the count by one and wakes up a waiter.
func (s *Signal) Put() {
	s.count.Add(1)
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Pending returns the number of counts not consumed yet.
func (s *Signal) Pending() int {
	return int(s.count.Load())
}

// TryGet consumes one count if available.
func (s *Signal) TryGet() bool {
	for {
		n := s.count.Load()
		if n <= 0 {
			return false
		}
		if s.count.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// Get blocks until one count is consumed or ctx is done.
func (s *Signal) Get(ctx context.Context) error {
	for {
		if s.TryGet() {
			if s.count.Load() > 0 {
				// pass the wake-up on to other waiters.
				select {
				case s.notify <- struct{}{}:
				default:
				}
			}
			return nil
		}
		select {
		case <-s.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
