package core

import (
	"fmt"
	"sync"
)

// InvocationLimiter enforces a maximum number of concurrently running
// invocations. If max == 0 the limiter is unbounded.
type InvocationLimiter struct {
	max    int
	active int
	mu     sync.Mutex
}

// NewInvocationLimiter creates a limiter allowing up to max concurrent
// acquisitions.
func NewInvocationLimiter(max int) *InvocationLimiter {
	return &InvocationLimiter{max: max}
}

// Acquire reserves a slot, returning an error when the cap is reached.
func (l *InvocationLimiter) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.active >= l.max {
		return fmt.Errorf("exceeded max concurrent invocations: %d", l.max)
	}
	l.active++

	return nil
}

// Release returns a previously acquired slot.
func (l *InvocationLimiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active > 0 {
		l.active--
	}
}

// Active returns the number of currently held slots.
func (l *InvocationLimiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.active
}
