package service

import "sync"

// Guard allows at most one pipeline job at a time within a process.
type Guard struct {
	mu sync.Mutex
}

// Do runs fn unless another job holds the guard, in which case it returns ErrBusy.
func (g *Guard) Do(fn func() error) error {
	if !g.mu.TryLock() {
		return ErrBusy
	}
	defer g.mu.Unlock()
	return fn()
}
