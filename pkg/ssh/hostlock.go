package ssh

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// hostLocks serializes remote operations per host. Commands for
// different hosts run freely in parallel; two operations against the
// same host take turns, which keeps the shared SFTP session and the
// staged uploads of one host strictly ordered.
type hostLocks struct {
	locks sync.Map // map[string]*semaphore.Weighted
}

func newHostLocks() *hostLocks {
	return &hostLocks{}
}

// get returns the semaphore for a host, creating it on first use
func (hl *hostLocks) get(host string) *semaphore.Weighted {
	if sem, exists := hl.locks.Load(host); exists {
		return sem.(*semaphore.Weighted)
	}

	newSem := semaphore.NewWeighted(1)

	// LoadOrStore returns the value that actually ended up in the map
	if actualSem, loaded := hl.locks.LoadOrStore(host, newSem); loaded {
		return actualSem.(*semaphore.Weighted)
	}
	return newSem
}

// Lock blocks until the host is free or the context is cancelled
func (hl *hostLocks) Lock(ctx context.Context, host string) error {
	return hl.get(host).Acquire(ctx, 1)
}

// Unlock releases the host
func (hl *hostLocks) Unlock(host string) {
	hl.get(host).Release(1)
}

// TryLock acquires the host without blocking, reporting success
func (hl *hostLocks) TryLock(host string) bool {
	return hl.get(host).TryAcquire(1)
}
