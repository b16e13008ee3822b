package ssh

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestHostLocksBasic(t *testing.T) {
	hl := newHostLocks()
	ctx := context.Background()
	host := "web-1"

	err := hl.Lock(ctx, host)
	if err != nil {
		t.Fatalf("Failed to lock host: %v", err)
	}

	// A second, non-blocking attempt must fail while the lock is held
	if hl.TryLock(host) {
		t.Error("Expected TryLock to fail while the host is locked")
	}

	hl.Unlock(host)

	if !hl.TryLock(host) {
		t.Error("Expected TryLock to succeed after unlock")
	}
	hl.Unlock(host)
}

func TestHostLocksSerializeSameHost(t *testing.T) {
	hl := newHostLocks()
	host := "web-1"

	var counter int
	var mu sync.Mutex
	var wg sync.WaitGroup

	numGoroutines := 10
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			ctx := context.Background()
			if err := hl.Lock(ctx, host); err != nil {
				t.Errorf("Goroutine %d: failed to lock host: %v", id, err)
				return
			}
			defer hl.Unlock(host)

			// Critical section, one goroutine at a time
			mu.Lock()
			localCounter := counter
			time.Sleep(10 * time.Millisecond)
			counter = localCounter + 1
			mu.Unlock()
		}(i)
	}

	wg.Wait()

	if counter != numGoroutines {
		t.Errorf("Expected counter to be %d, got %d", numGoroutines, counter)
	}
}

func TestHostLocksDifferentHostsRunInParallel(t *testing.T) {
	hl := newHostLocks()

	var wg sync.WaitGroup
	numHosts := 5
	wg.Add(numHosts)

	start := time.Now()

	for i := 0; i < numHosts; i++ {
		go func(id int) {
			defer wg.Done()

			host := fmt.Sprintf("web-%d", id)
			ctx := context.Background()

			if err := hl.Lock(ctx, host); err != nil {
				t.Errorf("Goroutine %d: failed to lock host: %v", id, err)
				return
			}
			defer hl.Unlock(host)

			time.Sleep(100 * time.Millisecond)
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Different hosts must not serialize; allow scheduling overhead
	if elapsed > 200*time.Millisecond {
		t.Errorf("Expected parallel execution to take ~100ms, took %v", elapsed)
	}
}

func TestHostLocksContextCancellation(t *testing.T) {
	hl := newHostLocks()
	host := "web-1"

	if err := hl.Lock(context.Background(), host); err != nil {
		t.Fatalf("Failed to lock host: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := hl.Lock(ctx, host)
	elapsed := time.Since(start)

	if err == nil {
		t.Error("Expected lock to fail due to context cancellation")
	}
	if err != context.DeadlineExceeded {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed < 40*time.Millisecond || elapsed > 100*time.Millisecond {
		t.Errorf("Expected cancellation after ~50ms, took %v", elapsed)
	}

	hl.Unlock(host)
}
