package tagbot

import (
	"sync"
	"testing"
)

func TestCommandLock(t *testing.T) {
	l := NewCommandLock()

	if !l.TryAcquire(-100, "tag") {
		t.Fatal("first acquire should succeed")
	}
	if l.TryAcquire(-100, "broadcast") {
		t.Error("second locked command in same chat should be rejected")
	}
	if !l.TryAcquire(-200, "tag") {
		t.Error("locked command in another chat should run")
	}

	if cmd, ok := l.Holder(-100); !ok || cmd != "tag" {
		t.Errorf("Holder(-100) = (%q, %v), want (\"tag\")", cmd, ok)
	}

	l.Unlock(-100)
	if _, ok := l.Holder(-100); ok {
		t.Error("Holder after Unlock should report no holder")
	}
	if !l.TryAcquire(-100, "broadcast") {
		t.Error("acquire after unlock should succeed")
	}
}

func TestCommandLockConcurrent(t *testing.T) {
	l := NewCommandLock()

	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryAcquire(42, "tag") {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if acquired != 1 {
		t.Errorf("acquired = %d, want 1", acquired)
	}
}
