package handoff

import (
	"sync"
	"testing"
)

func TestKeyMutex_SerializesSameKey(t *testing.T) {
	km := newKeyMutex()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("chat-1")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("expected 100 serialized increments, got %d", counter)
	}
}

func TestKeyMutex_DistinctKeysDoNotBlock(t *testing.T) {
	km := newKeyMutex()

	unlockA := km.Lock("chat-a")
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("chat-b")
		unlockB()
		close(done)
	}()

	// chat-b must proceed while chat-a is held.
	<-done
	unlockA()
}

func TestKeyMutex_EntriesAreReclaimed(t *testing.T) {
	km := newKeyMutex()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("chat-1")
			unlock()
		}()
	}
	wg.Wait()

	km.mu.Lock()
	n := len(km.locks)
	km.mu.Unlock()
	if n != 0 {
		t.Errorf("expected lock map to be empty after release, got %d entries", n)
	}
}
