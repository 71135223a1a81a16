package engine

import (
	"sync"
	"testing"
)

func TestRoomLocks_ReleasesEntries(t *testing.T) {
	l := newRoomLocks()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock("room")
			counter++
			unlock()
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("want 50, got %d", counter)
	}
	if len(l.m) != 0 {
		t.Fatalf("lock entries leaked: %d", len(l.m))
	}
}

func TestRoomLocks_IndependentRooms(t *testing.T) {
	l := newRoomLocks()
	unlockA := l.lock("a")
	done := make(chan struct{})
	go func() {
		l.lock("b")()
		close(done)
	}()
	<-done
	unlockA()
}
