package session

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"
)

func newTestManager(clock Clock) *Manager {
	return NewManager(func(ownerID, tabID string, observer Observer) *Controller {
		return NewController(&stubGenerator{bio: "bio-" + tabID}, WithClock(clock), WithObserver(observer))
	}, clock)
}

func TestManager_GetCreatesOnce(t *testing.T) {
	m := newTestManager(newFakeClock())
	defer m.Close()

	a := m.Get("anon_1", "tab-1")
	b := m.Get("anon_1", "tab-1")
	if a != b {
		t.Error("Expected the same controller for the same owner/tab")
	}
	if other := m.Get("anon_1", "tab-2"); other == a {
		t.Error("Expected a distinct controller per tab")
	}
	if m.Len() != 2 {
		t.Errorf("Expected 2 sessions, got %d", m.Len())
	}
}

func TestManager_OnChange(t *testing.T) {
	m := newTestManager(newFakeClock())
	defer m.Close()

	var gotOwner, gotTab string
	var gotStatus string
	m.OnChange(func(ownerID, tabID string, s Snapshot) {
		gotOwner, gotTab, gotStatus = ownerID, tabID, string(s.Status)
	})

	if err := m.Get("anon_1", "tab-1").Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotOwner != "anon_1" || gotTab != "tab-1" || gotStatus != "succeeded" {
		t.Errorf("Unexpected notification %s/%s %s", gotOwner, gotTab, gotStatus)
	}
}

func TestManager_Sweep(t *testing.T) {
	clock := newFakeClock()
	m := newTestManager(clock)
	defer m.Close()

	old := m.Get("anon_1", "old")
	clock.Advance(30 * time.Minute)
	m.Get("anon_1", "fresh")
	clock.Advance(31 * time.Minute)

	if n := m.Sweep(60 * time.Minute); n != 1 {
		t.Errorf("Expected 1 expired session, got %d", n)
	}
	if _, ok := m.Lookup("anon_1", "old"); ok {
		t.Error("Expected old session to be removed")
	}
	if _, ok := m.Lookup("anon_1", "fresh"); !ok {
		t.Error("Expected fresh session to remain")
	}
	if err := old.Submit(context.Background()); err != ErrClosed {
		t.Errorf("Expected swept controller to be closed, got %v", err)
	}
}

func TestManager_TouchKeepsAlive(t *testing.T) {
	clock := newFakeClock()
	m := newTestManager(clock)
	defer m.Close()

	m.Get("anon_1", "tab")
	clock.Advance(50 * time.Minute)
	m.Touch("anon_1", "tab")
	clock.Advance(50 * time.Minute)

	if n := m.Sweep(60 * time.Minute); n != 0 {
		t.Errorf("Expected touched session to survive, got %d swept", n)
	}
}

func TestManager_Remove(t *testing.T) {
	m := newTestManager(newFakeClock())
	m.Get("anon_1", "tab")
	m.Remove("anon_1", "tab")
	if m.Len() != 0 {
		t.Errorf("Expected no sessions, got %d", m.Len())
	}
}

func TestManager_StartSweeperStops(t *testing.T) {
	m := newTestManager(RealClock())
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	m.StartSweeper(ctx, time.Hour, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	cancel()
	// goleak in TestMain verifies the sweeper goroutine exits.
	time.Sleep(20 * time.Millisecond)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := newTestManager(newFakeClock())
	defer m.Close()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Get("anon_"+strconv.Itoa(i), "tab-"+strconv.Itoa(j%10))
				m.Touch("anon_"+strconv.Itoa(i), "tab-1")
			}
		}(i)
	}
	wg.Wait()

	if m.Len() != 40 {
		t.Errorf("Expected 40 sessions, got %d", m.Len())
	}
}
