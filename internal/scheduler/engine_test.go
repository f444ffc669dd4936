package scheduler

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEngineEmitsInDueOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	if err := engine.Schedule(Event{ID: "later", DueAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(Event{ID: "sooner", DueAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	due := time.Now().UTC().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(Event{ID: "evt", DueAt: due}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}

func TestScheduleValidatesDueTime(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(Event{ID: "bad"}); err != ErrInvalidDueTime {
		t.Fatalf("expected ErrInvalidDueTime, got %v", err)
	}
}

func TestScheduleAfterStopFails(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	engine.Stop()
	if err := engine.After(Event{ID: "late"}, time.Second); err != ErrStopped {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestCancelRemovesPendingByKey(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	for _, ev := range []Event{
		{ID: "a1", Key: "quest-a"},
		{ID: "a2", Key: "quest-a"},
		{ID: "b1", Key: "quest-b"},
	} {
		if err := engine.After(ev, 60*time.Millisecond); err != nil {
			t.Fatalf("schedule %s: %v", ev.ID, err)
		}
	}
	if n := engine.Cancel("quest-a"); n != 2 {
		t.Fatalf("expected 2 cancelled, got %d", n)
	}
	if engine.Pending() != 1 {
		t.Fatalf("expected 1 pending, got %d", engine.Pending())
	}

	ev := waitEvent(t, engine.C(), time.Second)
	if ev.ID != "b1" {
		t.Fatalf("expected only b1 to fire, got %s", ev.ID)
	}
	select {
	case extra := <-engine.C():
		t.Fatalf("unexpected event after cancel: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

func TestCancelRemovesEveryMatchWithRandomOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	base := time.Now().Add(time.Hour)
	for trial := 0; trial < 200; trial++ {
		engine := NewEngine(4)
		want := 0
		for i := 0; i < 20; i++ {
			key := "keep"
			if rng.IntN(2) == 0 {
				key = "drop"
				want++
			}
			ev := Event{
				ID:    fmt.Sprintf("%d-%d", trial, i),
				Key:   key,
				DueAt: base.Add(time.Duration(rng.IntN(1000)) * time.Millisecond),
			}
			if err := engine.Schedule(ev); err != nil {
				t.Fatalf("schedule: %v", err)
			}
		}

		if got := engine.Cancel("drop"); got != want {
			t.Fatalf("trial %d: expected %d cancelled, got %d", trial, want, got)
		}
		if engine.Pending() != 20-want {
			t.Fatalf("trial %d: expected %d pending, got %d", trial, 20-want, engine.Pending())
		}
		for i, item := range engine.queue {
			if item.event.Key == "drop" {
				t.Fatalf("trial %d: cancelled event %s still queued", trial, item.event.ID)
			}
			if item.index != i {
				t.Fatalf("trial %d: item %s has index %d at %d", trial, item.event.ID, item.index, i)
			}
			if i > 0 && engine.queue.Less(i, (i-1)/2) {
				t.Fatalf("trial %d: heap order broken at %d", trial, i)
			}
		}
		engine.Stop()
	}
}
