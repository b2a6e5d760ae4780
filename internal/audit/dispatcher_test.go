package audit

import (
	"sync"
	"testing"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Log(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink)

	actor := role.Actor{ID: 3, BarbershopID: 1, Role: role.BranchAdmin}
	d.Dispatch(ActorEvent(actor, "payment_approved", "appointment", 10, nil))
	d.Dispatch(ActorEvent(actor, "payment_rejected", "appointment", 11, nil))
	d.Close()

	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.Role != "branch_admin" || *ev.UserID != 3 || *ev.EntityID != 10 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestNilDispatcher(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Event{Action: "ignored"})
	d.Close()
}

func TestDispatchAfterCloseIsDropped(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink)
	d.Close()

	d.Dispatch(Event{Action: "late"})
	d.Close()

	if len(sink.events) != 0 {
		t.Errorf("expected no events, got %d", len(sink.events))
	}
}

func TestDispatchRacingClose(t *testing.T) {
	d := NewDispatcher(&recordingSink{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				d.Dispatch(Event{Action: "tick"})
			}
		}()
	}
	d.Close()
	wg.Wait()
}
