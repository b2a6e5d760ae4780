package audit

import (
	"log"
	"sync"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/role"
)

type Event struct {
	BarbershopID uint
	UserID       *uint
	Role         string
	Action       string
	Entity       string
	EntityID     *uint
	Metadata     any
}

// ActorEvent fills the actor columns from a resolved actor.
func ActorEvent(actor role.Actor, action, entity string, entityID uint, metadata any) Event {
	uid := actor.ID
	eid := entityID
	return Event{
		BarbershopID: actor.BarbershopID,
		UserID:       &uid,
		Role:         string(actor.Role),
		Action:       action,
		Entity:       entity,
		EntityID:     &eid,
		Metadata:     metadata,
	}
}

// Dispatcher writes audit events from a single background worker so a
// request never waits on the audit table. A nil *Dispatcher drops events.
type Dispatcher struct {
	sink  Sink
	queue chan Event
	done  chan struct{}

	// mu guards closed; Dispatch holds it for reading while it sends.
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sink Sink) *Dispatcher {
	d := &Dispatcher{
		sink:  sink,
		queue: make(chan Event, 100), // buffer seguro
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		if err := d.sink.Log(ev); err != nil {
			log.Println("audit error:", err)
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Println("audit dispatcher closed, dropping event:", ev.Action)
		return
	}

	select {
	case d.queue <- ev:
		// enviado
	default:
		// fila cheia → descartamos audit (nunca quebrar API)
		log.Println("audit queue full, dropping event:", ev.Action)
	}
}

// Close stops accepting events and waits until the queue is drained.
// Events dispatched afterwards are dropped. Close may be called again.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}
