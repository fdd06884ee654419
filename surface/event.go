package surface

import (
	"sync"

	"github.com/google/uuid"

	"github.com/elizafairlady/go-ptrbridge/geom"
)

// DeviceMove is a raw pointer movement in device space.
type DeviceMove struct {
	Target        Element
	CurrentTarget Element    // element whose handlers are running
	Client        geom.Point // device pixels
	Buttons       int
	Msec          uint32

	stopped bool
}

// StopPropagation keeps the event from bubbling past the current element.
func (e *DeviceMove) StopPropagation() { e.stopped = true }

// PositionedMove is a pointer movement converted into the local space
// of the target's surface.
type PositionedMove struct {
	Target        Element
	CurrentTarget Element
	Position      geom.Point // surface units
	Buttons       int
	Msec          uint32

	stopped bool
}

// StopPropagation keeps the event from bubbling past the current element.
func (e *PositionedMove) StopPropagation() { e.stopped = true }

// Subscription is a registered handler.
type Subscription struct {
	id     string
	cancel func(string)
}

// ID returns the subscription's unique id.
func (s Subscription) ID() string { return s.id }

// Cancel unregisters the handler. It may be called more than once,
// including from inside the handler.
func (s Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel(s.id)
	}
}

type handler[E any] struct {
	id string
	fn func(E)
}

type handlerList[E any] struct {
	mu sync.Mutex
	hs []handler[E]
}

func (l *handlerList[E]) add(fn func(E)) Subscription {
	id := uuid.NewString()
	l.mu.Lock()
	l.hs = append(l.hs, handler[E]{id: id, fn: fn})
	l.mu.Unlock()
	return Subscription{id: id, cancel: l.remove}
}

func (l *handlerList[E]) remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.hs {
		if l.hs[i].id == id {
			l.hs = append(l.hs[:i:i], l.hs[i+1:]...)
			return
		}
	}
}

func (l *handlerList[E]) snapshot() []handler[E] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hs
}

func (l *handlerList[E]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hs)
}

// Listeners holds the handlers registered on one element.
type Listeners struct {
	move       handlerList[*DeviceMove]
	positioned handlerList[*PositionedMove]
}

// OnDeviceMove registers fn for raw moves targeted at the element or
// bubbling up from its descendants.
func (l *Listeners) OnDeviceMove(fn func(*DeviceMove)) Subscription {
	return l.move.add(fn)
}

// OnPositionedMove registers fn for converted moves targeted at the
// element or bubbling up from its descendants.
func (l *Listeners) OnPositionedMove(fn func(*PositionedMove)) Subscription {
	return l.positioned.add(fn)
}

// Count returns the number of registered handlers.
func (l *Listeners) Count() int {
	return l.move.len() + l.positioned.len()
}

// DispatchDeviceMove delivers ev to the target and then to each
// ancestor, in order, until propagation is stopped.
func DispatchDeviceMove(ev *DeviceMove) {
	for el := ev.Target; el != nil && !ev.stopped; el = el.Parent() {
		ev.CurrentTarget = el
		for _, h := range el.Listeners().move.snapshot() {
			h.fn(ev)
		}
	}
	ev.CurrentTarget = nil
}

// DispatchPositionedMove delivers ev to the target and then to each
// ancestor, in order, until propagation is stopped.
func DispatchPositionedMove(ev *PositionedMove) {
	for el := ev.Target; el != nil && !ev.stopped; el = el.Parent() {
		ev.CurrentTarget = el
		for _, h := range el.Listeners().positioned.snapshot() {
			h.fn(ev)
		}
	}
	ev.CurrentTarget = nil
}
