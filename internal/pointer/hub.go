// Package pointer implements manual move/rotate of a single layer driven by
// pointer press, move and release events.
package pointer

import "sync"

// Point is a pointer position in screen pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type handler struct {
	id   uint64
	fn   func(Point)
	once bool
}

// Hub fans pointer events out to the registered listeners. Listeners are
// called in registration order, outside the hub's lock, so a listener may
// remove itself or others while being called.
type Hub struct {
	mu      sync.Mutex
	nextID  uint64
	move    []handler
	release []handler
}

// NewHub creates a hub with no listeners.
func NewHub() *Hub {
	return &Hub{}
}

type event uint8

const (
	eventMove event = iota
	eventRelease
)

// Subscription allows removing a registered listener.
type Subscription struct {
	id    uint64
	hub   *Hub
	event event
}

// Remove unregisters the listener. It is safe to call more than once and on
// the zero Subscription.
func (s Subscription) Remove() {
	if s.hub == nil {
		return
	}
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	switch s.event {
	case eventMove:
		s.hub.move = removeHandler(s.hub.move, s.id)
	case eventRelease:
		s.hub.release = removeHandler(s.hub.release, s.id)
	}
}

// OnMove registers fn for every pointer move.
func (h *Hub) OnMove(fn func(Point)) Subscription {
	return h.add(eventMove, fn, false)
}

// OnRelease registers fn for every pointer release.
func (h *Hub) OnRelease(fn func(Point)) Subscription {
	return h.add(eventRelease, fn, false)
}

// OnceRelease registers fn for the next pointer release only. The listener
// is removed before fn runs.
func (h *Hub) OnceRelease(fn func(Point)) Subscription {
	return h.add(eventRelease, fn, true)
}

// DispatchMove delivers a move event.
func (h *Hub) DispatchMove(p Point) {
	h.dispatch(eventMove, p)
}

// DispatchRelease delivers a release event, wherever it happened.
func (h *Hub) DispatchRelease(p Point) {
	h.dispatch(eventRelease, p)
}

// Listeners returns the number of registered listeners.
func (h *Hub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.move) + len(h.release)
}

func (h *Hub) add(ev event, fn func(Point), once bool) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	hd := handler{id: h.nextID, fn: fn, once: once}
	switch ev {
	case eventMove:
		h.move = append(h.move, hd)
	case eventRelease:
		h.release = append(h.release, hd)
	}
	return Subscription{id: hd.id, hub: h, event: ev}
}

func (h *Hub) dispatch(ev event, p Point) {
	h.mu.Lock()
	var list []handler
	switch ev {
	case eventMove:
		list = append(list, h.move...)
	case eventRelease:
		list = append(list, h.release...)
		kept := h.release[:0:0]
		for _, hd := range h.release {
			if !hd.once {
				kept = append(kept, hd)
			}
		}
		h.release = kept
	}
	h.mu.Unlock()

	for _, hd := range list {
		hd.fn(p)
	}
}

func removeHandler(list []handler, id uint64) []handler {
	for i, hd := range list {
		if hd.id == id {
			out := make([]handler, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	return list
}
