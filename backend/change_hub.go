package backend

import "sync"

// ChangeHub fans auth-state change events out to subscribers. Events
// are delivered synchronously in emission order, at most once per
// emission; the hub does no coalescing or replay.
type ChangeHub struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]ChangeCallback
}

func NewChangeHub() *ChangeHub {
	return &ChangeHub{listeners: make(map[int]ChangeCallback)}
}

// Subscribe registers cb for future events.
func (h *ChangeHub) Subscribe(cb ChangeCallback) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.listeners[id] = cb
	return &hubSubscription{hub: h, id: id}
}

// Emit delivers event to every current subscriber. Callbacks run
// outside the hub lock so a callback may unsubscribe without
// deadlocking.
func (h *ChangeHub) Emit(event ChangeEvent, session *Session) {
	h.mu.Lock()
	callbacks := make([]ChangeCallback, 0, len(h.listeners))
	for _, cb := range h.listeners {
		callbacks = append(callbacks, cb)
	}
	h.mu.Unlock()

	for _, cb := range callbacks {
		cb(event, session)
	}
}

type hubSubscription struct {
	hub  *ChangeHub
	id   int
	once sync.Once
}

func (s *hubSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.listeners, s.id)
	})
}
