package event

import "sync"

// Package event delivers synchronous notifications from the annotation kernel
// to whoever is observing it (typically a UI).

// Listener receives events.
// We use an interface instead of a function, because functions cannot be compared for equality,
// and equality is needed to remove a listener.
type Listener interface {
	OnEvent(sender *Sender, event any)
}

// Sender sends events to its listeners, in the order in which they were added.
// The zero value is ready to use.
type Sender struct {
	listenersLock sync.Mutex
	listeners     []Listener
	muted         int
}

// Add a new listener.
// If the listener is already present, then the function returns immediately.
func (s *Sender) AddListener(listener Listener) {
	s.listenersLock.Lock()
	defer s.listenersLock.Unlock()
	for _, l := range s.listeners {
		if l == listener {
			return
		}
	}
	s.listeners = append(s.listeners, listener)
}

// Remove an existing listener.
// If the listener is not present, then the function returns immediately.
func (s *Sender) RemoveListener(listener Listener) {
	s.listenersLock.Lock()
	defer s.listenersLock.Unlock()
	for i, l := range s.listeners {
		if l == listener {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Mute suppresses events until the returned function is called.
// Calls may be nested.
func (s *Sender) Mute() (unmute func()) {
	s.listenersLock.Lock()
	s.muted++
	s.listenersLock.Unlock()
	return func() {
		s.listenersLock.Lock()
		s.muted--
		s.listenersLock.Unlock()
	}
}

// Send an event to all listeners.
// Listeners may add or remove listeners from inside OnEvent.
func (s *Sender) SendEvent(event any) {
	s.listenersLock.Lock()
	if s.muted > 0 {
		s.listenersLock.Unlock()
		return
	}
	list := make([]Listener, len(s.listeners))
	copy(list, s.listeners)
	s.listenersLock.Unlock()

	for _, l := range list {
		l.OnEvent(s, event)
	}
}

// Recorder is a Listener that keeps every event it receives.
type Recorder struct {
	Events []any
}

func (r *Recorder) OnEvent(sender *Sender, event any) {
	r.Events = append(r.Events, event)
}

// Reset forgets all recorded events
func (r *Recorder) Reset() {
	r.Events = nil
}
