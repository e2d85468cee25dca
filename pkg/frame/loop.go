// Package frame provides the per-frame hook that deferred work subscribes to.
package frame

import (
	"slices"
	"sync"
)

// Loop calls its subscribers once per frame.
//
// The host drives the loop by calling Step once per frame, before layout.
// Subscribers may subscribe or unsubscribe from inside a callback; the change
// takes effect on the next Step.
type Loop struct {
	mu          sync.Mutex
	subscribers []*subscriber
	nextID      uint64
	frames      uint64
}

type subscriber struct {
	id       uint64
	callback func()
	active   bool
}

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Subscribe registers callback to run on every Step until the returned
// function is called. Calling the returned function more than once is a no-op.
func (l *Loop) Subscribe(callback func()) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	s := &subscriber{id: l.nextID, callback: callback, active: true}
	l.subscribers = append(l.subscribers, s)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if !s.active {
			return
		}
		s.active = false
		l.subscribers = slices.DeleteFunc(l.subscribers, func(other *subscriber) bool { return other == s })
	}
}

// Step runs every subscriber once.
func (l *Loop) Step() {
	l.mu.Lock()
	l.frames++
	if len(l.subscribers) == 0 {
		l.mu.Unlock()
		return
	}
	// Copy so callbacks can unsubscribe without holding the lock.
	subscribers := slices.Clone(l.subscribers)
	l.mu.Unlock()

	for _, s := range subscribers {
		l.mu.Lock()
		active := s.active
		l.mu.Unlock()
		if active && s.callback != nil {
			s.callback()
		}
	}
}

// Active reports whether any subscriber is registered.
func (l *Loop) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subscribers) > 0
}

// Frames returns the number of Step calls so far.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}
