package services

import (
	"sync"
)

// AuthWatcher is the auth-state source a live feed observes: it
// reports the session's user immediately on Watch and again on every
// change (zero meaning signed out) until the release func is called.
type AuthWatcher interface {
	Watch(sessionID string, fn func(userID uint)) (release func())
}

// SessionBroker tracks which session ids are signed in and notifies
// watchers when a session ends. Login registers a session, logout
// revokes it; feeds watching the session see the user disappear.
type SessionBroker struct {
	mu       sync.Mutex
	sessions map[string]uint
	watchers map[string]map[int]func(uint)
	next     int
}

func NewSessionBroker() *SessionBroker {
	return &SessionBroker{
		sessions: make(map[string]uint),
		watchers: make(map[string]map[int]func(uint)),
	}
}

// Register marks the session as signed in for userID.
func (b *SessionBroker) Register(sessionID string, userID uint) {
	b.mu.Lock()
	b.sessions[sessionID] = userID
	b.mu.Unlock()
}

// CurrentUser reports the user of a live session, or false if the
// session is unknown or revoked.
func (b *SessionBroker) CurrentUser(sessionID string) (uint, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	uid, ok := b.sessions[sessionID]
	return uid, ok
}

// Revoke ends the session and tells its watchers the user is gone.
func (b *SessionBroker) Revoke(sessionID string) {
	b.mu.Lock()
	delete(b.sessions, sessionID)
	fns := make([]func(uint), 0, len(b.watchers[sessionID]))
	for _, fn := range b.watchers[sessionID] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(0)
	}
}

// Watch reports the session's current user to fn immediately, then on
// every change until release is called.
func (b *SessionBroker) Watch(sessionID string, fn func(userID uint)) func() {
	b.mu.Lock()
	b.next++
	id := b.next
	if b.watchers[sessionID] == nil {
		b.watchers[sessionID] = make(map[int]func(uint))
	}
	b.watchers[sessionID][id] = fn
	current := b.sessions[sessionID]
	b.mu.Unlock()

	fn(current)

	return func() {
		b.mu.Lock()
		if set := b.watchers[sessionID]; set != nil {
			delete(set, id)
			if len(set) == 0 {
				delete(b.watchers, sessionID)
			}
		}
		b.mu.Unlock()
	}
}
