/*
sessions.go - Desk session registry

PURPOSE:
  One desk.Session exists per open dashboard; the HTTP layer addresses
  them by uuid. Sessions that go untouched past the idle window are
  closed and evicted - a browser that disappeared must not keep a poll
  goroutine alive forever.

EXPIRY:
  Lazy on access plus a background sweep. Get refuses an expired
  session the same way it refuses an unknown one; the caller opens a
  fresh desk.
*/
package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stayfront/frontdesk-engine/actor"
	"github.com/stayfront/frontdesk-engine/calendar"
	"github.com/stayfront/frontdesk-engine/desk"
)

// OpenFunc builds the desk session behind a registry entry. Injected so
// tests plug a fake PMS in.
type OpenFunc func(propertyID string, by actor.Actor, week calendar.Range) *desk.Session

type sessionEntry struct {
	session  *desk.Session
	lastSeen time.Time
}

// Sessions is the registry of live desk sessions.
type Sessions struct {
	open OpenFunc
	idle time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
	stop    chan struct{}
	stopped sync.Once
}

// NewSessions creates the registry and starts its sweep goroutine.
func NewSessions(open OpenFunc, idle time.Duration) *Sessions {
	s := &Sessions{
		open:    open,
		idle:    idle,
		now:     time.Now,
		entries: make(map[string]*sessionEntry),
		stop:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Open creates a session and returns its ID.
func (s *Sessions) Open(propertyID string, by actor.Actor, week calendar.Range) (string, *desk.Session) {
	sess := s.open(propertyID, by, week)
	id := uuid.NewString()

	s.mu.Lock()
	s.entries[id] = &sessionEntry{session: sess, lastSeen: s.now()}
	s.mu.Unlock()
	return id, sess
}

// Get returns the session and refreshes its idle clock. An expired session
// is closed on the spot and reported as absent.
func (s *Sessions) Get(id string) (*desk.Session, bool) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	if s.idle > 0 && s.now().Sub(e.lastSeen) > s.idle {
		delete(s.entries, id)
		s.mu.Unlock()
		e.session.Close()
		return nil, false
	}
	e.lastSeen = s.now()
	s.mu.Unlock()
	return e.session, true
}

// Close ends one session. Reports whether it existed.
func (s *Sessions) Close(id string) bool {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	s.mu.Unlock()
	if ok {
		e.session.Close()
	}
	return ok
}

// CloseAll stops the sweep and closes every session. Shutdown path.
func (s *Sessions) CloseAll() {
	s.stopped.Do(func() { close(s.stop) })

	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*sessionEntry)
	s.mu.Unlock()

	for _, e := range entries {
		e.session.Close()
	}
}

func (s *Sessions) sweep() {
	if s.idle <= 0 {
		return
	}
	ticker := time.NewTicker(s.idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.stop:
			return
		}
	}
}

func (s *Sessions) evictExpired() {
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	var expired []*sessionEntry
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e)
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		e.session.Close()
	}
}
