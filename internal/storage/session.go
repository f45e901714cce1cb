package storage

import (
	"sync"
	"time"
)

// Session is a live quiz session that can be torn down.
type Session interface {
	comparable
	ID() string
	Close()
}

type sessionEntry[S Session] struct {
	session  S
	lastSeen time.Time
}

// SessionStorage provides in-memory storage for live quiz sessions by chat ID.
type SessionStorage[S Session] struct {
	mu       sync.RWMutex
	sessions map[int64]*sessionEntry[S]
	now      func() time.Time
}

// NewSessionStorage creates a new SessionStorage.
func NewSessionStorage[S Session]() *SessionStorage[S] {
	return &SessionStorage[S]{
		sessions: make(map[int64]*sessionEntry[S]),
		now:      time.Now,
	}
}

// Store saves the session for a chat, closing the one it replaces.
func (s *SessionStorage[S]) Store(chatID int64, session S) {
	s.mu.Lock()
	prev := s.sessions[chatID]
	s.sessions[chatID] = &sessionEntry[S]{session: session, lastSeen: s.now()}
	s.mu.Unlock()

	if prev != nil && prev.session != session {
		prev.session.Close()
	}
}

// Get retrieves the session for a chat.
func (s *SessionStorage[S]) Get(chatID int64) (S, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[chatID]
	if !ok {
		var zero S
		return zero, false
	}
	return e.session, true
}

// Touch marks the chat's session as used now.
func (s *SessionStorage[S]) Touch(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[chatID]; ok {
		e.lastSeen = s.now()
	}
}

// Delete removes and closes the session for a chat.
func (s *SessionStorage[S]) Delete(chatID int64) {
	s.mu.Lock()
	e, ok := s.sessions[chatID]
	delete(s.sessions, chatID)
	s.mu.Unlock()

	if ok {
		e.session.Close()
	}
}

// DeleteIfCurrent removes the chat's session only if it is still the given one.
func (s *SessionStorage[S]) DeleteIfCurrent(chatID int64, session S) bool {
	s.mu.Lock()
	e, ok := s.sessions[chatID]
	if !ok || e.session != session {
		s.mu.Unlock()
		return false
	}
	delete(s.sessions, chatID)
	s.mu.Unlock()

	session.Close()
	return true
}

// Idle returns chat IDs whose sessions have not been used for longer than ttl.
func (s *SessionStorage[S]) Idle(ttl time.Duration) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-ttl)
	var ids []int64
	for chatID, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			ids = append(ids, chatID)
		}
	}
	return ids
}

// Len returns the number of live sessions.
func (s *SessionStorage[S]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
