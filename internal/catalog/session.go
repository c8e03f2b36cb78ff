// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

package catalog

import "sync"

// Session tracks which article IDs have been served to one caller
// since its last cold load. It is an explicit value owned by the
// caller (via the registry), never process-global state, so freshness
// cannot leak across sessions.
type Session struct {
	mu     sync.Mutex
	served map[string]struct{}
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{served: make(map[string]struct{})}
}

// Reset clears the served set. Called on every cold load and on
// wrap-around.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.served = make(map[string]struct{})
}

// MarkServed records IDs as served, accumulating across refreshes.
func (s *Session) MarkServed(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.served[id] = struct{}{}
	}
}

// Served reports whether an ID has been served this session.
func (s *Session) Served(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.served[id]
	return ok
}

// Len returns the number of served IDs.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.served)
}

// SessionRegistry holds per-user catalog sessions for the lifetime of
// the process.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Get returns the session for a key, creating it on first use. The
// empty key is valid and serves anonymous callers.
func (r *SessionRegistry) Get(key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[key]
	if !ok {
		sess = NewSession()
		r.sessions[key] = sess
	}
	return sess
}
