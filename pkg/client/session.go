package client

import "sync"

// Identity describes the authenticated account held by a session.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session holds the bearer token and account identity for a signed-in
// account. It is initialized by a successful login or registration and
// torn down by Clear, either explicitly (logout) or when the server
// answers 401. Safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	token    string
	identity *Identity
}

// NewSession returns an empty, signed-out session.
func NewSession() *Session {
	return &Session{}
}

// Set stores the token and identity issued by the server.
func (s *Session) Set(token string, identity Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.identity = &identity
}

// Clear drops the token and identity.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = nil
}

// Token returns the bearer token, empty when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity returns the stored identity and whether the session is active.
func (s *Session) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}
