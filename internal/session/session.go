// Package session holds the signed-in user's context on the server side.
package session

import (
	"sync"
	"time"

	"github.com/vantix/vantix/internal/security"
	"github.com/vantix/vantix/internal/vantixapi"
)

// Session is created at login and dropped at logout or when the backend
// rejects its token.
type Session struct {
	ID        string             `json:"id"`
	Token     string             `json:"token"`
	User      vantixapi.Employee `json:"user"`
	CSRF      string             `json:"csrf"`
	CreatedAt time.Time          `json:"created_at"`
	// ExpiresAt comes from the token's exp claim and is only a display hint.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	// ViewedEmployeeID is the employee an admin chose to look at; zero means self.
	ViewedEmployeeID int64 `json:"viewed_employee_id,omitempty"`

	views *Views
}

func (s *Session) IsAdmin() bool { return s != nil && s.User.IsAdmin }

// Views is the per-session screen state.
func (s *Session) Views() *Views { return s.views }

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{sessions: map[string]*Session{}, now: time.Now}
}

// Create registers a session for a successful login.
func (s *Store) Create(login vantixapi.Login) (*Session, error) {
	id, err := security.NewToken()
	if err != nil {
		return nil, err
	}
	csrf, err := security.NewToken()
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:        id,
		Token:     login.Token,
		User:      login.User,
		CSRF:      csrf,
		CreatedAt: s.now(),
		views:     NewViews(),
	}
	if claims, err := vantixapi.TokenClaims(login.Token); err == nil {
		sess.ExpiresAt = claims.ExpiresAt
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	copied := *sess
	return &copied, nil
}

// Get returns a copy of the session with id, or nil.
func (s *Store) Get(id string) *Session {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	copied := *sess
	return &copied
}

// SetViewedEmployee records the employee an admin is browsing.
func (s *Store) SetViewedEmployee(id string, employeeID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.ViewedEmployeeID = employeeID
	}
}

// Delete removes a session on explicit logout.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Expire removes the session only if it still carries token. It reports
// whether this call did the removal, so that of several requests failing
// with the same stale token exactly one acts on it.
func (s *Store) Expire(id, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.Token != token {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
