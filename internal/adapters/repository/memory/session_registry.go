package memory

import (
	"sync"
	"time"

	"github.com/vncsmyrnk/classpoll/internal/core/domain"
	"github.com/vncsmyrnk/classpoll/internal/core/ports"
)

// sessionRegistry keys sessions by the presenter's connection id, so the
// session id and the presenter connection id are the same value.
type sessionRegistry struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]*domain.Session
}

func NewSessionRegistry(now func() time.Time) ports.SessionRegistry {
	if now == nil {
		now = time.Now
	}
	return &sessionRegistry{
		now:      now,
		sessions: make(map[string]*domain.Session),
	}
}

func (r *sessionRegistry) Open(presenterConnID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[presenterConnID]; ok {
		return nil, domain.ErrAlreadyOpen
	}
	session := &domain.Session{
		ID:              presenterConnID,
		PresenterConnID: presenterConnID,
		CreatedAt:       r.now(),
	}
	r.sessions[session.ID] = session
	return session.Clone(), nil
}

func (r *sessionRegistry) Join(sessionID, connID, name string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if connID == session.PresenterConnID {
		return nil, domain.ErrOwnSession
	}

	// last join wins: drop the connection from any other roster first
	for id, s := range r.sessions {
		if id != sessionID {
			s.Participants = removeConn(s.Participants, connID)
		}
	}

	entry := domain.Participant{ConnID: connID, Name: name, JoinedAt: r.now()}
	for i, p := range session.Participants {
		if p.ConnID == connID {
			session.Participants[i] = entry
			return session.Clone(), nil
		}
	}
	session.Participants = append(session.Participants, entry)
	return session.Clone(), nil
}

func (r *sessionRegistry) RemoveParticipant(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		before := len(s.Participants)
		s.Participants = removeConn(s.Participants, connID)
		if len(s.Participants) != before {
			return id, true
		}
	}
	return "", false
}

func (r *sessionRegistry) Close(presenterConnID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[presenterConnID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	delete(r.sessions, presenterConnID)
	return session, nil
}

func (r *sessionRegistry) Get(sessionID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func removeConn(participants []domain.Participant, connID string) []domain.Participant {
	out := participants[:0]
	for _, p := range participants {
		if p.ConnID != connID {
			out = append(out, p)
		}
	}
	return out
}
