package service

import (
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/deltachat-bot/deltachat-loginbot/model"
	"github.com/deltachat-bot/deltachat-loginbot/pkg/log"
)

// SessionStore keeps login sessions in memory for the process lifetime.
// Mutations on one handle are serialized by a per-session lock so that the
// polling endpoint and the authorize endpoint cannot lose updates.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session model.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
	}
}

// Create allocates a fresh session and returns its opaque handle.
func (s *SessionStore) Create() (string, error) {
	handle, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[handle] = &sessionEntry{
		session: model.Session{
			ID:       handle,
			ExpireAt: time.Now().Add(model.SessionExpire),
		},
	}
	return handle, nil
}

func (s *SessionStore) entry(handle string) (*sessionEntry, error) {
	s.mu.Lock()
	entry, ok := s.sessions[handle]
	s.mu.Unlock()
	if !ok {
		return nil, model.SessionExpiredErr
	}
	return entry, nil
}

// Get returns a copy of the session. Expired or unknown handles fail with
// SessionExpiredErr.
func (s *SessionStore) Get(handle string) (model.Session, error) {
	entry, err := s.entry(handle)
	if err != nil {
		return model.Session{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.session.Expired() {
		return model.Session{}, model.SessionExpiredErr
	}
	return entry.session, nil
}

// Update runs mutate under the session's lock. The mutator operates on the
// live record, so callers should do their fallible work first and mutate
// last: a returned error does not roll anything back.
func (s *SessionStore) Update(handle string, mutate func(session *model.Session) error) error {
	entry, err := s.entry(handle)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.session.Expired() {
		return model.SessionExpiredErr
	}
	return mutate(&entry.session)
}

// Expire drops the session immediately.
func (s *SessionStore) Expire(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, handle)
}

// SweepBackground returns a loop that evicts expired sessions at the given
// interval.
func (s *SessionStore) SweepBackground(interval time.Duration) func() {
	return func() {
		tick := time.Tick(interval)
		for now := range tick {
			if swept := s.sweep(now); swept > 0 {
				log.Debug("swept %v expired sessions", swept)
			}
		}
	}
}

func (s *SessionStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []string
	for handle, entry := range s.sessions {
		// same lock discipline as Get/Update; Update never runs a mutator
		// concurrently with this read
		entry.mu.Lock()
		if now.After(entry.session.ExpireAt) {
			expired = append(expired, handle)
		}
		entry.mu.Unlock()
	}
	for _, handle := range expired {
		delete(s.sessions, handle)
	}
	return len(expired)
}
