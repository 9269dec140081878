package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultJanitorInterval = 1 * time.Hour

// SessionStore holds at most one live verification session per email.
// Sessions live in process memory only; a restart simply forces users to
// request a fresh code.
type SessionStore struct {
	mu       sync.Mutex
	verifier *Verifier
	sessions map[string]*Session
}

func NewSessionStore(verifier *Verifier) *SessionStore {
	return &SessionStore{
		verifier: verifier,
		sessions: make(map[string]*Session),
	}
}

// Begin starts a fresh session for email, invalidating any previous one so
// an old code can never verify after a new one is issued.
func (st *SessionStore) Begin(email string, sender CodeSender) (*Session, error) {
	session, err := st.verifier.Begin(email, sender)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	if old, ok := st.sessions[email]; ok {
		old.Invalidate()
	}
	st.sessions[email] = session
	st.mu.Unlock()

	return session, nil
}

// Verify submits an input code for the email's current session.
func (st *SessionStore) Verify(email, input string) error {
	st.mu.Lock()
	session, ok := st.sessions[email]
	st.mu.Unlock()

	if !ok {
		return ErrNoActiveCode
	}
	return session.Verify(input)
}

// ConsumeVerified checks that the email's session reached the verified state
// and removes it, so one verification admits exactly one registration.
func (st *SessionStore) ConsumeVerified(email string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[email]
	if !ok || session.State() != StateVerified {
		return ErrNotVerified
	}
	delete(st.sessions, email)
	return nil
}

// Janitor periodically removes finished sessions until ctx is cancelled.
func (st *SessionStore) Janitor(ctx context.Context, interval time.Duration) {
	slog.Info("starting verification session janitor", "component", "auth", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping verification session janitor", "component", "auth")
			return
		case <-ticker.C:
			if removed := st.sweep(); removed > 0 {
				slog.Info("removed finished verification sessions", "component", "auth", "count", removed)
			}
		}
	}
}

func (st *SessionStore) sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for email, session := range st.sessions {
		if session.Done() {
			delete(st.sessions, email)
			removed++
		}
	}
	return removed
}
