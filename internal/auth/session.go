package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// SessionState tracks where a verification session is in its lifecycle.
// Transitions only move forward: idle -> code_requested -> code_delivered,
// then exactly one of verified, expired or failed.
type SessionState string

const (
	StateIdle          SessionState = "idle"
	StateCodeRequested SessionState = "code_requested"
	StateCodeDelivered SessionState = "code_delivered"
	StateVerified      SessionState = "verified"
	StateExpired       SessionState = "expired"
	StateFailed        SessionState = "failed"
)

var (
	ErrEmailRequired  = errors.New("email is required")
	ErrDeliveryFailed = errors.New("code delivery failed")
	ErrNoActiveCode   = errors.New("no active verification code")
	ErrCodeMismatch   = errors.New("verification code mismatch")
	ErrCodeExpired    = errors.New("verification code expired")
	ErrNotVerified    = errors.New("email not verified")
)

// CodeSender delivers a verification code to an email address.
type CodeSender interface {
	SendVerificationCode(to, code string, ttl time.Duration) error
}

// Verifier creates verification sessions with a fixed code TTL.
type Verifier struct {
	ttl time.Duration
	now func() time.Time
	gen func() (string, error)
}

func NewVerifier(ttl time.Duration) *Verifier {
	return &Verifier{
		ttl: ttl,
		now: time.Now,
		gen: GenerateCode,
	}
}

// Session holds one issued verification code, its expiry clock and the
// acceptance logic. It owns a single expiry timer which is stopped on every
// transition out of code_delivered, so a replaced or finished session can
// never fire later.
type Session struct {
	mu        sync.Mutex
	email     string
	code      string
	state     SessionState
	issuedAt  time.Time
	expiresAt time.Time
	now       func() time.Time
	timer     *time.Timer
}

// Begin starts a new session for email: generates a code, asks the sender to
// deliver it synchronously and, on success, starts the expiry clock. A
// delivery failure leaves the session in the failed state and is returned as
// ErrDeliveryFailed.
func (v *Verifier) Begin(email string, sender CodeSender) (*Session, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	s := &Session{
		email: email,
		state: StateIdle,
		now:   v.now,
	}

	code, err := v.gen()
	if err != nil {
		return nil, err
	}
	s.state = StateCodeRequested

	if err := sender.SendVerificationCode(email, code, v.ttl); err != nil {
		s.state = StateFailed
		return s, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	s.mu.Lock()
	s.code = code
	s.issuedAt = v.now()
	s.expiresAt = s.issuedAt.Add(v.ttl)
	s.state = StateCodeDelivered
	s.timer = time.AfterFunc(v.ttl, s.expireFromTimer)
	s.mu.Unlock()

	return s, nil
}

// Verify compares the submitted code against the issued one. A mismatch
// before expiry leaves the session resubmittable; expiry (detected lazily
// here or eagerly by the timer) discards the code and requires a fresh
// session.
func (s *Session) Verify(input string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCodeDelivered {
		if s.state == StateExpired {
			return ErrCodeExpired
		}
		return ErrNoActiveCode
	}

	if s.now().After(s.expiresAt) {
		s.expireLocked()
		return ErrCodeExpired
	}

	if input != s.code {
		return ErrCodeMismatch
	}

	s.stopTimerLocked()
	s.code = ""
	s.state = StateVerified
	return nil
}

// Invalidate discards the code and terminates the session. Used when a new
// code is requested for the same email, so the old code can no longer verify.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCodeDelivered {
		s.expireLocked()
	}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Code() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

func (s *Session) Email() string {
	return s.email
}

// Remaining reports how long the issued code is still valid, rounded up to
// whole seconds for countdown display. Zero once the session leaves
// code_delivered.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCodeDelivered {
		return 0
	}
	left := s.expiresAt.Sub(s.now())
	if left <= 0 {
		return 0
	}
	return left.Round(time.Second)
}

// Done reports whether the session reached a terminal state.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateVerified || s.state == StateExpired || s.state == StateFailed
}

func (s *Session) expireFromTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCodeDelivered {
		s.expireLocked()
	}
}

func (s *Session) expireLocked() {
	s.stopTimerLocked()
	s.code = ""
	s.state = StateExpired
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
