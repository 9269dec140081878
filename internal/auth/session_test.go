package auth

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

type sentCode struct {
	to   string
	code string
	ttl  time.Duration
}

func (f *fakeSender) SendVerificationCode(to, code string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentCode{to: to, code: code, ttl: ttl})
	return nil
}

func (f *fakeSender) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].code
}

// testVerifier returns a verifier with a controllable clock. Advancing the
// returned now pointer moves lazy expiry checks; the real timer is left far
// in the future so it never interferes.
func testVerifier(ttl time.Duration) (*Verifier, *time.Time) {
	now := time.Now()
	v := NewVerifier(ttl)
	v.now = func() time.Time { return now }
	return v, &now
}

func TestBeginDeliversCodeAndStartsClock(t *testing.T) {
	v, _ := testVerifier(600 * time.Second)
	sender := &fakeSender{}

	s, err := v.Begin("a@example.com", sender)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if got := s.State(); got != StateCodeDelivered {
		t.Fatalf("state = %q, want %q", got, StateCodeDelivered)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	if sender.sent[0].to != "a@example.com" {
		t.Fatalf("sent to %q, want %q", sender.sent[0].to, "a@example.com")
	}
	if sender.sent[0].code != s.Code() {
		t.Fatalf("delivered code %q != stored code %q", sender.sent[0].code, s.Code())
	}

	remaining := s.Remaining()
	if remaining <= 599*time.Second || remaining > 600*time.Second {
		t.Fatalf("Remaining() = %s, want ~600s", remaining)
	}
}

func TestBeginRequiresEmail(t *testing.T) {
	v, _ := testVerifier(time.Minute)

	if _, err := v.Begin("", &fakeSender{}); !errors.Is(err, ErrEmailRequired) {
		t.Fatalf("Begin(\"\") error = %v, want ErrEmailRequired", err)
	}
}

func TestBeginDeliveryFailure(t *testing.T) {
	v, _ := testVerifier(time.Minute)
	sender := &fakeSender{err: fmt.Errorf("smtp down")}

	s, err := v.Begin("a@example.com", sender)
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("Begin() error = %v, want ErrDeliveryFailed", err)
	}
	if got := s.State(); got != StateFailed {
		t.Fatalf("state = %q, want %q", got, StateFailed)
	}
}

func TestVerifyMatch(t *testing.T) {
	v, _ := testVerifier(600 * time.Second)
	sender := &fakeSender{}

	s, err := v.Begin("a@example.com", sender)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	if err := s.Verify(sender.lastCode()); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got := s.State(); got != StateVerified {
		t.Fatalf("state = %q, want %q", got, StateVerified)
	}
	if s.Code() != "" {
		t.Fatal("code still held after verification")
	}
}

func TestVerifyMismatchIsRetryable(t *testing.T) {
	v, _ := testVerifier(600 * time.Second)
	sender := &fakeSender{}

	s, err := v.Begin("a@example.com", sender)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	wrong := "0000"
	if wrong == sender.lastCode() {
		wrong = "0001"
	}

	if err := s.Verify(wrong); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("Verify(wrong) error = %v, want ErrCodeMismatch", err)
	}
	if got := s.State(); got != StateCodeDelivered {
		t.Fatalf("state after mismatch = %q, want %q", got, StateCodeDelivered)
	}

	// Correct code still accepted within the window.
	if err := s.Verify(sender.lastCode()); err != nil {
		t.Fatalf("Verify(correct) error = %v", err)
	}
}

func TestVerifyExactExpiryBoundary(t *testing.T) {
	v, now := testVerifier(600 * time.Second)
	sender := &fakeSender{}

	s, err := v.Begin("a@example.com", sender)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	code := sender.lastCode()

	// At exactly the deadline the code still verifies.
	*now = now.Add(600 * time.Second)
	if err := s.Verify(code); err != nil {
		t.Fatalf("Verify() at deadline error = %v", err)
	}
}

func TestVerifyAfterExpiryFailsEvenOnMatch(t *testing.T) {
	v, now := testVerifier(600 * time.Second)
	sender := &fakeSender{}

	s, err := v.Begin("a@example.com", sender)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	code := sender.lastCode()

	*now = now.Add(600*time.Second + time.Millisecond)
	if err := s.Verify(code); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("Verify() after expiry error = %v, want ErrCodeExpired", err)
	}
	if got := s.State(); got != StateExpired {
		t.Fatalf("state = %q, want %q", got, StateExpired)
	}

	// A second attempt reports expiry, not mismatch.
	if err := s.Verify(code); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("second Verify() error = %v, want ErrCodeExpired", err)
	}
}

func TestTimerExpiresSession(t *testing.T) {
	sender := &fakeSender{}
	v := NewVerifier(20 * time.Millisecond)

	s, err := v.Begin("a@example.com", sender)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.State() != StateExpired {
		if time.Now().After(deadline) {
			t.Fatalf("state = %q, timer never expired session", s.State())
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := s.Verify(sender.lastCode()); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("Verify() error = %v, want ErrCodeExpired", err)
	}
}

func TestVerifiedIsTerminal(t *testing.T) {
	v, now := testVerifier(600 * time.Second)
	sender := &fakeSender{}

	s, err := v.Begin("a@example.com", sender)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := s.Verify(sender.lastCode()); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	// Neither time passing nor invalidation moves a verified session.
	*now = now.Add(time.Hour)
	s.Invalidate()
	if got := s.State(); got != StateVerified {
		t.Fatalf("state = %q, want %q", got, StateVerified)
	}
}

func TestRemainingCountsDown(t *testing.T) {
	v, now := testVerifier(600 * time.Second)
	sender := &fakeSender{}

	s, err := v.Begin("a@example.com", sender)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	*now = now.Add(100 * time.Second)
	if got := s.Remaining(); got != 500*time.Second {
		t.Fatalf("Remaining() = %s, want 500s", got)
	}

	*now = now.Add(9 * time.Minute)
	if got := s.Remaining(); got != 0 {
		t.Fatalf("Remaining() past expiry = %s, want 0", got)
	}
}
