// Package otp issues and validates the one-time verification codes embedded
// in account documents.
package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/supapay/auth-api/internal/domain"
)

// Outcome is the result of validating a submitted code against the
// outstanding OTP state. Every branch of the lifecycle is an explicit
// variant so callers handle all of them.
type Outcome int

const (
	// OutcomeNoCode means no verification cycle is outstanding.
	OutcomeNoCode Outcome = iota
	// OutcomeExpired means the code's expiry has passed. Expiry is checked
	// before the attempt ceiling, so an expired code never burns attempts.
	OutcomeExpired
	// OutcomeLocked means the attempt ceiling was reached before comparing,
	// so even a correct code is rejected until a fresh one is issued.
	OutcomeLocked
	// OutcomeMismatch means the codes differ. The caller must persist the
	// incremented attempt count before responding.
	OutcomeMismatch
	// OutcomeOK means the codes match. The caller must clear the OTP state
	// and mark the account verified in the same persistence operation.
	OutcomeOK
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoCode:
		return "no_code"
	case OutcomeExpired:
		return "expired"
	case OutcomeLocked:
		return "locked"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeOK:
		return "ok"
	default:
		return "unknown"
	}
}

const codeSpace = 900000 // codes are sampled from [100000, 999999]

// Manager generates and validates numeric one-time codes for one account.
type Manager struct {
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewManager(ttl time.Duration, maxAttempts int) *Manager {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Manager{ttl: ttl, maxAttempts: maxAttempts, now: time.Now}
}

// Issue produces a fresh 6-digit code and the state to persist. The returned
// state replaces any prior outstanding code and starts with zero attempts;
// the plaintext code is returned once for delivery and never stored outside
// the account document.
func (m *Manager) Issue() (string, *domain.OTPState, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", nil, fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)
	return code, &domain.OTPState{
		Code:      code,
		ExpiresAt: m.now().Add(m.ttl),
		Attempts:  0,
	}, nil
}

// Validate checks a submitted code against the outstanding state. It never
// mutates state; persisting attempt increments or clearing the record is the
// caller's job so those writes land in the same round trip as any companion
// field updates.
func (m *Manager) Validate(submitted string, state *domain.OTPState) Outcome {
	if state == nil || state.Code == "" {
		return OutcomeNoCode
	}
	if m.now().After(state.ExpiresAt) {
		return OutcomeExpired
	}
	if state.Attempts >= m.maxAttempts {
		return OutcomeLocked
	}
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(state.Code)) != 1 {
		return OutcomeMismatch
	}
	return OutcomeOK
}

// AttemptsRemaining reports how many mismatches are left before the code
// locks, never going below zero.
func (m *Manager) AttemptsRemaining(state *domain.OTPState) int {
	if state == nil {
		return 0
	}
	if r := m.maxAttempts - state.Attempts; r > 0 {
		return r
	}
	return 0
}

// TTL is the configured code lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }
