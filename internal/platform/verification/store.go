// Package verification implements the one-time code gate required before
// destructive bulk operations. Codes are an anti-fat-finger control, not a
// cryptographic authorization mechanism: they live in process memory, expire
// after a short TTL, and allow a bounded number of attempts.
//
// The store is process-local. A deployment with more than one instance must
// move it into the shared store or the gate can be bypassed by hitting a
// different instance.
package verification

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// Verification errors
var (
	ErrVerificationRequired = errors.New("verification code required")
	ErrCodeExpired          = errors.New("verification code has expired")
	ErrCodeMismatch         = errors.New("verification code does not match")
	ErrTooManyAttempts      = errors.New("too many failed verification attempts")
)

const codeDigits = 6

type issuedCode struct {
	code      string
	expiresAt time.Time
	attempts  int
}

// Store is a TTL-keyed one-time code store keyed by principal id
type Store struct {
	mu          sync.Mutex
	codes       map[int64]issuedCode
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

// NewStore creates a verification-code store with the given code lifetime and
// failed-attempt budget
func NewStore(ttl time.Duration, maxAttempts int) *Store {
	return &Store{
		codes:       make(map[int64]issuedCode),
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Issue mints a fresh numeric code for the principal, replacing any code
// issued earlier
func (s *Store) Issue(principalID int64) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	code := fmt.Sprintf("%0*d", codeDigits, n)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[principalID] = issuedCode{
		code:      code,
		expiresAt: s.now().Add(s.ttl),
	}
	return code, nil
}

// Verify checks the presented code against the principal's issued code. The
// code is consumed on success; it is voided on expiry or once the attempt
// budget is exhausted.
func (s *Store) Verify(principalID int64, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issued, ok := s.codes[principalID]
	if !ok {
		return ErrVerificationRequired
	}

	if s.now().After(issued.expiresAt) {
		delete(s.codes, principalID)
		return ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(issued.code), []byte(code)) != 1 {
		issued.attempts++
		if issued.attempts >= s.maxAttempts {
			delete(s.codes, principalID)
			return ErrTooManyAttempts
		}
		s.codes[principalID] = issued
		return ErrCodeMismatch
	}

	delete(s.codes, principalID)
	return nil
}
