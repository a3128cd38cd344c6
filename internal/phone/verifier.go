package phone

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCode indicates the submitted code does not match the pending one.
	ErrInvalidCode = errors.New("verification code invalid")
	// ErrCodeExpired indicates the pending code's validity window has passed.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrTooManyAttempts indicates the attempt cap was reached and the code was invalidated.
	ErrTooManyAttempts = errors.New("too many verification attempts")
	// ErrNoPendingCode indicates no verification was started for the phone number.
	ErrNoPendingCode = errors.New("no pending verification")
)

const codeLength = 6

// Verification is a pending code issued against a phone number claim.
type Verification struct {
	Principal   string
	PhoneNumber string
	CodeHash    string
	ExpiresAt   time.Time
	Attempts    int
}

// Store keeps pending verifications keyed by (principal, phone number).
// Codes are ephemeral, so the in-memory store is the production store too.
type Store interface {
	Save(ctx context.Context, v Verification) error
	Find(ctx context.Context, principal, phoneNumber string) (Verification, error)
	Delete(ctx context.Context, principal, phoneNumber string) error
}

// Verifier drives the Unverified -> CodeSent -> Verified state machine for a
// phone number claim. Codes are stored hashed and expire after the TTL.
type Verifier struct {
	store       Store
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

// NewVerifier constructs a Verifier issuing codes valid for the provided TTL.
func NewVerifier(store Store, ttl time.Duration, maxAttempts int) *Verifier {
	if store == nil {
		panic("phone: verification store must not be nil")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Verifier{
		store:       store,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start issues a fresh code for the phone number, overwriting any pending
// one, and returns it for delivery to the caller.
func (v *Verifier) Start(ctx context.Context, principal, phoneNumber string) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	if err != nil {
		return "", fmt.Errorf("hash verification code: %w", err)
	}

	if err := v.store.Save(ctx, Verification{
		Principal:   principal,
		PhoneNumber: phoneNumber,
		CodeHash:    string(hash),
		ExpiresAt:   v.now().Add(v.ttl),
	}); err != nil {
		return "", err
	}

	return code, nil
}

// Confirm checks the submitted code against the pending verification. On
// success the pending record is consumed; the caller persists the verified
// flag. Wrong codes count toward the attempt cap, and hitting the cap
// invalidates the code.
func (v *Verifier) Confirm(ctx context.Context, principal, phoneNumber, code string) error {
	pending, err := v.store.Find(ctx, principal, phoneNumber)
	if err != nil {
		return err
	}

	if v.now().After(pending.ExpiresAt) {
		_ = v.store.Delete(ctx, principal, phoneNumber)
		return ErrCodeExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(pending.CodeHash), []byte(code)) != nil {
		pending.Attempts++
		if pending.Attempts >= v.maxAttempts {
			_ = v.store.Delete(ctx, principal, phoneNumber)
			return ErrTooManyAttempts
		}
		if err := v.store.Save(ctx, pending); err != nil {
			return err
		}
		return ErrInvalidCode
	}

	return v.store.Delete(ctx, principal, phoneNumber)
}

// WithNowFunc overrides the time source. Useful for tests.
func (v *Verifier) WithNowFunc(now func() time.Time) {
	if now != nil {
		v.now = now
	}
}

func randomCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n), nil
}
