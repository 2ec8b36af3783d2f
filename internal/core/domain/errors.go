package domain

import (
	"errors"
	"fmt"
)

// Validation errors: the request is malformed and must be resubmitted.
var (
	ErrInvalidPhone    = errors.New("phone must be exactly 10 digits")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidNumeric  = errors.New("value must be a non-negative integer")
	ErrNumericOverflow = errors.New("numeric value out of range")
)

// Auth errors: the caller must re-authenticate.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoActiveChallenge  = errors.New("no active challenge for phone")
	ErrChallengeExpired   = errors.New("challenge expired")
	ErrCodeMismatch       = errors.New("code mismatch")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
)

// Policy errors: well-formed but not permitted; not retriable as-is.
var (
	ErrIdentityExists    = errors.New("identity already exists")
	ErrIdentityNotFound  = errors.New("identity not found")
	ErrNotFarmer         = errors.New("only farmers can register produce")
	ErrUnknownRecipient  = errors.New("recipient not found")
	ErrIllegalTransfer   = errors.New("illegal role transition")
	ErrProduceNotFound   = errors.New("produce not found")
)

// Dependency errors: an external collaborator failed; retriable after backoff.
var (
	ErrLedgerUnavailable   = errors.New("ledger unavailable")
	ErrNotifierUnavailable = errors.New("notifier unavailable")
)

// LedgerRejectedError carries a rejection reported by the ledger service
// verbatim. The ledger accepted the call but refused the request's content;
// the message is propagated unmodified to the caller.
type LedgerRejectedError struct {
	Reason string
}

func (e *LedgerRejectedError) Error() string {
	return fmt.Sprintf("ledger rejected: %s", e.Reason)
}

// IsLedgerRejected reports whether err is a ledger-side rejection and, if so,
// returns the verbatim reason.
func IsLedgerRejected(err error) (*LedgerRejectedError, bool) {
	var lre *LedgerRejectedError
	if errors.As(err, &lre) {
		return lre, true
	}
	return nil, false
}
