package ports

import (
	"context"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

// ChallengeStore holds at most one live OTP challenge per phone number.
type ChallengeStore interface {
	// Put stores the challenge, overwriting any prior unconsumed challenge
	// for the same phone (last send wins).
	Put(ctx context.Context, challenge domain.Challenge) error
	// Take atomically removes and returns the challenge for phone. Under
	// concurrent calls for the same phone exactly one caller receives the
	// challenge; the others get domain.ErrNoActiveChallenge.
	Take(ctx context.Context, phone string) (domain.Challenge, error)
}
