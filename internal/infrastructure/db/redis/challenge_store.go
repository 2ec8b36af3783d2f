package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

// keyTTLSlack keeps the redis key alive slightly past the challenge's
// absolute expiry so a late verify gets the explicit expired error instead
// of "no active challenge".
const keyTTLSlack = time.Minute

// ChallengeStore keeps at most one live OTP challenge per phone in Redis.
// Key format: otp:<phone>
type ChallengeStore struct {
	client *redis.Client
}

func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{client: client}
}

// Put stores the challenge under its phone key. SET overwrites any prior
// value, giving last-send-wins semantics. The key TTL is hygiene only; the
// ExpiresAt inside the payload is authoritative.
func (s *ChallengeStore) Put(ctx context.Context, challenge domain.Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	ttl := time.Until(challenge.ExpiresAt) + keyTTLSlack
	if err := s.client.Set(ctx, s.key(challenge.Phone), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}
	return nil
}

// Take removes and returns the challenge for phone in one round trip. GETDEL
// is atomic on the server, so concurrent takers for the same phone race
// safely: exactly one gets the value.
func (s *ChallengeStore) Take(ctx context.Context, phone string) (domain.Challenge, error) {
	payload, err := s.client.GetDel(ctx, s.key(phone)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Challenge{}, domain.ErrNoActiveChallenge
		}
		return domain.Challenge{}, fmt.Errorf("take challenge: %w", err)
	}

	var challenge domain.Challenge
	if err := json.Unmarshal([]byte(payload), &challenge); err != nil {
		return domain.Challenge{}, fmt.Errorf("unmarshal challenge: %w", err)
	}
	return challenge, nil
}

func (s *ChallengeStore) key(phone string) string {
	return "otp:" + phone
}
