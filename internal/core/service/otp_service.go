package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"github.com/agritrace/produce-chain/internal/api/metrics"
	"github.com/agritrace/produce-chain/internal/core/domain"
	"github.com/agritrace/produce-chain/internal/core/ports"
)

// OTPService issues and verifies single-use one-time codes. Each challenge is
// bound to a phone number and a claimed role; a successful first verification
// creates the identity.
type OTPService struct {
	challenges ports.ChallengeStore
	identities ports.IdentityRepository
	notifier   ports.Notifier
	tokens     ports.TokenIssuer
	logger     zerolog.Logger
	now        func() time.Time
}

func NewOTPService(
	challenges ports.ChallengeStore,
	identities ports.IdentityRepository,
	notifier ports.Notifier,
	tokens ports.TokenIssuer,
	logger zerolog.Logger,
) *OTPService {
	return &OTPService{
		challenges: challenges,
		identities: identities,
		notifier:   notifier,
		tokens:     tokens,
		logger:     logger,
		now:        time.Now,
	}
}

// Send issues a fresh code for phone, overwriting any prior unconsumed
// challenge (last send wins), and hands it to the notifier. A delivery
// failure takes the challenge back out so no pending challenge survives that
// the user never learned the code for.
func (s *OTPService) Send(ctx context.Context, phone string, role domain.Role) error {
	if !domain.ValidPhone(phone) {
		return domain.ErrInvalidPhone
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	challenge := domain.Challenge{
		Phone:     phone,
		Code:      code,
		Role:      role,
		ExpiresAt: s.now().Add(domain.ChallengeTTL),
	}
	if err := s.challenges.Put(ctx, challenge); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}

	message := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code)
	if err := s.notifier.Deliver(ctx, phone, message); err != nil {
		if _, takeErr := s.challenges.Take(ctx, phone); takeErr != nil && !errors.Is(takeErr, domain.ErrNoActiveChallenge) {
			s.logger.Warn().Err(takeErr).Str("phone", phone).Msg("failed to roll back challenge after delivery failure")
		}
		s.logger.Error().Err(err).Str("phone", phone).Msg("otp delivery failed")
		return domain.ErrNotifierUnavailable
	}

	metrics.OTPSentTotal.WithLabelValues(string(role)).Inc()
	s.logger.Info().Str("phone", phone).Str("role", string(role)).Msg("otp sent")
	return nil
}

// Verify consumes the live challenge for phone. The take is atomic: under
// concurrent verifies exactly one caller observes the challenge. Expired and
// mismatched codes also consume the challenge, so each send allows one attempt.
func (s *OTPService) Verify(ctx context.Context, phone, code string) (string, *domain.Identity, error) {
	challenge, err := s.challenges.Take(ctx, phone)
	if err != nil {
		metrics.OTPVerifiedTotal.WithLabelValues("no_challenge").Inc()
		return "", nil, err
	}

	if challenge.ExpiredAt(s.now()) {
		metrics.OTPVerifiedTotal.WithLabelValues("expired").Inc()
		return "", nil, domain.ErrChallengeExpired
	}

	if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
		metrics.OTPVerifiedTotal.WithLabelValues("mismatch").Inc()
		return "", nil, domain.ErrCodeMismatch
	}

	identity, err := s.identities.FindByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, domain.ErrIdentityNotFound) {
			return "", nil, err
		}
		identity, err = s.identities.Create(ctx, &domain.Identity{
			Phone:     phone,
			Role:      challenge.Role,
			CreatedAt: s.now().UTC(),
		})
		if err != nil {
			// Lost a creation race: the identity now exists, use it.
			if errors.Is(err, domain.ErrIdentityExists) {
				identity, err = s.identities.FindByPhone(ctx, phone)
			}
			if err != nil {
				return "", nil, err
			}
		}
		s.logger.Info().Str("phone", phone).Str("role", string(identity.Role)).Msg("identity created on first verification")
	}

	token, err := s.tokens.Issue(identity.Phone, identity.Role)
	if err != nil {
		return "", nil, err
	}

	metrics.OTPVerifiedTotal.WithLabelValues("ok").Inc()
	return token, identity, nil
}

// generateCode returns a uniform random 6-digit code. Codes are not globally
// unique; uniqueness per phone is enforced by the one-live-challenge rule.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
