package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/agritrace/produce-chain/internal/core/domain"
	"github.com/agritrace/produce-chain/internal/core/ports"
)

// AuthService implements the password-based registration and login flow.
type AuthService struct {
	identities ports.IdentityRepository
	tokens     ports.TokenIssuer
}

func NewAuthService(identities ports.IdentityRepository, tokens ports.TokenIssuer) *AuthService {
	return &AuthService{identities: identities, tokens: tokens}
}

// Register creates a new identity bound to phone and role. The phone is the
// unique key: a phone already bound to any role cannot be re-registered,
// which also makes the role immutable once set.
func (s *AuthService) Register(ctx context.Context, phone, password string, role domain.Role) (*domain.Identity, error) {
	if !domain.ValidPhone(phone) {
		return nil, domain.ErrInvalidPhone
	}
	if password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	identity := &domain.Identity{
		Phone:          phone,
		Role:           role,
		CredentialHash: string(hash),
		CreatedAt:      time.Now().UTC(),
	}

	return s.identities.Create(ctx, identity)
}

// Login verifies the password and issues a session token for the identity's
// stored role.
func (s *AuthService) Login(ctx context.Context, phone, password string) (string, *domain.Identity, error) {
	if phone == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	identity, err := s.identities.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if identity.CredentialHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(identity.CredentialHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(identity.Phone, identity.Role)
	if err != nil {
		return "", nil, err
	}

	return token, identity, nil
}
