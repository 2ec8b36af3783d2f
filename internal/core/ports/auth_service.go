package ports

import (
	"context"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

// AuthService implements the password-based registration and login flow.
type AuthService interface {
	Register(ctx context.Context, phone, password string, role domain.Role) (*domain.Identity, error)
	Login(ctx context.Context, phone, password string) (string, *domain.Identity, error)
}

// OTPService implements the one-time-code identity verification protocol.
type OTPService interface {
	// Send issues a fresh 6-digit code bound to role, stores it with a
	// 5-minute expiry, and hands it to the notifier for delivery.
	Send(ctx context.Context, phone string, role domain.Role) error
	// Verify consumes the live challenge for phone. On a matching code it
	// creates the identity if absent and returns a session token.
	Verify(ctx context.Context, phone, code string) (string, *domain.Identity, error)
}
