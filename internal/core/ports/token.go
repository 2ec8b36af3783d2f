package ports

import "github.com/agritrace/produce-chain/internal/core/domain"

// Claims are the authenticated fields carried by a session token.
type Claims struct {
	Phone string
	Role  domain.Role
}

// TokenIssuer signs and validates stateless session credentials. Validity is
// purely a function of signature and expiry; there is no revocation list.
type TokenIssuer interface {
	Issue(phone string, role domain.Role) (string, error)
	// Validate returns domain.ErrInvalidToken for malformed or forged tokens
	// and domain.ErrExpiredToken once the expiry has passed.
	Validate(token string) (Claims, error)
}
