package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agritrace/produce-chain/internal/core/domain"
	"github.com/agritrace/produce-chain/internal/core/ports"
)

const defaultTokenTTL = time.Hour

// TokenIssuer signs and validates HS256 session tokens carrying the verified
// phone number and role. Tokens are stateless: once issued they remain valid
// until expiry.
type TokenIssuer struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret string, tokenTTL time.Duration) *TokenIssuer {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), tokenTTL: tokenTTL, now: time.Now}
}

func (t *TokenIssuer) Issue(phone string, role domain.Role) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"phone": phone,
		"role":  string(role),
		"iat":   now.Unix(),
		"exp":   now.Add(t.tokenTTL).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.secret)
}

func (t *TokenIssuer) Validate(token string) (ports.Claims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ports.Claims{}, domain.ErrExpiredToken
		}
		return ports.Claims{}, domain.ErrInvalidToken
	}
	if !parsed.Valid {
		return ports.Claims{}, domain.ErrInvalidToken
	}

	phone, _ := claims["phone"].(string)
	roleStr, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleStr)
	if err != nil || phone == "" {
		return ports.Claims{}, domain.ErrInvalidToken
	}

	return ports.Claims{Phone: phone, Role: role}, nil
}
