// Package auth issues and verifies the bearer tokens that identify store
// administrators. How an administrator proves who they are before a token is
// minted is outside this service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront-service/internal/domain"
)

var (
	ErrTokenInvalid = fmt.Errorf("auth: invalid token: %w", domain.ErrAuth)
	ErrTokenExpired = fmt.Errorf("auth: token expired: %w", domain.ErrAuth)
)

// Claims identify an administrator.
type Claims struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and checks HS256 tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue mints a token for the given administrator.
func (t *TokenIssuer) Issue(adminID, username string) (string, time.Time, error) {
	if adminID == "" {
		return "", time.Time{}, domain.Invalid("admin_id", "is required")
	}
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := Claims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and checks a token. Every failure wraps domain.ErrAuth;
// expiry is reported as ErrTokenExpired.
func (t *TokenIssuer) Verify(raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, fmt.Errorf("%w (%v)", ErrTokenInvalid, err)
	}
	if claims.AdminID == "" {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}
