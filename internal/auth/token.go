package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token validation failures. Callers reject the request the same way for all
// three; the distinction exists for telemetry.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
)

// TokenCodec issues and verifies HS256-signed session tokens. The subject is
// the account email; validity is purely signature + expiry, there is no
// server-side revocation.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec constructs a codec from the signing secret and token lifetime.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue produces a signed token for the given subject, valid from now until
// now plus the configured TTL.
func (c *TokenCodec) Issue(subject string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Parse verifies the token signature and expiry and returns the subject.
// Failures are ErrTokenMalformed, ErrTokenSignature, or ErrTokenExpired.
func (c *TokenCodec) Parse(tokenString string) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		return "", classifyTokenError(err)
	}
	if !token.Valid {
		return "", ErrTokenSignature
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}
