package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of issued tokens.
const DefaultTokenTTL = time.Hour

// Claims is the payload of an admin token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for subject with the given role.
func IssueToken(secret []byte, subject, role string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("secret is required")
	}
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if !ValidRole(role) {
		return "", fmt.Errorf("role %q is invalid", role)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	tokensIssuedTotal.WithLabelValues(role).Inc()
	return signed, nil
}

// ParseToken validates a bearer Authorization header value and returns its claims.
// Only HS256 is accepted and an expiry is required.
func ParseToken(authz string, secret []byte, now func() time.Time) (*Claims, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return nil, errors.New("missing bearer token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimPrefix(authz, prefix), claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errors.New("token expired")
	case err != nil:
		return nil, errors.New("invalid token")
	case claims.Subject == "":
		return nil, errors.New("invalid sub claim")
	}
	return claims, nil
}
