// Package auth provides JWT token generation/validation, password hashing,
// and the bearer-token middleware for the ThinkTank API.
//
// TOKEN MODEL:
// Two separate TokenServices are wired at startup, each with its own secret:
//
//	access  — 15 minutes, sent as "Authorization: Bearer <token>" on API calls
//	refresh — 7 days, exchanged at POST /api/auth/refresh for a new pair
//
// Refresh tokens are single-use: a successful refresh removes the presented
// token from the user's stored set and stores the newly issued one
// (rotation). A rotated-out token fails even if its signature and expiry
// are still valid, which is what catches a stolen token being replayed.
//
// Distinct secrets mean an access token can never be passed off as a
// refresh token or vice versa — validation against the wrong service fails
// on the signature.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "thinktank"

// Default lifetimes for the two token kinds.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrTokenExpired is returned by Validate when the token's signature checks
// out but its expiry has passed. The middleware surfaces this to clients as
// a distinguishable TOKEN_EXPIRED code so they know to refresh rather than
// re-login.
var ErrTokenExpired = errors.New("auth: token expired")

// TokenService signs and verifies JWTs of one kind (access or refresh).
// It holds the HMAC secret used for both operations; the same secret must
// be used to sign and verify.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in
// production (JWT_ACCESS_SECRET / JWT_REFRESH_SECRET).
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload. The user's internal ID goes in "sub"
// (Subject), the standard claim for identifying who the token belongs to.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new token for the given userID with the
// service's configured lifetime.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key signs and
// verifies. Fine for a single-server deployment; asymmetric RS256 only
// pays off once other services need to verify without the signing key.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used by tests to mint already-expired or near-expiry tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the userID stored
// in its "sub" claim.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with, signed with OUR secret)
//   - Token is not expired (→ ErrTokenExpired, distinguishable)
//   - Issuer matches "thinktank" (rejects tokens minted by other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks — without
//     jwt.WithValidMethods an attacker could present an alg:"none" token)
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	userID := c.Subject
	if userID == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return userID, nil
}
