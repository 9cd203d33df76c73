// Package jwtauth verifies HMAC-signed bearer tokens and turns their claims
// into the principal used for authorization.
package jwtauth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/riskibarqy/trading-tournament/internal/domain/user"
	"github.com/riskibarqy/trading-tournament/internal/platform/clock"
	"github.com/riskibarqy/trading-tournament/internal/usecase"
)

type Verifier struct {
	secret []byte
	issuer string
	clock  clock.Clock
}

func NewVerifier(secret, issuer string, c clock.Clock) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: strings.TrimSpace(issuer), clock: clock.OrReal(c)}
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (v *Verifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %w", usecase.ErrUnauthorized, err)
	}

	principal := user.Principal{UserID: strings.TrimSpace(parsed.Subject), Role: user.ParseRole(parsed.Role)}
	if !principal.Authenticated() {
		return user.Principal{}, fmt.Errorf("%w: token has no subject", usecase.ErrUnauthorized)
	}
	return principal, nil
}

// Issue signs a token for principal; used by local tooling and tests.
func (v *Verifier) Issue(principal user.Principal, ttl time.Duration) (string, error) {
	now := v.clock.Now()
	c := claims{
		Role: string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
}
