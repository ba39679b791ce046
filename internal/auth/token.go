// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// TokenTypeBearer is the token type reported alongside issued access tokens.
const TokenTypeBearer = "bearer"

// DefaultTokenTTL is the access token lifetime used when none is configured.
const DefaultTokenTTL = 30 * time.Minute

// Token is a signed, time-limited bearer credential. It is never persisted:
// validity is purely a function of the signature and the embedded expiry.
type Token struct {
	AccessToken string
	TokenType   string
}

// TokenIssuer signs and verifies bearer tokens carrying the subject's
// institutional email. The secret key and algorithm are fixed at
// construction and not rotatable at runtime.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. Only the HMAC family (HS256, HS384,
// HS512) is supported; anything else is a configuration error.
func NewTokenIssuer(secret []byte, algorithm string, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, oops.Code("AUTH_TOKEN_CONFIG").Errorf("signing secret cannot be empty")
	}
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, oops.Code("AUTH_TOKEN_CONFIG").
			With("algorithm", algorithm).
			Errorf("unsupported signing algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		secret: secret,
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for the given subject expiring at now + ttl.
func (i *TokenIssuer) Issue(subject string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify checks signature integrity and expiry, returning the subject on
// success. Any failure mode, malformed input, tampering, wrong algorithm,
// or expiry, yields ErrTokenInvalid rather than a detailed fault.
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}
