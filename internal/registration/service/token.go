package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultVerificationTTL is how long a verification-state token stays valid.
const DefaultVerificationTTL = 30 * time.Minute

// VerificationClaims is the payload of the verification-state token handed
// to the verification-pending view.
type VerificationClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates verification-state tokens.
type TokenIssuer struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// TokenOption configures a TokenIssuer.
type TokenOption func(*TokenIssuer)

func WithVerificationTTL(ttl time.Duration) TokenOption {
	return func(i *TokenIssuer) {
		i.ttl = ttl
	}
}

func WithIssuerName(name string) TokenOption {
	return func(i *TokenIssuer) {
		i.issuer = name
	}
}

// NewTokenIssuer creates an issuer signing with HS256.
func NewTokenIssuer(signingKey string, opts ...TokenOption) (*TokenIssuer, error) {
	if signingKey == "" {
		return nil, errors.New("token issuer requires a signing key")
	}
	i := &TokenIssuer{
		signingKey: []byte(signingKey),
		issuer:     "onboard",
		ttl:        DefaultVerificationTTL,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue mints a short-lived token binding the pending email and username.
func (i *TokenIssuer) Issue(email, username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, VerificationClaims{
		Email:    email,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(i.signingKey)
}

// Validate parses a token and returns its claims.
func (i *TokenIssuer) Validate(tokenString string) (*VerificationClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &VerificationClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*VerificationClaims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
