package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeBearer is the token_type reported to clients.
const TokenTypeBearer = "bearer"

var (
	// ErrInvalidToken covers bad signatures, wrong algorithms and malformed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for well-formed tokens past their exp claim.
	ErrTokenExpired = errors.New("token is expired")
	// ErrUnsupportedAlgorithm is returned by NewJWTIssuer for non-HMAC algorithms.
	ErrUnsupportedAlgorithm = errors.New("unsupported token algorithm")
)

// TokenIssuer signs and verifies bearer tokens that carry a subject claim.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Verify(token string) (string, error)
}

// TokenConfig configures a JWTIssuer.
type TokenConfig struct {
	SecretKey string
	Algorithm string // HS256, HS384 or HS512
	TTL       time.Duration
}

// JWTIssuer implements TokenIssuer with HMAC-signed JWTs.
type JWTIssuer struct {
	key    []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer validates cfg and returns an issuer.
func NewJWTIssuer(cfg TokenConfig) (*JWTIssuer, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("token secret key must not be empty")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}

	return &JWTIssuer{
		key:    []byte(cfg.SecretKey),
		method: method,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *JWTIssuer) WithClock(now func() time.Time) *JWTIssuer {
	c := *i
	c.now = now
	return &c
}

// TTL returns the lifetime of issued tokens.
func (i *JWTIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue returns a signed token for subject expiring TTL from now.
func (i *JWTIssuer) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject must not be empty")
	}

	now := i.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
func (i *JWTIssuer) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
