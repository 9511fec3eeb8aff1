package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/diefthyntis/twoaut-auth-api/config"
)

// Token validation failures. All of them collapse to "invalid" for callers of
// Validate, but each is logged distinctly.
var (
	ErrTokenInvalid     = errors.New("token is invalid")
	ErrTokenMalformed   = errors.New("token is malformed")
	ErrTokenExpired     = errors.New("token is expired")
	ErrTokenUnsupported = errors.New("token algorithm is unsupported")
	ErrTokenClaimsEmpty = errors.New("token claims are empty")
)

// Codec issues and verifies HS256-signed bearer tokens. The signing key and
// lifetime are fixed at construction; a Codec is safe for concurrent use.
type Codec struct {
	key      []byte
	lifetime time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewCodec derives the signing key from the base64-encoded secret in cfg.
// The same key verifies every token the codec issues.
func NewCodec(cfg config.JWTConfig, logger *zap.Logger) (*Codec, error) {
	key, err := cfg.SigningKey()
	if err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	lifetime := cfg.Expiration()
	if lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", lifetime)
	}
	return &Codec{
		key:      key,
		lifetime: lifetime,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// WithClock overrides the codec's clock. Test hook.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Issue builds a signed token whose subject is the given identifier,
// issued now and expiring after the configured lifetime.
func (c *Codec) Issue(subject string) (string, error) {
	if subject == "" {
		return "", ErrTokenClaimsEmpty
	}

	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Subject parses the token, verifies its signature and expiry, and returns
// the subject claim.
func (c *Codec) Subject(tokenString string) (string, error) {
	claims, err := c.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Validate reports whether the token parses, carries a supported algorithm,
// has a valid signature, and has not expired. Failures are logged by category
// and collapse to false.
func (c *Codec) Validate(tokenString string) bool {
	_, err := c.parse(tokenString)
	if err == nil {
		return true
	}

	switch {
	case errors.Is(err, ErrTokenMalformed):
		c.logger.Warn("invalid JWT token", zap.Error(err))
	case errors.Is(err, ErrTokenExpired):
		c.logger.Warn("JWT token is expired", zap.Error(err))
	case errors.Is(err, ErrTokenUnsupported):
		c.logger.Warn("JWT token is unsupported", zap.Error(err))
	case errors.Is(err, ErrTokenClaimsEmpty):
		c.logger.Warn("JWT claims string is empty", zap.Error(err))
	default:
		c.logger.Warn("JWT validation failed", zap.Error(err))
	}
	return false
}

// parse runs signature verification and expiry validation in a single pass so
// a forged token and an expired token are rejected through the same path.
func (c *Codec) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenClaimsEmpty
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, c.classify(err)
	}

	if claims.Subject == "" {
		return nil, ErrTokenClaimsEmpty
	}
	return claims, nil
}

// keyFunc returns the shared HMAC key and rejects any non-HMAC algorithm,
// including the "none" downgrade.
func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: %v", ErrTokenUnsupported, t.Header["alg"])
	}
	return c.key, nil
}

// classify maps golang-jwt parse errors onto the package's error taxonomy.
func (c *Codec) classify(err error) error {
	switch {
	case errors.Is(err, ErrTokenUnsupported):
		return fmt.Errorf("%w: %w", ErrTokenUnsupported, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %w", ErrTokenClaimsEmpty, err)
	default:
		return fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
}
