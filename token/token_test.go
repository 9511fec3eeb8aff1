package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diefthyntis/twoaut-auth-api/config"
)

const testLifetimeMs = 60_000

func testJWTConfig(secret string) config.JWTConfig {
	return config.JWTConfig{
		Secret:       base64.StdEncoding.EncodeToString([]byte(secret)),
		ExpirationMs: testLifetimeMs,
	}
}

func newTestCodec(t *testing.T, secret string) *Codec {
	t.Helper()
	codec, err := NewCodec(testJWTConfig(secret), zap.NewNop())
	require.NoError(t, err)
	return codec
}

func TestNewCodec(t *testing.T) {
	t.Run("rejects short secret", func(t *testing.T) {
		cfg := config.JWTConfig{
			Secret:       base64.StdEncoding.EncodeToString([]byte("too-short")),
			ExpirationMs: testLifetimeMs,
		}
		_, err := NewCodec(cfg, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("rejects non-base64 secret", func(t *testing.T) {
		cfg := config.JWTConfig{Secret: "!!!not base64!!!", ExpirationMs: testLifetimeMs}
		_, err := NewCodec(cfg, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("rejects non-positive lifetime", func(t *testing.T) {
		cfg := testJWTConfig("0123456789abcdef0123456789abcdef")
		cfg.ExpirationMs = 0
		_, err := NewCodec(cfg, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestIssueSubjectRoundTrip(t *testing.T) {
	codec := newTestCodec(t, "0123456789abcdef0123456789abcdef")

	for _, subject := range []string{"alice", "bob@example.com", "user with spaces"} {
		tokenString, err := codec.Issue(subject)
		require.NoError(t, err)
		assert.NotEmpty(t, tokenString)
		assert.Len(t, strings.Split(tokenString, "."), 3)

		got, err := codec.Subject(tokenString)
		require.NoError(t, err)
		assert.Equal(t, subject, got)
		assert.True(t, codec.Validate(tokenString))
	}
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	codec := newTestCodec(t, "0123456789abcdef0123456789abcdef")

	_, err := codec.Issue("")
	assert.ErrorIs(t, err, ErrTokenClaimsEmpty)
}

func TestExpiry(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	codec := newTestCodec(t, "0123456789abcdef0123456789abcdef")
	codec.WithClock(func() time.Time { return issuedAt })

	tokenString, err := codec.Issue("alice")
	require.NoError(t, err)

	lifetime := testLifetimeMs * time.Millisecond

	t.Run("valid immediately", func(t *testing.T) {
		assert.True(t, codec.Validate(tokenString))
	})

	t.Run("valid just before expiry", func(t *testing.T) {
		codec.WithClock(func() time.Time { return issuedAt.Add(lifetime - time.Second) })
		assert.True(t, codec.Validate(tokenString))
	})

	t.Run("expired exactly at expiry", func(t *testing.T) {
		codec.WithClock(func() time.Time { return issuedAt.Add(lifetime) })
		assert.False(t, codec.Validate(tokenString))

		_, err := codec.Subject(tokenString)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("expired after expiry", func(t *testing.T) {
		codec.WithClock(func() time.Time { return issuedAt.Add(lifetime + time.Hour) })
		assert.False(t, codec.Validate(tokenString))
	})
}

func TestValidateRejectsForgedTokens(t *testing.T) {
	codec := newTestCodec(t, "0123456789abcdef0123456789abcdef")
	other := newTestCodec(t, "fedcba9876543210fedcba9876543210")

	tokenString, err := codec.Issue("alice")
	require.NoError(t, err)

	t.Run("signed with a different key", func(t *testing.T) {
		foreign, err := other.Issue("alice")
		require.NoError(t, err)
		assert.False(t, codec.Validate(foreign))

		_, err = codec.Subject(foreign)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("tampered payload segment", func(t *testing.T) {
		parts := strings.Split(tokenString, ".")
		require.Len(t, parts, 3)

		payload, err := base64.RawURLEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		tampered := strings.Replace(string(payload), "alice", "mallory", 1)
		parts[1] = base64.RawURLEncoding.EncodeToString([]byte(tampered))

		assert.False(t, codec.Validate(strings.Join(parts, ".")))
	})

	t.Run("structurally malformed", func(t *testing.T) {
		for _, bad := range []string{"not-a-token", "only.two", "a.b.c.d", "..."} {
			assert.False(t, codec.Validate(bad), "input %q", bad)

			_, err := codec.Subject(bad)
			assert.Error(t, err, "input %q", bad)
		}
	})

	t.Run("empty string", func(t *testing.T) {
		assert.False(t, codec.Validate(""))
	})
}

func TestValidateRejectsUnsupportedAlgorithm(t *testing.T) {
	codec := newTestCodec(t, "0123456789abcdef0123456789abcdef")

	// "none" downgrade
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.False(t, codec.Validate(noneToken))

	_, err = codec.Subject(noneToken)
	assert.ErrorIs(t, err, ErrTokenUnsupported)
}

func TestValidateRejectsMissingClaims(t *testing.T) {
	cfg := testJWTConfig("0123456789abcdef0123456789abcdef")
	key, err := cfg.SigningKey()
	require.NoError(t, err)

	codec := newTestCodec(t, "0123456789abcdef0123456789abcdef")

	t.Run("no subject claim", func(t *testing.T) {
		noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		tokenString, err := noSub.SignedString(key)
		require.NoError(t, err)

		assert.False(t, codec.Validate(tokenString))

		_, err = codec.Subject(tokenString)
		assert.ErrorIs(t, err, ErrTokenClaimsEmpty)
	})

	t.Run("no expiry claim", func(t *testing.T) {
		noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject: "alice",
		})
		tokenString, err := noExp.SignedString(key)
		require.NoError(t, err)

		assert.False(t, codec.Validate(tokenString))
	})
}
