package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGate(Config{
		Username: "admin",
		Password: "password123",
		Secret:   "test-secret",
		Issuer:   "feedbackhub",
		TokenTTL: time.Hour,
	})
	require.NoError(t, err)
	return g
}

func TestLogin_Success(t *testing.T) {
	g := newTestGate(t)

	cred, err := g.Login("admin", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, cred.Token)
	assert.Equal(t, "Bearer", cred.TokenType)
	assert.False(t, cred.IsExpired())
	assert.WithinDuration(t, time.Now().Add(time.Hour), cred.ExpiresAt, 2*time.Second)

	id, err := g.Validate(cred.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", id.Username)
}

func TestLogin_RejectsAnyOtherPair(t *testing.T) {
	g := newTestGate(t)

	cases := []struct{ user, pass string }{
		{"admin", "wrong"},
		{"root", "password123"},
		{"root", "wrong"},
		{"", ""},
		{"Admin", "password123"},
		{"admin", "password123 "},
	}
	for _, c := range cases {
		_, err := g.Login(c.user, c.pass)
		assert.ErrorIs(t, err, ErrAuthentication, "user=%q pass=%q", c.user, c.pass)
	}
}

func TestLogin_WithPasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	g, err := NewGate(Config{Username: "ops", PasswordHash: string(hash), Secret: "k"})
	require.NoError(t, err)

	_, err = g.Login("ops", "s3cret")
	assert.NoError(t, err)
	_, err = g.Login("ops", "password123")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestNewGate_InvalidConfig(t *testing.T) {
	_, err := NewGate(Config{Password: "p", Secret: "k"})
	assert.Error(t, err)
	_, err = NewGate(Config{Username: "a", Password: "p"})
	assert.Error(t, err)
	_, err = NewGate(Config{Username: "a", Secret: "k"})
	assert.Error(t, err)
	_, err = NewGate(Config{Username: "a", PasswordHash: "not-bcrypt", Secret: "k"})
	assert.Error(t, err)
}

func TestValidate_Failures(t *testing.T) {
	g := newTestGate(t)
	cred, err := g.Login("admin", "password123")
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := g.Validate("")
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := g.Validate("not.a.jwt")
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := g.Validate(cred.Token + "x")
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewGate(Config{Username: "admin", Password: "password123", Secret: "other", Issuer: "feedbackhub"})
		require.NoError(t, err)
		_, err = other.Validate(cred.Token)
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("expired", func(t *testing.T) {
		g.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { g.now = time.Now }()
		_, err := g.Validate(cred.Token)
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("no expiry", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject: "admin",
			Issuer:  "feedbackhub",
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = g.Validate(tok)
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("wrong subject", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "intruder",
			Issuer:    "feedbackhub",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = g.Validate(tok)
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("none algorithm", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "admin",
			Issuer:    "feedbackhub",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = g.Validate(tok)
		assert.ErrorIs(t, err, ErrAuthentication)
	})
}
