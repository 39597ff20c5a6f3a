package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"feedbackhub-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrAuthentication is returned for any failed login or token check. It never
// says which part of the credential was wrong.
var ErrAuthentication = errors.New("authentication failed")

const DefaultTokenTTL = 24 * time.Hour

// Config describes the single admin identity and how its tokens are signed.
// PasswordHash (bcrypt) takes precedence over Password when both are set.
type Config struct {
	Username     string
	Password     string
	PasswordHash string
	Secret       string
	Issuer       string
	TokenTTL     time.Duration
}

// Gate checks the admin credential pair and issues and validates bearer tokens.
type Gate struct {
	username     string
	passwordHash []byte
	secret       []byte
	issuer       string
	ttl          time.Duration
	now          func() time.Time
}

func NewGate(cfg Config) (*Gate, error) {
	if cfg.Username == "" {
		return nil, errors.New("auth: admin username is required")
	}
	if cfg.Secret == "" {
		return nil, errors.New("auth: token secret is required")
	}

	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 {
		if cfg.Password == "" {
			return nil, errors.New("auth: admin password or password hash is required")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("auth: hash admin password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("auth: invalid admin password hash: %w", err)
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &Gate{
		username:     cfg.Username,
		passwordHash: hash,
		secret:       []byte(cfg.Secret),
		issuer:       cfg.Issuer,
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

// Login issues a credential when both username and password match the configured admin.
func (g *Gate) Login(username, password string) (models.Credential, error) {
	// Both comparisons always run.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		return models.Credential{}, ErrAuthentication
	}

	now := g.now()
	expiresAt := jwt.NewNumericDate(now.Add(g.ttl))
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   g.username,
		Issuer:    g.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: expiresAt,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return models.Credential{}, fmt.Errorf("auth: sign token: %w", err)
	}

	return models.Credential{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.Time,
	}, nil
}

// Validate checks signature, issuer, subject and expiry of a bearer token.
func (g *Gate) Validate(token string) (models.AdminIdentity, error) {
	if token == "" {
		return models.AdminIdentity{}, ErrAuthentication
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(g.username),
		jwt.WithTimeFunc(g.now),
	}
	if g.issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.issuer))
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return models.AdminIdentity{}, ErrAuthentication
	}

	return models.AdminIdentity{Username: claims.Subject}, nil
}
