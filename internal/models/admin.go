package models

import "time"

// Credential is the bearer token issued to the admin on login.
type Credential struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *Credential) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

func (c *Credential) IsZero() bool {
	return c.Token == ""
}

type AdminIdentity struct {
	Username string `json:"username"`
}
