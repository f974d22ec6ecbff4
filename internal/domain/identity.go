package domain

import (
	"strings"
	"time"
)

// Identity is an authenticated session handed out by the identity provider.
// The session resolver only relies on ID being stable for a given account.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	SessionID string    `json:"session_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Credential is the stored login secret for an identity.
type Credential struct {
	IdentityID   string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
