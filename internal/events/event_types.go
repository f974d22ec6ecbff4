package events

import (
	"time"

	"github.com/propcrm/crm-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIdentitySignedIn  EventType = "identity_signed_in"
	EventIdentityRefreshed EventType = "identity_refreshed"
	EventIdentitySignedOut EventType = "identity_signed_out"
)

// Event is an authentication state change for one session.
// Identity is nil for sign-out events.
type Event struct {
	ID        string           `json:"id"`
	Type      EventType        `json:"type"`
	SessionID string           `json:"session_id"`
	Identity  *domain.Identity `json:"identity,omitempty"`
	Origin    string           `json:"origin"`
	Timestamp time.Time        `json:"timestamp"`
}
