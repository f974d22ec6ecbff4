package service

import (
	"context"

	"github.com/propcrm/crm-service/internal/auth"
	"github.com/propcrm/crm-service/internal/domain"
	"github.com/propcrm/crm-service/internal/session"
)

// AuthService coordinates login, logout and token refresh with the session
// registry.
type AuthService struct {
	provider *auth.Provider
	sessions *session.Registry
}

// NewAuthService builds the service.
func NewAuthService(provider *auth.Provider, sessions *session.Registry) *AuthService {
	return &AuthService{provider: provider, sessions: sessions}
}

// Login authenticates credentials and returns a fresh access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.Identity, error) {
	return s.provider.SignIn(ctx, email, password)
}

// Logout ends the session behind token and returns where the client goes next.
func (s *AuthService) Logout(ctx context.Context, identity domain.Identity, token string) string {
	return s.sessions.SignOut(ctx, identity.SessionID, token)
}

// Refresh reissues the token for the caller's session. The registry picks the
// change up from the provider's refresh event.
func (s *AuthService) Refresh(ctx context.Context, identity domain.Identity) (string, domain.Identity, error) {
	return s.provider.Refresh(ctx, identity)
}
