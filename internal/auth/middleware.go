package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/propcrm/crm-service/internal/domain"
	"github.com/propcrm/crm-service/internal/session"
	apperrors "github.com/propcrm/crm-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller and its session resolver.
type Principal struct {
	Identity *domain.Identity
	Token    string
	Resolver *session.Resolver
}

// State returns the caller's current session snapshot.
func (p *Principal) State() session.State {
	return p.Resolver.State()
}

// AuthMiddleware validates bearer tokens and attaches the session resolver.
type AuthMiddleware struct {
	provider *Provider
	sessions *session.Registry
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(provider *Provider, sessions *session.Registry) *AuthMiddleware {
	return &AuthMiddleware{provider: provider, sessions: sessions}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}
	token := parts[1]

	identity, err := m.provider.CurrentIdentity(c.UserContext(), token)
	if err != nil {
		return err
	}
	if identity == nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	resolver := m.sessions.Resolver(c.UserContext(), identity.SessionID, token)
	c.Locals(principalKey, &Principal{Identity: identity, Token: token, Resolver: resolver})
	return c.Next()
}

// RequireOrganization rejects callers whose session has no profile and
// organization, pointing them back to the login page.
func RequireOrganization() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.State().Ready() {
			return apperrors.NewDomainError("UNAUTHORIZED", "no profile or organization for this account",
				fiber.StatusUnauthorized, map[string]any{"redirect": session.LoginPath})
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
