package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/propcrm/crm-service/internal/api/dto"
	"github.com/propcrm/crm-service/internal/auth"
	apperrors "github.com/propcrm/crm-service/pkg/util/errorutil"
)

// SessionHandler exposes the caller's resolved session.
type SessionHandler struct{}

// NewSessionHandler constructs handler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Me handles GET /me.
func (h *SessionHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(principal.State())})
}

// Refresh handles POST /me/refresh, re-reading profile and organization.
func (h *SessionHandler) Refresh(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	state := principal.Resolver.Refresh(c.UserContext())
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(state)})
}
