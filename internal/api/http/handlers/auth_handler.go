package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/propcrm/crm-service/internal/api/dto"
	"github.com/propcrm/crm-service/internal/auth"
	"github.com/propcrm/crm-service/internal/service"
	apperrors "github.com/propcrm/crm-service/pkg/util/errorutil"
)

// AuthHandler exposes signup, login, logout and token refresh.
type AuthHandler struct {
	auth   *service.AuthService
	signup *service.SignupService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, signupService *service.SignupService) *AuthHandler {
	return &AuthHandler{auth: authService, signup: signupService}
}

// ValidateOrganization handles POST /auth/signup/organization, the first signup step.
func (h *AuthHandler) ValidateOrganization(c *fiber.Ctx) error {
	var req service.OrganizationForm
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := service.ValidateOrganization(req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"next_step": 2}})
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	result, err := h.signup.Register(c.UserContext(), req.Organization, req.Account)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.SignupResponse{
			Organization: result.Organization,
			Profile:      result.Profile,
			Auth:         dto.NewAuthResponse(result.Token, result.Identity),
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	token, identity, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"auth": dto.NewAuthResponse(token, identity)}})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	next := h.auth.Logout(c.UserContext(), *principal.Identity, principal.Token)
	return c.JSON(fiber.Map{"data": dto.LogoutResponse{Redirect: next}})
}

// RefreshToken handles POST /auth/token/refresh.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	token, identity, err := h.auth.Refresh(c.UserContext(), *principal.Identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"auth": dto.NewAuthResponse(token, identity)}})
}
