package dto

import (
	"time"

	"github.com/propcrm/crm-service/internal/domain"
	"github.com/propcrm/crm-service/internal/service"
)

// SignupRequest carries both signup steps.
type SignupRequest struct {
	Organization service.OrganizationForm `json:"organization"`
	Account      service.AccountForm      `json:"account"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewAuthResponse builds the response for an issued token.
func NewAuthResponse(token string, identity domain.Identity) AuthResponse {
	return AuthResponse{Token: token, ExpiresAt: identity.ExpiresAt}
}

// SignupResponse is returned after a completed signup.
type SignupResponse struct {
	Organization *domain.Organization `json:"organization"`
	Profile      *domain.Profile      `json:"profile"`
	Auth         AuthResponse         `json:"auth"`
}

// LogoutResponse tells the client where to go after sign-out.
type LogoutResponse struct {
	Redirect string `json:"redirect"`
}
