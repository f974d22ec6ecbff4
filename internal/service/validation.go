package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/propcrm/crm-service/internal/domain"
)

const minPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// OrganizationForm is the first signup step.
type OrganizationForm struct {
	Name         string `json:"organization_name"`
	Type         string `json:"organization_type"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	BusinessName string `json:"business_name"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// AccountForm is the second signup step.
type AccountForm struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ValidationError reports the first rejected field of a signup step.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateOrganization checks the first signup step.
func ValidateOrganization(f OrganizationForm) error {
	switch {
	case blank(f.Name):
		return &ValidationError{Field: "organization_name", Message: "Please fill all required fields"}
	case blank(f.Type):
		return &ValidationError{Field: "organization_type", Message: "Please fill all required fields"}
	case blank(f.Email):
		return &ValidationError{Field: "email", Message: "Please fill all required fields"}
	case blank(f.Phone):
		return &ValidationError{Field: "phone", Message: "Please fill all required fields"}
	case !domain.OrganizationType(f.Type).Valid():
		return &ValidationError{Field: "organization_type", Message: "Organization type must be Agent or Developer"}
	case !emailPattern.MatchString(f.Email):
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	case !phonePattern.MatchString(f.Phone):
		return &ValidationError{Field: "phone", Message: "Please enter a valid 10-digit phone number"}
	}
	return nil
}

// ValidateAccount checks the second signup step.
func ValidateAccount(f AccountForm) error {
	switch {
	case blank(f.FirstName):
		return &ValidationError{Field: "first_name", Message: "Please fill all required fields"}
	case blank(f.LastName):
		return &ValidationError{Field: "last_name", Message: "Please fill all required fields"}
	case f.Password == "":
		return &ValidationError{Field: "password", Message: "Please fill all required fields"}
	case f.Password != f.ConfirmPassword:
		return &ValidationError{Field: "confirm_password", Message: "Passwords do not match"}
	case utf8.RuneCountInString(f.Password) < minPasswordLength:
		return &ValidationError{Field: "password", Message: "Password must be at least 6 characters"}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
