package domain

// Role enumerates what a profile may do inside its organization.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleAgent   Role = "Agent"
	RoleSales   Role = "Sales"
)

// Profile is the internal user record linked to an identity.
type Profile struct {
	UserID         string  `json:"user_id"`
	OrganizationID string  `json:"organization_id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Role           Role    `json:"role"`
	ProfilePhoto   *string `json:"profile_photo"`
}

// NewProfile carries the columns written at signup.
type NewProfile struct {
	OrganizationID string
	AuthUserID     string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Role           Role
	IsActive       bool
}
