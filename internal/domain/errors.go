package domain

import "errors"

// Resolution errors. The session resolver recovers from all of them locally.
var (
	ErrIdentityResolution   = errors.New("identity resolution failed")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrOrganizationNotFound = errors.New("organization not found")
)

// Aggregation errors.
var (
	ErrQueryFailure        = errors.New("dashboard query failed")
	ErrInvalidOrganization = errors.New("invalid organization")
)

// Signup errors.
var (
	ErrSignupTransaction = errors.New("signup transaction failed")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid credentials")
)
