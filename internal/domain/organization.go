package domain

import "time"

// OrganizationType selects which optional dashboard metrics apply to a tenant.
type OrganizationType string

const (
	OrganizationTypeAgent     OrganizationType = "Agent"
	OrganizationTypeDeveloper OrganizationType = "Developer"
)

// Valid reports whether t is a known organization type.
func (t OrganizationType) Valid() bool {
	return t == OrganizationTypeAgent || t == OrganizationTypeDeveloper
}

// SubscriptionStatus enumerates tenant billing states.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "Active"
	SubscriptionSuspended SubscriptionStatus = "Suspended"
	SubscriptionCancelled SubscriptionStatus = "Cancelled"
	SubscriptionTrial     SubscriptionStatus = "Trial"
)

// SubscriptionTier enumerates plan tiers.
type SubscriptionTier string

const (
	TierBasic      SubscriptionTier = "Basic"
	TierPro        SubscriptionTier = "Pro"
	TierEnterprise SubscriptionTier = "Enterprise"
)

// Organization is the tenant record. OrganizationType never changes after creation.
type Organization struct {
	ID                 string             `json:"organization_id"`
	Name               string             `json:"organization_name"`
	Type               OrganizationType   `json:"organization_type"`
	LogoURL            *string            `json:"logo_url"`
	BrandColor         string             `json:"brand_color"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
}

// NewOrganization carries the columns written once at signup.
type NewOrganization struct {
	Name               string
	Type               OrganizationType
	Email              string
	Phone              string
	BusinessName       string
	City               *string
	State              *string
	SubscriptionTier   SubscriptionTier
	SubscriptionStatus SubscriptionStatus
	TrialEndsAt        time.Time
}
