package dto

import (
	"github.com/propcrm/crm-service/internal/dashboard"
	"github.com/propcrm/crm-service/internal/domain"
	"github.com/propcrm/crm-service/internal/session"
)

// SessionResponse mirrors the resolver state.
type SessionResponse struct {
	Identity     *domain.Identity     `json:"identity"`
	Profile      *domain.Profile      `json:"profile"`
	Organization *domain.Organization `json:"organization"`
	Loading      bool                 `json:"loading"`
	Ready        bool                 `json:"ready"`
}

// NewSessionResponse converts a resolver snapshot.
func NewSessionResponse(s session.State) SessionResponse {
	return SessionResponse{
		Identity:     s.Identity,
		Profile:      s.Profile,
		Organization: s.Organization,
		Loading:      s.Loading,
		Ready:        s.Ready(),
	}
}

// DashboardStatsResponse adds display strings to the computed stats.
type DashboardStatsResponse struct {
	*dashboard.Stats
	DealValueFormatted string `json:"deal_value_formatted"`
}

// NavigationResponse lists sidebar entries for the caller's organization.
type NavigationResponse struct {
	OrganizationType domain.OrganizationType `json:"organization_type"`
	Items            []dashboard.NavItem     `json:"items"`
}
