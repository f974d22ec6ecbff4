package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/propcrm/crm-service/internal/api/dto"
	"github.com/propcrm/crm-service/internal/auth"
	"github.com/propcrm/crm-service/internal/dashboard"
	apperrors "github.com/propcrm/crm-service/pkg/util/errorutil"
)

// DashboardHandler serves the landing page data.
type DashboardHandler struct {
	aggregator *dashboard.Aggregator
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(aggregator *dashboard.Aggregator) *DashboardHandler {
	return &DashboardHandler{aggregator: aggregator}
}

// Stats handles GET /dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	stats, err := h.aggregator.Compute(c.UserContext(), principal.State().Organization)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardStatsResponse{
		Stats:              stats,
		DealValueFormatted: dashboard.FormatCurrency(stats.DealValue),
	}})
}

// Navigation handles GET /dashboard/navigation.
func (h *DashboardHandler) Navigation(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	org := principal.State().Organization
	if org == nil {
		return apperrors.NewUnauthorized("no organization for this account")
	}
	return c.JSON(fiber.Map{"data": dto.NavigationResponse{
		OrganizationType: org.Type,
		Items:            dashboard.Navigation(org.Type),
	}})
}
