package dashboard

import "github.com/propcrm/crm-service/internal/domain"

// NavItem is one sidebar entry.
type NavItem struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// Navigation lists the sidebar entries for an organization type. Agents manage
// properties; developers manage projects and their units.
func Navigation(t domain.OrganizationType) []NavItem {
	items := []NavItem{
		{Name: "Dashboard", Href: "/dashboard"},
		{Name: "Leads", Href: "/dashboard/leads"},
	}
	switch t {
	case domain.OrganizationTypeAgent:
		items = append(items, NavItem{Name: "Properties", Href: "/dashboard/properties"})
	case domain.OrganizationTypeDeveloper:
		items = append(items,
			NavItem{Name: "Projects", Href: "/dashboard/projects"},
			NavItem{Name: "Units", Href: "/dashboard/units"},
		)
	}
	return append(items,
		NavItem{Name: "Deals", Href: "/dashboard/deals"},
		NavItem{Name: "Tasks", Href: "/dashboard/tasks"},
		NavItem{Name: "Calendar", Href: "/dashboard/calendar"},
		NavItem{Name: "Documents", Href: "/dashboard/documents"},
		NavItem{Name: "Communications", Href: "/dashboard/communications"},
		NavItem{Name: "Reports", Href: "/dashboard/reports"},
		NavItem{Name: "Settings", Href: "/dashboard/settings"},
	)
}
