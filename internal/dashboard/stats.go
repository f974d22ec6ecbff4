// Package dashboard computes the per-tenant summary shown on the landing page.
package dashboard

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Stats is the dashboard summary for one organization. Pointer fields apply to
// a single organization type and are nil (absent from JSON) otherwise.
type Stats struct {
	TotalLeads        int     `json:"total_leads"`
	NewLeads          int     `json:"new_leads"`
	QualifiedLeads    int     `json:"qualified_leads"`
	ConvertedLeads    int     `json:"converted_leads"`
	TotalDeals        int     `json:"total_deals"`
	DealValue         float64 `json:"deal_value"`
	PendingTasks      int     `json:"pending_tasks"`
	TodayAppointments int     `json:"today_appointments"`

	// Agent only.
	TotalProperties  *int `json:"total_properties,omitempty"`
	ActiveProperties *int `json:"active_properties,omitempty"`

	// Developer only.
	TotalProjects  *int `json:"total_projects,omitempty"`
	TotalUnits     *int `json:"total_units,omitempty"`
	AvailableUnits *int `json:"available_units,omitempty"`
	BookedUnits    *int `json:"booked_units,omitempty"`

	// FailedQueries names the queries that failed and were counted as empty.
	FailedQueries []string `json:"failed_queries,omitempty"`
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseNumberOrZero reads the longest numeric prefix of s, so "12.5 lakh" is
// 12.5. Missing, non-numeric and non-finite values are zero.
func parseNumberOrZero(s *string) float64 {
	if s == nil {
		return 0
	}
	m := leadingNumber.FindString(strings.TrimSpace(*s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func intPtr(v int) *int {
	return &v
}
