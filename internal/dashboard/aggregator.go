package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/propcrm/crm-service/internal/domain"
	"github.com/propcrm/crm-service/internal/repository"
)

// Query names as they appear in logs, metrics and Stats.FailedQueries.
const (
	QueryLeads             = "leads"
	QueryProperties        = "properties"
	QueryProjects          = "projects"
	QueryUnits             = "units"
	QueryDeals             = "deals"
	QueryPendingTasks      = "pending_tasks"
	QueryTodayAppointments = "today_appointments"
)

// Recorder receives query outcomes and aggregation timings.
type Recorder interface {
	RecordQuery(query, outcome string)
	ObserveAggregation(d time.Duration)
}

// Aggregator fans the dashboard queries out and folds the results into Stats.
type Aggregator struct {
	records      repository.RecordRepository
	metrics      Recorder
	logger       *zap.Logger
	location     *time.Location
	queryTimeout time.Duration
	deadline     time.Duration
	now          func() time.Time
}

// Dependencies configures an Aggregator. Zero timeouts disable the bound.
type Dependencies struct {
	Records      repository.RecordRepository
	Metrics      Recorder
	Logger       *zap.Logger
	Location     *time.Location
	QueryTimeout time.Duration
	Deadline     time.Duration
}

// NewAggregator wires the aggregator.
func NewAggregator(deps Dependencies) *Aggregator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{
		records:      deps.Records,
		metrics:      deps.Metrics,
		logger:       logger,
		location:     loc,
		queryTimeout: deps.QueryTimeout,
		deadline:     deps.Deadline,
		now:          time.Now,
	}
}

// Compute runs the seven dashboard queries concurrently for org. A failing
// query counts as an empty set and is named in FailedQueries; only an invalid
// organization is an error.
func (a *Aggregator) Compute(ctx context.Context, org *domain.Organization) (*Stats, error) {
	if err := validateOrganization(org); err != nil {
		return nil, err
	}

	started := time.Now()
	defer func() {
		if a.metrics != nil {
			a.metrics.ObserveAggregation(time.Since(started))
		}
	}()

	if a.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.deadline)
		defer cancel()
	}

	isAgent := org.Type == domain.OrganizationTypeAgent
	isDeveloper := org.Type == domain.OrganizationTypeDeveloper
	from, to := a.today()

	var (
		leads        []domain.Lead
		properties   []domain.Property
		projects     []domain.Project
		units        []domain.Unit
		deals        []domain.Deal
		tasks        []domain.Task
		appointments []domain.Appointment
		failed       [7]bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetch(gctx, a, org.ID, QueryLeads, true, &leads, &failed[0], a.records.ListLeads))
	g.Go(fetch(gctx, a, org.ID, QueryProperties, isAgent, &properties, &failed[1], a.records.ListProperties))
	g.Go(fetch(gctx, a, org.ID, QueryProjects, isDeveloper, &projects, &failed[2], a.records.ListProjects))
	g.Go(fetch(gctx, a, org.ID, QueryUnits, isDeveloper, &units, &failed[3], a.records.ListUnits))
	g.Go(fetch(gctx, a, org.ID, QueryDeals, true, &deals, &failed[4], a.records.ListDeals))
	g.Go(fetch(gctx, a, org.ID, QueryPendingTasks, true, &tasks, &failed[5],
		func(ctx context.Context, orgID string) ([]domain.Task, error) {
			return a.records.ListTasksByStatus(ctx, orgID, domain.TaskStatusPending)
		}))
	g.Go(fetch(gctx, a, org.ID, QueryTodayAppointments, true, &appointments, &failed[6],
		func(ctx context.Context, orgID string) ([]domain.Appointment, error) {
			return a.records.ListAppointmentsBetween(ctx, orgID, from, to)
		}))
	// Branches never return errors; failures are folded into empty sets.
	_ = g.Wait()

	stats := &Stats{
		TotalLeads:        len(leads),
		TotalDeals:        len(deals),
		PendingTasks:      len(tasks),
		TodayAppointments: len(appointments),
	}
	for _, l := range leads {
		switch l.Status {
		case domain.LeadStatusNew:
			stats.NewLeads++
		case domain.LeadStatusQualified:
			stats.QualifiedLeads++
		case domain.LeadStatusConverted:
			stats.ConvertedLeads++
		}
	}
	for _, d := range deals {
		stats.DealValue += parseNumberOrZero(d.DealValue)
	}

	switch {
	case isAgent:
		active := 0
		for _, p := range properties {
			if p.Status == domain.PropertyStatusActive {
				active++
			}
		}
		stats.TotalProperties = intPtr(len(properties))
		stats.ActiveProperties = intPtr(active)
	case isDeveloper:
		available, booked := 0, 0
		for _, u := range units {
			switch u.UnitStatus {
			case domain.UnitStatusAvailable:
				available++
			case domain.UnitStatusBooked, domain.UnitStatusSold:
				booked++
			}
		}
		stats.TotalProjects = intPtr(len(projects))
		stats.TotalUnits = intPtr(len(units))
		stats.AvailableUnits = intPtr(available)
		stats.BookedUnits = intPtr(booked)
	}

	names := [7]string{QueryLeads, QueryProperties, QueryProjects, QueryUnits, QueryDeals, QueryPendingTasks, QueryTodayAppointments}
	for i, f := range failed {
		if f {
			stats.FailedQueries = append(stats.FailedQueries, names[i])
		}
	}
	if len(stats.FailedQueries) > 0 {
		a.logger.Warn("dashboard computed with failed queries",
			zap.String("organization_id", org.ID),
			zap.Strings("failed_queries", stats.FailedQueries))
	}
	return stats, nil
}

// fetch builds one errgroup branch. A disabled branch leaves dst empty and
// sends nothing.
func fetch[T any](
	ctx context.Context,
	a *Aggregator,
	orgID, name string,
	enabled bool,
	dst *[]T,
	failed *bool,
	load func(context.Context, string) ([]T, error),
) func() error {
	return func() error {
		if !enabled {
			a.record(name, "skipped")
			return nil
		}
		qctx := ctx
		if a.queryTimeout > 0 {
			var cancel context.CancelFunc
			qctx, cancel = context.WithTimeout(ctx, a.queryTimeout)
			defer cancel()
		}
		rows, err := load(qctx, orgID)
		if err != nil {
			*failed = true
			a.record(name, "failed")
			a.logger.Warn("dashboard query failed",
				zap.String("query", name),
				zap.String("organization_id", orgID),
				zap.Error(fmt.Errorf("%w: %s: %v", domain.ErrQueryFailure, name, err)))
			return nil
		}
		*dst = rows
		a.record(name, "ok")
		return nil
	}
}

func (a *Aggregator) record(name, outcome string) {
	if a.metrics != nil {
		a.metrics.RecordQuery(name, outcome)
	}
}

// today returns [start of today, start of tomorrow) in the tenant time zone.
func (a *Aggregator) today() (time.Time, time.Time) {
	now := a.now().In(a.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.location)
	return start, start.AddDate(0, 0, 1)
}

func validateOrganization(org *domain.Organization) error {
	switch {
	case org == nil:
		return fmt.Errorf("%w: organization is nil", domain.ErrInvalidOrganization)
	case org.ID == "":
		return fmt.Errorf("%w: organization id is empty", domain.ErrInvalidOrganization)
	case !org.Type.Valid():
		return fmt.Errorf("%w: unknown organization type %q", domain.ErrInvalidOrganization, org.Type)
	}
	return nil
}
