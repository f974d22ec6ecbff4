package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/propcrm/crm-service/internal/domain"
)

// RecordRepository reads the tenant-scoped record sets the dashboard counts.
// Every query filters on organization_id; status predicates beyond the coarse
// filters below are applied by the caller.
type RecordRepository interface {
	ListLeads(ctx context.Context, orgID string) ([]domain.Lead, error)
	ListProperties(ctx context.Context, orgID string) ([]domain.Property, error)
	ListProjects(ctx context.Context, orgID string) ([]domain.Project, error)
	ListUnits(ctx context.Context, orgID string) ([]domain.Unit, error)
	ListDeals(ctx context.Context, orgID string) ([]domain.Deal, error)
	ListTasksByStatus(ctx context.Context, orgID, status string) ([]domain.Task, error)
	ListAppointmentsBetween(ctx context.Context, orgID string, from, to time.Time) ([]domain.Appointment, error)
}

type recordRepository struct {
	pool DB
}

// NewRecordRepository builds the repository.
func NewRecordRepository(pool DB) RecordRepository {
	return &recordRepository{pool: pool}
}

func (r *recordRepository) ListLeads(ctx context.Context, orgID string) ([]domain.Lead, error) {
	const query = `SELECT status FROM leads WHERE organization_id=$1`
	return list(ctx, r.pool, query, func(row pgx.CollectableRow) (domain.Lead, error) {
		var l domain.Lead
		err := row.Scan(&l.Status)
		return l, err
	}, orgID)
}

func (r *recordRepository) ListProperties(ctx context.Context, orgID string) ([]domain.Property, error) {
	const query = `SELECT status FROM properties WHERE organization_id=$1`
	return list(ctx, r.pool, query, func(row pgx.CollectableRow) (domain.Property, error) {
		var p domain.Property
		err := row.Scan(&p.Status)
		return p, err
	}, orgID)
}

func (r *recordRepository) ListProjects(ctx context.Context, orgID string) ([]domain.Project, error) {
	const query = `SELECT project_id, project_name FROM projects WHERE organization_id=$1`
	return list(ctx, r.pool, query, func(row pgx.CollectableRow) (domain.Project, error) {
		var p domain.Project
		err := row.Scan(&p.ID, &p.Name)
		return p, err
	}, orgID)
}

func (r *recordRepository) ListUnits(ctx context.Context, orgID string) ([]domain.Unit, error) {
	const query = `SELECT unit_status FROM project_units WHERE organization_id=$1`
	return list(ctx, r.pool, query, func(row pgx.CollectableRow) (domain.Unit, error) {
		var u domain.Unit
		err := row.Scan(&u.UnitStatus)
		return u, err
	}, orgID)
}

func (r *recordRepository) ListDeals(ctx context.Context, orgID string) ([]domain.Deal, error) {
	const query = `SELECT deal_value, pipeline_stage FROM deals WHERE organization_id=$1`
	return list(ctx, r.pool, query, func(row pgx.CollectableRow) (domain.Deal, error) {
		var d domain.Deal
		err := row.Scan(&d.DealValue, &d.PipelineStage)
		return d, err
	}, orgID)
}

func (r *recordRepository) ListTasksByStatus(ctx context.Context, orgID, status string) ([]domain.Task, error) {
	const query = `SELECT status FROM tasks WHERE organization_id=$1 AND status=$2`
	return list(ctx, r.pool, query, func(row pgx.CollectableRow) (domain.Task, error) {
		var t domain.Task
		err := row.Scan(&t.Status)
		return t, err
	}, orgID, status)
}

func (r *recordRepository) ListAppointmentsBetween(ctx context.Context, orgID string, from, to time.Time) ([]domain.Appointment, error) {
	const query = `
        SELECT appointment_id, start_datetime FROM appointments
        WHERE organization_id=$1 AND start_datetime >= $2 AND start_datetime < $3`
	return list(ctx, r.pool, query, func(row pgx.CollectableRow) (domain.Appointment, error) {
		var a domain.Appointment
		err := row.Scan(&a.ID, &a.StartDatetime)
		return a, err
	}, orgID, from, to)
}

func list[T any](ctx context.Context, db DB, query string, scan pgx.RowToFunc[T], args ...any) ([]T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scan)
}
