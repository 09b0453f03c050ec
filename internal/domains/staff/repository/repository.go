package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"shear/infras/otel"
	"shear/infras/postgres"
	"shear/internal/domains/staff/model"
	"shear/shared/constant"
	gDto "shear/shared/dto"
	gRepo "shear/shared/repository"
)

type Staff interface {
	Insert(ctx context.Context, model model.Staff) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Staff, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Staff, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	GetByIDs(ctx context.Context, ids []string) ([]model.Staff, error)
	GetSchedules(ctx context.Context, staffID string) ([]model.Schedule, error)
	GetScheduleForWeekday(ctx context.Context, staffID string, weekday int) (model.Schedule, bool, error)
	SetSchedules(ctx context.Context, staffID string, schedules []model.Schedule) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Staff]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Staff {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Staff](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) GetByIDs(ctx context.Context, ids []string) (res []model.Staff, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".GetByIDs")
	defer scope.End()
	defer scope.TraceIfError(err)

	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT * FROM staff WHERE id IN (?) ORDER BY name", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build staff query: %w", err)
	}

	query = r.db.Read.Rebind(query)
	if err = r.db.Read.SelectContext(ctx, &res, query, args...); err != nil {
		log.Error().Err(err).Msg("failed to get staff by ids")

		return nil, fmt.Errorf("failed to get staff by ids: %w", err)
	}

	return res, nil
}

func (r *repositoryImpl) GetSchedules(ctx context.Context, staffID string) (res []model.Schedule, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".GetSchedules")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := "SELECT * FROM staff_schedules WHERE staff_id = $1 ORDER BY weekday"

	if err = r.db.Read.SelectContext(ctx, &res, query, staffID); err != nil {
		log.Error().Err(err).Str("staffID", staffID).Msg("failed to get staff schedules")

		return nil, fmt.Errorf("failed to get staff schedules: %w", err)
	}

	return res, nil
}

// GetScheduleForWeekday returns the working window for one weekday. The bool
// result is false when no row exists; a missing row means the staff member
// does not work that day.
func (r *repositoryImpl) GetScheduleForWeekday(ctx context.Context, staffID string, weekday int) (res model.Schedule, found bool, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".GetScheduleForWeekday")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := "SELECT * FROM staff_schedules WHERE staff_id = $1 AND weekday = $2"

	err = r.db.Read.GetContext(ctx, &res, query, staffID, weekday)
	if errors.Is(err, sql.ErrNoRows) {
		return res, false, nil
	}

	if err != nil {
		log.Error().Err(err).Str("staffID", staffID).Int("weekday", weekday).Msg("failed to get staff schedule")

		return res, false, fmt.Errorf("failed to get staff schedule: %w", err)
	}

	return res, true, nil
}

// SetSchedules upserts the given weekday windows in one transaction. Rows for
// weekdays not present in the input are left untouched.
func (r *repositoryImpl) SetSchedules(ctx context.Context, staffID string, schedules []model.Schedule) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".SetSchedules")
	defer scope.End()
	defer scope.TraceIfError(err)

	tx, err := r.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `INSERT INTO staff_schedules
			(id, staff_id, weekday, start_minutes, end_minutes, closed, created_at, modified_at, created_by, modified_by)
		VALUES
			(:id, :staff_id, :weekday, :start_minutes, :end_minutes, :closed, :created_at, :modified_at, :created_by, :modified_by)
		ON CONFLICT (staff_id, weekday) DO UPDATE SET
			start_minutes = EXCLUDED.start_minutes,
			end_minutes = EXCLUDED.end_minutes,
			closed = EXCLUDED.closed,
			modified_at = EXCLUDED.modified_at,
			modified_by = EXCLUDED.modified_by`

	for _, schedule := range schedules {
		schedule.StaffID = staffID

		if _, err = tx.NamedExecContext(ctx, query, schedule); err != nil {
			log.Error().Err(err).Str("staffID", staffID).Int("weekday", schedule.Weekday).Msg("failed to upsert staff schedule")

			return fmt.Errorf("failed to upsert staff schedule: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
