package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"shear/infras/otel"
	"shear/infras/postgres"
	"shear/internal/domains/booking/model"
	"shear/shared/constant"
	gDto "shear/shared/dto"
	"shear/shared/failure"
	gRepo "shear/shared/repository"
	"shear/shared/timezone"
)

// ErrIdempotencyReplay reports that an insert lost the race on the
// idempotency key: another request with the same key already created the
// appointment. The caller should fetch and return the existing row.
var ErrIdempotencyReplay = errors.New("idempotency key already used")

type Appointment interface {
	Insert(ctx context.Context, model model.Appointment) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Appointment, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Appointment, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	FindOverlapping(ctx context.Context, staffID string, start, end time.Time, buffer time.Duration, excludeID string) ([]model.Appointment, error)
	FindByIdempotencyKey(ctx context.Context, key string) (model.Appointment, bool, error)
	UpdateStatus(ctx context.Context, id, fromStatus, status, cancelReason, user string) error
	UpdateInterval(ctx context.Context, id string, start, end time.Time, user string) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Appointment]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Appointment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Appointment](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// Insert persists a new appointment. The overlap exclusion constraint is the
// source of truth for double-booking: losing a race against a concurrent
// insert surfaces here as SQLSTATE 23P01 and is returned as a conflict
// failure, never as an internal error.
func (r *repositoryImpl) Insert(ctx context.Context, appointment model.Appointment) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.Insert")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := `INSERT INTO appointments
			(id, customer_id, staff_id, service_id, start_time, end_time, status, payment_status,
			 price_cents, notes, cancel_reason, idempotency_key, created_at, modified_at, created_by, modified_by)
		VALUES
			(:id, :customer_id, :staff_id, :service_id, :start_time, :end_time, :status, :payment_status,
			 :price_cents, :notes, :cancel_reason, :idempotency_key, :created_at, :modified_at, :created_by, :modified_by)`
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err = r.db.Write.NamedExecContext(ctx, query, appointment); err != nil {
		return r.mapWriteError(err, appointment.StaffID)
	}

	return nil
}

func (r *repositoryImpl) FindOverlapping(ctx context.Context, staffID string, start, end time.Time, buffer time.Duration, excludeID string) (res []model.Appointment, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.FindOverlapping")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := `SELECT * FROM appointments
		WHERE staff_id = $1
		  AND status NOT IN ($2, $3)
		  AND start_time < $4
		  AND end_time > $5
		  AND ($6 = '' OR id::text <> $6)
		ORDER BY start_time`

	err = r.db.Read.SelectContext(ctx, &res, query,
		staffID,
		constant.StatusCancelled,
		constant.StatusNoShow,
		end.Add(buffer),
		start.Add(-buffer),
		excludeID,
	)
	if err != nil {
		log.Error().Err(err).Str("staffID", staffID).Msg("failed to find overlapping appointments")

		return nil, fmt.Errorf("failed to find overlapping appointments: %w", err)
	}

	return res, nil
}

func (r *repositoryImpl) FindByIdempotencyKey(ctx context.Context, key string) (res model.Appointment, found bool, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.FindByIdempotencyKey")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := "SELECT * FROM appointments WHERE idempotency_key = $1"

	err = r.db.Read.GetContext(ctx, &res, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return res, false, nil
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to find appointment by idempotency key")

		return res, false, fmt.Errorf("failed to find appointment by idempotency key: %w", err)
	}

	return res, true, nil
}

// UpdateStatus applies a lifecycle transition as a compare-and-set: the row
// is only updated while it still holds fromStatus, so a concurrent transition
// between the caller's read and this write is never silently overwritten.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, id, fromStatus, status, cancelReason, user string) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.UpdateStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := `UPDATE appointments
		SET status = $3, cancel_reason = $4, modified_at = $5, modified_by = $6
		WHERE id = $1 AND status = $2`
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := r.db.Write.ExecContext(ctx, query, id, fromStatus, status, cancelReason, timezone.Now(), user)
	if err != nil {
		log.Error().Err(err).Str("id", id).Str("status", status).Msg("failed to update appointment status")

		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to read affected rows for status update")

		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	if affected == 0 {
		log.Warn().Str("id", id).Str("fromStatus", fromStatus).Str("status", status).Msg("appointment status update lost transition race")

		return failure.Conflict("the appointment was updated concurrently") // nolint:wrapcheck
	}

	return nil
}

// UpdateInterval moves an appointment in place, keeping its id and payment
// history. The exclusion constraint re-checks the new interval; a lost race
// comes back as a conflict failure exactly as on insert.
func (r *repositoryImpl) UpdateInterval(ctx context.Context, id string, start, end time.Time, user string) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.UpdateInterval")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := `UPDATE appointments
		SET start_time = $2, end_time = $3, modified_at = $4, modified_by = $5
		WHERE id = $1`
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err = r.db.Write.ExecContext(ctx, query, id, start, end, timezone.Now(), user); err != nil {
		return r.mapWriteError(err, constant.Empty)
	}

	return nil
}

func (r *repositoryImpl) mapWriteError(err error, staffID string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		log.Error().Err(err).Msg("appointment write failed")

		return fmt.Errorf("appointment write failed: %w", err)
	}

	switch string(pqErr.Code) {
	case constant.PqErrorCodeExclusionViolation:
		log.Warn().Str("staffID", staffID).Msg("appointment write lost overlap race")

		return failure.Conflict("the requested time slot is no longer available") // nolint:wrapcheck
	case constant.PqErrorCodeUniqueViolation:
		if pqErr.Constraint == "appointments_idempotency_key_unique" {
			return ErrIdempotencyReplay
		}
	case constant.PqErrorCodeFkViolation:
		return failure.BadRequestFromString("referenced customer, staff or service does not exist") // nolint:wrapcheck
	}

	log.Error().Err(err).Msg("appointment write failed")

	return fmt.Errorf("appointment write failed: %w", err)
}
