package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"shear/infras/otel"
	"shear/infras/postgres"
	"shear/internal/domains/catalog/model"
	"shear/shared/constant"
	gDto "shear/shared/dto"
	gRepo "shear/shared/repository"
)

type Service interface {
	Insert(ctx context.Context, model model.Service) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Service, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Service, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	GetQualifiedStaffIDs(ctx context.Context, serviceID string) ([]string, error)
	SetQualifiedStaff(ctx context.Context, serviceID string, staffIDs []string) error
	IsStaffQualified(ctx context.Context, serviceID, staffID string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Service]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Service {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Service](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) GetQualifiedStaffIDs(ctx context.Context, serviceID string) (res []string, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".GetQualifiedStaffIDs")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := "SELECT staff_id FROM service_staff WHERE service_id = $1 ORDER BY staff_id"

	if err = r.db.Read.SelectContext(ctx, &res, query, serviceID); err != nil {
		log.Error().Err(err).Str("serviceID", serviceID).Msg("failed to get qualified staff")

		return nil, fmt.Errorf("failed to get qualified staff: %w", err)
	}

	return res, nil
}

// SetQualifiedStaff replaces the qualification set for a service in one
// transaction so a partially applied roster is never observable.
func (r *repositoryImpl) SetQualifiedStaff(ctx context.Context, serviceID string, staffIDs []string) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".SetQualifiedStaff")
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

	if _, err = tx.ExecContext(ctx, "DELETE FROM service_staff WHERE service_id = $1", serviceID); err != nil {
		log.Error().Err(err).Str("serviceID", serviceID).Msg("failed to clear qualified staff")

		return fmt.Errorf("failed to clear qualified staff: %w", err)
	}

	for _, staffID := range staffIDs {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO service_staff (service_id, staff_id) VALUES ($1, $2)",
			serviceID, staffID,
		); err != nil {
			log.Error().Err(err).Str("serviceID", serviceID).Str("staffID", staffID).Msg("failed to assign staff to service")

			return fmt.Errorf("failed to assign staff to service: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *repositoryImpl) IsStaffQualified(ctx context.Context, serviceID, staffID string) (res bool, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".IsStaffQualified")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := "SELECT EXISTS (SELECT 1 FROM service_staff WHERE service_id = $1 AND staff_id = $2)"

	if err = r.db.Read.GetContext(ctx, &res, query, serviceID, staffID); err != nil {
		log.Error().Err(err).Str("serviceID", serviceID).Str("staffID", staffID).Msg("failed to check staff qualification")

		return false, fmt.Errorf("failed to check staff qualification: %w", err)
	}

	return res, nil
}
