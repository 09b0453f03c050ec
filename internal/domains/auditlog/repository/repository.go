package repository

import (
	"context"

	"shear/infras/otel"
	"shear/infras/postgres"
	"shear/internal/domains/auditlog/model"
	gDto "shear/shared/dto"
	gRepo "shear/shared/repository"
)

type AuditLog interface {
	Insert(ctx context.Context, model model.AuditLog) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.AuditLog, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.AuditLog]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) AuditLog {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.AuditLog](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
