package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"shear/infras/otel"
	"shear/internal/domains/auditlog/model"
	"shear/internal/domains/auditlog/model/dto"
	"shear/internal/domains/auditlog/repository"
	"shear/shared/constant"
	gDto "shear/shared/dto"
	gModel "shear/shared/model"
	"shear/shared/timezone"
)

type AuditLog interface {
	Record(ctx context.Context, action, entityType, entityID, detail string)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAuditLogsResponse, error)
}

type serviceImpl struct {
	repo repository.AuditLog
	otel otel.Otel
}

func New(repo repository.AuditLog, otel otel.Otel) AuditLog {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

// Record writes an audit entry. The trail is best-effort: a failed write is
// logged but never fails the operation being audited.
func (s *serviceImpl) Record(ctx context.Context, action, entityType, entityID, detail string) {
	actor, _ := ctx.Value(constant.ContextKeyUserID).(string)

	entry := model.AuditLog{
		ID:         uuid.NewString(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		Detail:     detail,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  actor,
			ModifiedBy: actor,
		},
	}

	if entityID != constant.Empty {
		entry.EntityID = &entityID
	}

	if err := s.repo.Insert(context.WithoutCancel(ctx), entry); err != nil {
		log.Error().Err(err).Str("action", action).Str("entityID", entityID).Msg("failed to record audit log")
	}
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAuditLogsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count audit logs")

		return res, fmt.Errorf("failed to count audit logs: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get audit logs")

		return res, fmt.Errorf("failed to get audit logs: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}
