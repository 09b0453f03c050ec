package dto

import (
	"shear/internal/domains/auditlog/model"
	"shear/shared"
	gDto "shear/shared/dto"
)

type AuditLogResponse struct {
	ID         string  `json:"id"`
	Actor      string  `json:"actor"`
	Action     string  `json:"action"`
	EntityType string  `json:"entity_type"`
	EntityID   *string `json:"entity_id,omitempty"`
	Detail     string  `json:"detail"`
	gDto.Metadata
}

func (r *AuditLogResponse) FromModel(model model.AuditLog) {
	r.ID = model.ID
	r.Actor = model.Actor
	r.Action = model.Action
	r.EntityType = model.EntityType
	r.EntityID = model.EntityID
	r.Detail = model.Detail
	r.Metadata.FromModel(model.Metadata)
}

type GetAuditLogsResponse struct {
	Logs      []AuditLogResponse `json:"logs"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetAuditLogsResponse) FromModels(models []model.AuditLog, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Logs = make([]AuditLogResponse, len(models))
	for i, mod := range models {
		r.Logs[i].FromModel(mod)
	}
}
