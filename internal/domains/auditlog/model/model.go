package model

import "shear/shared/model"

const (
	TableName  = "audit_logs"
	EntityName = "audit_log"

	FieldID         = "id"
	FieldActor      = "actor"
	FieldAction     = "action"
	FieldEntityType = "entity_type"
	FieldEntityID   = "entity_id"
)

const (
	ActionBookingCreated     = "booking_created"
	ActionBookingCancelled   = "booking_cancelled"
	ActionBookingRescheduled = "booking_rescheduled"
	ActionStatusChanged      = "status_changed"
)

type AuditLog struct {
	ID         string  `db:"id"`
	Actor      string  `db:"actor"`
	Action     string  `db:"action"`
	EntityType string  `db:"entity_type"`
	EntityID   *string `db:"entity_id"`
	Detail     string  `db:"detail"`
	model.Metadata
}
