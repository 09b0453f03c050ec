package model

import (
	"shear/shared/model"
)

const (
	TableName  = "services"
	EntityName = "service"

	FieldID       = "id"
	FieldName     = "name"
	FieldCategory = "category"
	FieldActive   = "active"
)

// Service is a bookable salon treatment. Advance-booking bounds are optional
// per-service overrides; nil means the salon-wide policy applies.
type Service struct {
	ID                   string `db:"id"`
	Name                 string `db:"name"`
	Description          string `db:"description"`
	Category             string `db:"category"`
	DurationMinutes      int    `db:"duration_minutes"`
	PriceCents           int    `db:"price_cents"`
	Active               bool   `db:"active"`
	RequiresConsultation bool   `db:"requires_consultation"`
	MinAdvanceHours      *int   `db:"min_advance_hours"`
	MaxAdvanceDays       *int   `db:"max_advance_days"`
	model.Metadata
}

// AdvanceBounds resolves the effective advance-booking bounds for this
// service, falling back to the salon-wide defaults.
func (s *Service) AdvanceBounds(defaultMinHours, defaultMaxDays int) (minHours, maxDays int) {
	minHours = defaultMinHours
	maxDays = defaultMaxDays

	if s.MinAdvanceHours != nil {
		minHours = *s.MinAdvanceHours
	}

	if s.MaxAdvanceDays != nil {
		maxDays = *s.MaxAdvanceDays
	}

	return minHours, maxDays
}
