package dto

import (
	"github.com/google/uuid"

	"shear/internal/domains/catalog/model"
	"shear/shared"
	gDto "shear/shared/dto"
	gModel "shear/shared/model"
	"shear/shared/timezone"
)

type CreateServiceRequest struct {
	Name                 string   `json:"name" validate:"required,max=120"`
	Description          string   `json:"description" validate:"omitempty,max=2000"`
	Category             string   `json:"category" validate:"required,max=60"`
	DurationMinutes      int      `json:"duration_minutes" validate:"required,min=5,max=480"`
	PriceCents           int      `json:"price_cents" validate:"min=0"`
	Active               *bool    `json:"active" validate:"omitempty"`
	RequiresConsultation bool     `json:"requires_consultation"`
	MinAdvanceHours      *int     `json:"min_advance_hours" validate:"omitempty,min=0"`
	MaxAdvanceDays       *int     `json:"max_advance_days" validate:"omitempty,min=1"`
	StaffIDs             []string `json:"staff_ids" validate:"omitempty,dive,uuid"`
}

func (c *CreateServiceRequest) ToModel(user string) model.Service {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Service{
		ID:                   uuid.NewString(),
		Name:                 c.Name,
		Description:          c.Description,
		Category:             c.Category,
		DurationMinutes:      c.DurationMinutes,
		PriceCents:           c.PriceCents,
		Active:               active,
		RequiresConsultation: c.RequiresConsultation,
		MinAdvanceHours:      c.MinAdvanceHours,
		MaxAdvanceDays:       c.MaxAdvanceDays,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateServiceRequest struct {
	Name                 string   `db:"name" json:"name" validate:"omitempty,max=120"`
	Description          string   `db:"description" json:"description" validate:"omitempty,max=2000"`
	Category             string   `db:"category" json:"category" validate:"omitempty,max=60"`
	DurationMinutes      *int     `db:"duration_minutes" json:"duration_minutes" validate:"omitempty,min=5,max=480"`
	PriceCents           *int     `db:"price_cents" json:"price_cents" validate:"omitempty,min=0"`
	Active               *bool    `db:"active" json:"active" validate:"omitempty"`
	RequiresConsultation *bool    `db:"requires_consultation" json:"requires_consultation" validate:"omitempty"`
	MinAdvanceHours      *int     `db:"min_advance_hours" json:"min_advance_hours" validate:"omitempty,min=0"`
	MaxAdvanceDays       *int     `db:"max_advance_days" json:"max_advance_days" validate:"omitempty,min=1"`
	StaffIDs             []string `db:"-" json:"staff_ids" validate:"omitempty,dive,uuid"`
}

type ServiceResponse struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Category             string   `json:"category"`
	DurationMinutes      int      `json:"duration_minutes"`
	PriceCents           int      `json:"price_cents"`
	Active               bool     `json:"active"`
	RequiresConsultation bool     `json:"requires_consultation"`
	MinAdvanceHours      *int     `json:"min_advance_hours,omitempty"`
	MaxAdvanceDays       *int     `json:"max_advance_days,omitempty"`
	StaffIDs             []string `json:"staff_ids,omitempty"`
	gDto.Metadata
}

func (r *ServiceResponse) FromModel(model model.Service) {
	r.ID = model.ID
	r.Name = model.Name
	r.Description = model.Description
	r.Category = model.Category
	r.DurationMinutes = model.DurationMinutes
	r.PriceCents = model.PriceCents
	r.Active = model.Active
	r.RequiresConsultation = model.RequiresConsultation
	r.MinAdvanceHours = model.MinAdvanceHours
	r.MaxAdvanceDays = model.MaxAdvanceDays
	r.Metadata.FromModel(model.Metadata)
}

type GetServicesResponse struct {
	Services  []ServiceResponse `json:"services"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetServicesResponse) FromModels(models []model.Service, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Services = make([]ServiceResponse, len(models))
	for i, mod := range models {
		r.Services[i].FromModel(mod)
	}
}
