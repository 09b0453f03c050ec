package dto

import (
	"github.com/google/uuid"

	"shear/internal/domains/customer/model"
	"shear/shared"
	gDto "shear/shared/dto"
	gModel "shear/shared/model"
	"shear/shared/timezone"
)

type CreateCustomerRequest struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
	Notes string  `json:"notes" validate:"omitempty,max=2000"`
}

func (c *CreateCustomerRequest) ToModel(user string) model.Customer {
	return model.Customer{
		ID:    uuid.NewString(),
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
		Notes: c.Notes,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateCustomerRequest struct {
	Name  string  `db:"name" json:"name" validate:"omitempty,max=100"`
	Email *string `db:"email" json:"email" validate:"omitempty,email"`
	Phone *string `db:"phone" json:"phone" validate:"omitempty,max=20"`
	Notes string  `db:"notes" json:"notes" validate:"omitempty,max=2000"`
}

type CustomerResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Notes string  `json:"notes"`
	gDto.Metadata
}

func (r *CustomerResponse) FromModel(model model.Customer) {
	r.ID = model.ID
	r.Name = model.Name
	r.Email = model.Email
	r.Phone = model.Phone
	r.Notes = model.Notes
	r.Metadata.FromModel(model.Metadata)
}

type GetCustomersResponse struct {
	Customers []CustomerResponse `json:"customers"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetCustomersResponse) FromModels(models []model.Customer, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Customers = make([]CustomerResponse, len(models))
	for i, mod := range models {
		r.Customers[i].FromModel(mod)
	}
}
