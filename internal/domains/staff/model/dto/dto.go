package dto

import (
	"github.com/google/uuid"

	"shear/internal/domains/staff/model"
	"shear/shared"
	gDto "shear/shared/dto"
	gModel "shear/shared/model"
	"shear/shared/timezone"
)

type CreateStaffRequest struct {
	Name   string  `json:"name" validate:"required,max=100"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Phone  *string `json:"phone" validate:"omitempty,max=20"`
	Active *bool   `json:"active" validate:"omitempty"`
}

func (c *CreateStaffRequest) ToModel(user string) model.Staff {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Staff{
		ID:     uuid.NewString(),
		Name:   c.Name,
		Email:  c.Email,
		Phone:  c.Phone,
		Active: active,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateStaffRequest struct {
	Name   string  `db:"name" json:"name" validate:"omitempty,max=100"`
	Email  *string `db:"email" json:"email" validate:"omitempty,email"`
	Phone  *string `db:"phone" json:"phone" validate:"omitempty,max=20"`
	Active *bool   `db:"active" json:"active" validate:"omitempty"`
}

// ScheduleEntry sets one weekday's working window. Times use the salon's
// wall clock in HH:MM form; both are ignored when closed is set.
type ScheduleEntry struct {
	Weekday int    `json:"weekday" validate:"min=0,max=6"`
	Start   string `json:"start" validate:"omitempty,clock"`
	End     string `json:"end" validate:"omitempty,clock"`
	Closed  bool   `json:"closed"`
}

type SetScheduleRequest struct {
	Entries []ScheduleEntry `json:"entries" validate:"required,min=1,max=7,dive"`
}

type StaffResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Active bool    `json:"active"`
	gDto.Metadata
}

func (r *StaffResponse) FromModel(model model.Staff) {
	r.ID = model.ID
	r.Name = model.Name
	r.Email = model.Email
	r.Phone = model.Phone
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type GetStaffResponse struct {
	Staff     []StaffResponse `json:"staff"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetStaffResponse) FromModels(models []model.Staff, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Staff = make([]StaffResponse, len(models))
	for i, mod := range models {
		r.Staff[i].FromModel(mod)
	}
}

type ScheduleResponse struct {
	Weekday int    `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Closed  bool   `json:"closed"`
}

type GetScheduleResponse struct {
	StaffID string             `json:"staff_id"`
	Entries []ScheduleResponse `json:"entries"`
}

func (r *GetScheduleResponse) FromModels(staffID string, models []model.Schedule) {
	r.StaffID = staffID

	r.Entries = make([]ScheduleResponse, len(models))
	for i, mod := range models {
		r.Entries[i] = ScheduleResponse{
			Weekday: mod.Weekday,
			Start:   timezone.ClockOf(mod.StartMinutes),
			End:     timezone.ClockOf(mod.EndMinutes),
			Closed:  mod.Closed,
		}
	}
}
