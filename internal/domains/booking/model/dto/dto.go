package dto

import (
	"time"

	"shear/internal/domains/booking/model"
	"shear/shared"
	"shear/shared/constant"
	gDto "shear/shared/dto"
	"shear/shared/timezone"
)

// StaffAny requests that the scheduler pick any qualified staff member.
const StaffAny = "any"

type BookingRequest struct {
	CustomerID string    `json:"customer_id" validate:"required,uuid"`
	StaffID    string    `json:"staff_id" validate:"required"`
	ServiceID  string    `json:"service_id" validate:"required,uuid"`
	Start      time.Time `json:"start" validate:"required"`
	Notes      string    `json:"notes" validate:"omitempty,max=2000"`

	// IdempotencyKey comes from the Idempotency-Key request header, not the
	// body; the handler fills it in before the request reaches the service.
	IdempotencyKey string `json:"-"`
}

// AnyStaff reports whether the caller left staff selection to the scheduler.
func (r *BookingRequest) AnyStaff() bool {
	return r.StaffID == StaffAny || r.StaffID == constant.Empty
}

type AvailabilityQuery struct {
	ServiceID string `validate:"required,uuid"`
	StaffID   string `validate:"omitempty"`
	Date      string `validate:"required,dateonly"`
}

type AvailabilitySlot struct {
	StaffID   string    `json:"staff_id"`
	StaffName string    `json:"staff_name"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
}

type NextAvailable struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	StaffID string `json:"staff_id"`
}

type AvailabilityResponse struct {
	Slots         []AvailabilitySlot `json:"slots"`
	NextAvailable *NextAvailable     `json:"next_available,omitempty"`
}

// ValidationResult lists every violated rule, not just the first. StaffID is
// the staff member the checks ran against, which matters when the request
// asked for "any".
type ValidationResult struct {
	Valid         bool           `json:"valid"`
	StaffID       string         `json:"staff_id,omitempty"`
	Errors        []string       `json:"errors,omitempty"`
	NextAvailable *NextAvailable `json:"suggested_next_available,omitempty"`
}

type CancelRequest struct {
	Reason   string `json:"reason" validate:"omitempty,max=500"`
	Override bool   `json:"override"`
}

type CancelResponse struct {
	Success          bool `json:"success"`
	RefundAmountCent *int `json:"refund_amount_cents,omitempty"`
}

type RescheduleRequest struct {
	NewStart time.Time `json:"new_start" validate:"required"`
	Override bool      `json:"override"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AppointmentResponse struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id"`
	StaffID        string    `json:"staff_id"`
	ServiceID      string    `json:"service_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Status         string    `json:"status"`
	PaymentStatus  string    `json:"payment_status"`
	PriceCents     int       `json:"price_cents"`
	Notes          string    `json:"notes,omitempty"`
	CancelReason   string    `json:"cancel_reason,omitempty"`
	IdempotencyKey string    `json:"idempotency_key"`
	gDto.Metadata
}

func (r *AppointmentResponse) FromModel(model model.Appointment) {
	r.ID = model.ID
	r.CustomerID = model.CustomerID
	r.StaffID = model.StaffID
	r.ServiceID = model.ServiceID
	r.Start = model.StartTime
	r.End = model.EndTime
	r.Date, r.Time = timezone.WallClock(model.StartTime)
	r.Status = model.Status
	r.PaymentStatus = model.PaymentStatus
	r.PriceCents = model.PriceCents
	r.Notes = model.Notes
	r.CancelReason = model.CancelReason
	r.IdempotencyKey = model.IdempotencyKey
	r.Metadata.FromModel(model.Metadata)
}

type GetAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetAppointmentsResponse) FromModels(models []model.Appointment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Appointments = make([]AppointmentResponse, len(models))
	for i, mod := range models {
		r.Appointments[i].FromModel(mod)
	}
}
