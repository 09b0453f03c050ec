package model

import (
	"time"

	"shear/shared/constant"
	"shear/shared/model"
)

const (
	TableName  = "appointments"
	EntityName = "appointment"

	FieldID             = "id"
	FieldCustomerID     = "customer_id"
	FieldStaffID        = "staff_id"
	FieldServiceID      = "service_id"
	FieldStartTime      = "start_time"
	FieldEndTime        = "end_time"
	FieldStatus         = "status"
	FieldPaymentStatus  = "payment_status"
	FieldIdempotencyKey = "idempotency_key"
)

type Appointment struct {
	ID             string    `db:"id"`
	CustomerID     string    `db:"customer_id"`
	StaffID        string    `db:"staff_id"`
	ServiceID      string    `db:"service_id"`
	StartTime      time.Time `db:"start_time"`
	EndTime        time.Time `db:"end_time"`
	Status         string    `db:"status"`
	PaymentStatus  string    `db:"payment_status"`
	PriceCents     int       `db:"price_cents"`
	Notes          string    `db:"notes"`
	CancelReason   string    `db:"cancel_reason"`
	IdempotencyKey string    `db:"idempotency_key"`
	model.Metadata
}

// IsActive reports whether the appointment still occupies its staff member's
// time. Cancelled and no-show appointments do not count toward overlaps.
func (a *Appointment) IsActive() bool {
	return a.Status != constant.StatusCancelled && a.Status != constant.StatusNoShow
}

// IsTerminal reports whether the appointment can never transition again.
func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case constant.StatusCompleted, constant.StatusCancelled, constant.StatusNoShow:
		return true
	}

	return false
}

// transitions encodes the lifecycle:
// pending -> confirmed -> {in_progress -> completed} | cancelled | no_show.
var transitions = map[string][]string{
	constant.StatusPending:    {constant.StatusConfirmed, constant.StatusCancelled, constant.StatusNoShow},
	constant.StatusConfirmed:  {constant.StatusInProgress, constant.StatusCancelled, constant.StatusNoShow},
	constant.StatusInProgress: {constant.StatusCompleted},
}

// CanTransition reports whether the status change is a legal lifecycle step.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case constant.StatusPending, constant.StatusConfirmed, constant.StatusInProgress,
		constant.StatusCompleted, constant.StatusCancelled, constant.StatusNoShow:
		return true
	}

	return false
}
