package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"shear/infras/kafka"
	"shear/internal/domains/booking/model"
	"shear/shared/constant"
	"shear/shared/timezone"
)

const (
	eventBookingCreated       = "booking.created"
	eventBookingCancelled     = "booking.cancelled"
	eventBookingRescheduled   = "booking.rescheduled"
	eventBookingStatusChanged = "booking.status_changed"
)

type bookingEvent struct {
	Type          string    `json:"type"`
	AppointmentID string    `json:"appointment_id"`
	CustomerID    string    `json:"customer_id"`
	StaffID       string    `json:"staff_id"`
	ServiceID     string    `json:"service_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// publishEvent emits a lifecycle event for downstream consumers such as
// notification senders. Publishing is fire-and-forget: a broker outage never
// fails the booking operation that triggered the event.
func (s *serviceImpl) publishEvent(ctx context.Context, eventType string, appointment model.Appointment) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".publish")

	event := bookingEvent{
		Type:          eventType,
		AppointmentID: appointment.ID,
		CustomerID:    appointment.CustomerID,
		StaffID:       appointment.StaffID,
		ServiceID:     appointment.ServiceID,
		Start:         appointment.StartTime,
		End:           appointment.EndTime,
		Status:        appointment.Status,
		OccurredAt:    timezone.Now(),
	}

	go func() {
		defer scope.End()

		c := context.WithoutCancel(ctx)

		message := kafka.Message{
			Key:   appointment.ID,
			Value: event,
		}

		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topic, message); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("event", eventType).Str("appointmentID", appointment.ID).Msg("failed to publish booking event")
		}
	}()
}
