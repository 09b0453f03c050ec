package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"shear/config"
	"shear/infras/kafka"
	"shear/infras/otel"
	auditModel "shear/internal/domains/auditlog/model"
	auditService "shear/internal/domains/auditlog/service"
	"shear/internal/domains/booking/model"
	"shear/internal/domains/booking/model/dto"
	"shear/internal/domains/booking/repository"
	catalogRepository "shear/internal/domains/catalog/repository"
	customerRepository "shear/internal/domains/customer/repository"
	staffRepository "shear/internal/domains/staff/repository"
	"shear/shared"
	"shear/shared/constant"
	gDto "shear/shared/dto"
	"shear/shared/failure"
	gModel "shear/shared/model"
	"shear/shared/timezone"
)

type Booking interface {
	Availability(ctx context.Context, req dto.AvailabilityQuery) (dto.AvailabilityResponse, error)
	Validate(ctx context.Context, req dto.BookingRequest) (dto.ValidationResult, error)
	Create(ctx context.Context, req dto.BookingRequest) (dto.AppointmentResponse, error)
	Cancel(ctx context.Context, req dto.CancelRequest, id string) (dto.CancelResponse, error)
	Reschedule(ctx context.Context, req dto.RescheduleRequest, id string) (dto.AppointmentResponse, error)
	SetStatus(ctx context.Context, req dto.UpdateStatusRequest, id string) error
	Get(ctx context.Context, id string) (dto.AppointmentResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAppointmentsResponse, error)
}

type serviceImpl struct {
	repo         repository.Appointment
	catalogRepo  catalogRepository.Service
	staffRepo    staffRepository.Staff
	customerRepo customerRepository.Customer
	audit        auditService.AuditLog
	kafka        kafka.Client
	cfg          *config.Config
	otel         otel.Otel
}

func New(
	repo repository.Appointment,
	catalogRepo catalogRepository.Service,
	staffRepo staffRepository.Staff,
	customerRepo customerRepository.Customer,
	audit auditService.AuditLog,
	kafka kafka.Client,
	cfg *config.Config,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:         repo,
		catalogRepo:  catalogRepo,
		staffRepo:    staffRepo,
		customerRepo: customerRepo,
		audit:        audit,
		kafka:        kafka,
		cfg:          cfg,
		otel:         otel,
	}
}

// Create books an appointment. Validation runs immediately before the insert,
// but the overlap exclusion constraint in the store is what actually closes
// the race between two concurrent creates for the same slot; a lost race is
// returned as a conflict failure. Replaying a request with an already-seen
// idempotency key returns the original appointment without creating another.
func (s *serviceImpl) Create(ctx context.Context, req dto.BookingRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	key := req.IdempotencyKey
	if key == constant.Empty {
		key = uuid.NewString()
	}

	existing, found, err := s.repo.FindByIdempotencyKey(ctx, key)
	if err != nil {
		return res, failure.Unavailable("appointment store is unavailable") // nolint:wrapcheck
	}

	if found {
		log.Info().Str("idempotencyKey", key).Str("appointmentID", existing.ID).Msg("idempotent create replay")

		res.FromModel(existing)

		return res, nil
	}

	result, svc, err := s.validateRequest(ctx, req, constant.Empty)
	if err != nil {
		return res, err
	}

	if !result.Valid {
		return res, failure.ValidationFailed("booking request failed validation", result) // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	status := constant.StatusPending
	if s.cfg.Booking.AutoConfirm {
		status = constant.StatusConfirmed
	}

	appointment := model.Appointment{
		ID:             uuid.NewString(),
		CustomerID:     req.CustomerID,
		StaffID:        result.StaffID,
		ServiceID:      req.ServiceID,
		StartTime:      req.Start,
		EndTime:        req.Start.Add(time.Duration(svc.DurationMinutes) * time.Minute),
		Status:         status,
		PaymentStatus:  constant.PaymentStatusUnpaid,
		PriceCents:     svc.PriceCents,
		Notes:          req.Notes,
		IdempotencyKey: key,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}

	err = s.repo.Insert(ctx, appointment)
	if errors.Is(err, repository.ErrIdempotencyReplay) {
		// A concurrent request with the same key won the insert; both callers
		// must observe the same appointment.
		existing, found, ferr := s.repo.FindByIdempotencyKey(ctx, key)
		if ferr != nil || !found {
			return res, failure.Unavailable("appointment store is unavailable") // nolint:wrapcheck
		}

		res.FromModel(existing)

		return res, nil
	}

	if err != nil {
		return res, err
	}

	s.audit.Record(ctx, auditModel.ActionBookingCreated, model.EntityName, appointment.ID,
		fmt.Sprintf("booked %s with staff %s at %s", svc.Name, appointment.StaffID, appointment.StartTime.Format(time.RFC3339)))
	s.publishEvent(ctx, eventBookingCreated, appointment)

	res.FromModel(appointment)

	return res, nil
}

// Cancel transitions a pending or confirmed appointment to cancelled.
// Cancelling an already-cancelled appointment is a no-op success. Inside the
// notice window the call fails with a policy violation unless a privileged
// caller sets the override flag.
func (s *serviceImpl) Cancel(ctx context.Context, req dto.CancelRequest, id string) (res dto.CancelResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	appointment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return res, failure.Unavailable("appointment store is unavailable") // nolint:wrapcheck
	}

	if appointment.ID == constant.Empty {
		return res, failure.NotFound("appointment not found") // nolint:wrapcheck
	}

	if appointment.Status == constant.StatusCancelled {
		res.Success = true

		return res, nil
	}

	if appointment.Status != constant.StatusPending && appointment.Status != constant.StatusConfirmed {
		return res, failure.PolicyViolation(fmt.Sprintf("appointment in status %q cannot be cancelled", appointment.Status)) // nolint:wrapcheck
	}

	now := timezone.Now()
	notice := time.Duration(s.cfg.Booking.CancelNoticeHours) * time.Hour
	noticeMet := !appointment.StartTime.Before(now.Add(notice))

	if !noticeMet && !s.overrideAllowed(ctx, req.Override) {
		return res, failure.PolicyViolation(fmt.Sprintf("cancellations require at least %d hours notice", s.cfg.Booking.CancelNoticeHours)) // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err = s.repo.UpdateStatus(ctx, id, appointment.Status, constant.StatusCancelled, req.Reason, user); err != nil {
		if failure.IsKind(err, failure.KindConflict) {
			return res, err
		}

		return res, failure.Unavailable("appointment store is unavailable") // nolint:wrapcheck
	}

	res.Success = true

	// Full refund only when the cancellation respected the notice window.
	if appointment.PaymentStatus == constant.PaymentStatusPaid && noticeMet {
		refund := appointment.PriceCents
		res.RefundAmountCent = &refund
	}

	appointment.Status = constant.StatusCancelled
	appointment.CancelReason = req.Reason

	s.audit.Record(ctx, auditModel.ActionBookingCancelled, model.EntityName, id, req.Reason)
	s.publishEvent(ctx, eventBookingCancelled, appointment)

	return res, nil
}

// Reschedule moves an appointment to a new start by updating the row in
// place, preserving its id, idempotency key and payment history. The new
// interval is validated against the same rules as a fresh booking, excluding
// the appointment itself from the overlap check.
func (s *serviceImpl) Reschedule(ctx context.Context, req dto.RescheduleRequest, id string) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reschedule")
	defer scope.End()
	defer scope.TraceIfError(err)

	appointment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return res, failure.Unavailable("appointment store is unavailable") // nolint:wrapcheck
	}

	if appointment.ID == constant.Empty {
		return res, failure.NotFound("appointment not found") // nolint:wrapcheck
	}

	if appointment.Status != constant.StatusPending && appointment.Status != constant.StatusConfirmed {
		return res, failure.PolicyViolation(fmt.Sprintf("appointment in status %q cannot be rescheduled", appointment.Status)) // nolint:wrapcheck
	}

	now := timezone.Now()
	notice := time.Duration(s.cfg.Booking.RescheduleNoticeHours) * time.Hour

	if appointment.StartTime.Before(now.Add(notice)) && !s.overrideAllowed(ctx, req.Override) {
		return res, failure.PolicyViolation(fmt.Sprintf("reschedules require at least %d hours notice", s.cfg.Booking.RescheduleNoticeHours)) // nolint:wrapcheck
	}

	result, svc, err := s.validateRequest(ctx, dto.BookingRequest{
		CustomerID: appointment.CustomerID,
		StaffID:    appointment.StaffID,
		ServiceID:  appointment.ServiceID,
		Start:      req.NewStart,
	}, appointment.ID)
	if err != nil {
		return res, err
	}

	if !result.Valid {
		return res, failure.ValidationFailed("reschedule request failed validation", result) // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	newEnd := req.NewStart.Add(time.Duration(svc.DurationMinutes) * time.Minute)

	if err = s.repo.UpdateInterval(ctx, id, req.NewStart, newEnd, user); err != nil {
		return res, err
	}

	oldStart := appointment.StartTime
	appointment.StartTime = req.NewStart
	appointment.EndTime = newEnd

	s.audit.Record(ctx, auditModel.ActionBookingRescheduled, model.EntityName, id,
		fmt.Sprintf("moved from %s to %s", oldStart.Format(time.RFC3339), req.NewStart.Format(time.RFC3339)))
	s.publishEvent(ctx, eventBookingRescheduled, appointment)

	res.FromModel(appointment)

	return res, nil
}

// SetStatus applies an explicit lifecycle transition, e.g. marking an
// appointment in progress, completed or no-show from the admin dashboard.
func (s *serviceImpl) SetStatus(ctx context.Context, req dto.UpdateStatusRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !model.ValidStatus(req.Status) {
		return failure.BadRequestFromString(fmt.Sprintf("unknown status %q", req.Status)) // nolint:wrapcheck
	}

	appointment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return failure.Unavailable("appointment store is unavailable") // nolint:wrapcheck
	}

	if appointment.ID == constant.Empty {
		return failure.NotFound("appointment not found") // nolint:wrapcheck
	}

	if appointment.Status == req.Status {
		return nil
	}

	if !model.CanTransition(appointment.Status, req.Status) {
		return failure.PolicyViolation(fmt.Sprintf("cannot transition appointment from %q to %q", appointment.Status, req.Status)) // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err = s.repo.UpdateStatus(ctx, id, appointment.Status, req.Status, appointment.CancelReason, user); err != nil {
		if failure.IsKind(err, failure.KindConflict) {
			return err // nolint:wrapcheck
		}

		return failure.Unavailable("appointment store is unavailable") // nolint:wrapcheck
	}

	appointment.Status = req.Status

	s.audit.Record(ctx, auditModel.ActionStatusChanged, model.EntityName, id, req.Status)
	s.publishEvent(ctx, eventBookingStatusChanged, appointment)

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	appointment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointment")

		return res, fmt.Errorf("failed to get appointment: %w", err)
	}

	if appointment.ID == constant.Empty {
		return res, failure.NotFound("appointment not found") // nolint:wrapcheck
	}

	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAppointmentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count appointments")

		return res, fmt.Errorf("failed to count appointments: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointments")

		return res, fmt.Errorf("failed to get appointments: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

// overrideAllowed honors the override flag only for privileged callers, so a
// customer cannot skip the notice policy by flipping a request field.
func (s *serviceImpl) overrideAllowed(ctx context.Context, override bool) bool {
	if !override {
		return false
	}

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return role == constant.RoleAdmin || role == constant.RoleStaff
}
