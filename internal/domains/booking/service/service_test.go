package service_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"shear/config"
	"shear/infras/kafka"
	"shear/infras/otel/mocks"
	auditMocks "shear/internal/domains/auditlog/mocks"
	bookingMocks "shear/internal/domains/booking/mocks"
	"shear/internal/domains/booking/model"
	"shear/internal/domains/booking/model/dto"
	"shear/internal/domains/booking/repository"
	"shear/internal/domains/booking/service"
	catalogMocks "shear/internal/domains/catalog/mocks"
	catalogModel "shear/internal/domains/catalog/model"
	customerMocks "shear/internal/domains/customer/mocks"
	staffMocks "shear/internal/domains/staff/mocks"
	staffModel "shear/internal/domains/staff/model"
	"shear/shared/constant"
	"shear/shared/failure"
	"shear/shared/timezone"
)

const (
	testCustomerID = "8d7f8a3e-14a8-4dbb-9f52-6f4f2555d901"
	testStaffID    = "3c52cf9a-7a94-4b38-a62e-1dfe1c2da9b2"
	testServiceID  = "b6a7289a-45e5-4f0e-a8b1-b0e4033cc052"
)

// stubKafka stands in for the broker; booking events are published from a
// goroutine, so a gomock here would race with controller cleanup.
type stubKafka struct {
	mu   sync.Mutex
	sent []kafka.Message
}

func (s *stubKafka) SendMessages(_ context.Context, _ string, messages ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, messages...)

	return nil
}

type testDeps struct {
	repo     *bookingMocks.MockAppointment
	catalog  *catalogMocks.MockService
	staff    *staffMocks.MockStaff
	customer *customerMocks.MockCustomer
	audit    *auditMocks.MockAuditLog
	kafka    *stubKafka
	cfg      *config.Config
}

func newBookingService(t *testing.T) (service.Booking, *testDeps) {
	t.Helper()

	timezone.SetLocation(time.UTC)

	ctrl := gomock.NewController(t)

	deps := &testDeps{
		repo:     bookingMocks.NewMockAppointment(ctrl),
		catalog:  catalogMocks.NewMockService(ctrl),
		staff:    staffMocks.NewMockStaff(ctrl),
		customer: customerMocks.NewMockCustomer(ctrl),
		audit:    auditMocks.NewMockAuditLog(ctrl),
		kafka:    &stubKafka{},
		cfg:      &config.Config{},
	}

	deps.cfg.Booking.SlotStepMinutes = 15
	deps.cfg.Booking.BufferMinutes = 10
	deps.cfg.Booking.MinAdvanceHours = 2
	deps.cfg.Booking.MaxAdvanceDays = 60
	deps.cfg.Booking.CancelNoticeHours = 24
	deps.cfg.Booking.RescheduleNoticeHours = 4
	deps.cfg.Booking.NextAvailableMaxDays = 7
	deps.cfg.Kafka.Topic = "booking-events"

	svc := service.New(deps.repo, deps.catalog, deps.staff, deps.customer, deps.audit, deps.kafka, deps.cfg, mocks.NewOtel())

	return svc, deps
}

func testService() catalogModel.Service {
	return catalogModel.Service{
		ID:              testServiceID,
		Name:            "Cut & Style",
		DurationMinutes: 45,
		PriceCents:      4500,
		Active:          true,
	}
}

func testStaff() staffModel.Staff {
	return staffModel.Staff{
		ID:     testStaffID,
		Name:   "Dana",
		Active: true,
	}
}

// 09:00-18:00, every weekday.
func testSchedule() staffModel.Schedule {
	return staffModel.Schedule{
		ID:           "sched-1",
		StaffID:      testStaffID,
		StartMinutes: 9 * 60,
		EndMinutes:   18 * 60,
	}
}

// futureDay returns midnight of a day comfortably past the advance-booking
// minimum.
func futureDay() time.Time {
	return timezone.InstantAt(timezone.Now().AddDate(0, 0, 7), 0)
}

// expectDirectory wires the read-only directory lookups every validation
// pass makes.
func expectDirectory(deps *testDeps) {
	deps.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testService(), nil).AnyTimes()
	deps.catalog.EXPECT().IsStaffQualified(gomock.Any(), testServiceID, testStaffID).Return(true, nil).AnyTimes()
	deps.staff.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testStaff(), nil).AnyTimes()
	deps.staff.EXPECT().GetScheduleForWeekday(gomock.Any(), testStaffID, gomock.Any()).Return(testSchedule(), true, nil).AnyTimes()
	deps.customer.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
}

func bookingRequest(start time.Time, key string) dto.BookingRequest {
	return dto.BookingRequest{
		CustomerID:     testCustomerID,
		StaffID:        testStaffID,
		ServiceID:      testServiceID,
		Start:          start,
		IdempotencyKey: key,
	}
}

func TestBookingService_Create_IdempotentReplay(t *testing.T) {
	svc, deps := newBookingService(t)

	existing := model.Appointment{
		ID:             "appt-1",
		StaffID:        testStaffID,
		Status:         constant.StatusPending,
		IdempotencyKey: "key-1",
	}

	deps.repo.EXPECT().
		FindByIdempotencyKey(gomock.Any(), "key-1").
		Return(existing, true, nil)

	res, err := svc.Create(context.Background(), bookingRequest(futureDay().Add(11*time.Hour), "key-1"))

	require.NoError(t, err)
	assert.Equal(t, "appt-1", res.ID)
}

func TestBookingService_Create_IdempotencyRaceReturnsWinner(t *testing.T) {
	svc, deps := newBookingService(t)
	expectDirectory(deps)

	start := futureDay().Add(11 * time.Hour)
	winner := model.Appointment{ID: "appt-winner", IdempotencyKey: "key-1"}

	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	gomock.InOrder(
		deps.repo.EXPECT().
			FindByIdempotencyKey(gomock.Any(), "key-1").
			Return(model.Appointment{}, false, nil),
		deps.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(repository.ErrIdempotencyReplay),
		deps.repo.EXPECT().
			FindByIdempotencyKey(gomock.Any(), "key-1").
			Return(winner, true, nil),
	)

	res, err := svc.Create(context.Background(), bookingRequest(start, "key-1"))

	require.NoError(t, err)
	assert.Equal(t, "appt-winner", res.ID)
}

func TestBookingService_Create_SimultaneousSlotRace(t *testing.T) {
	svc, deps := newBookingService(t)
	expectDirectory(deps)

	start := futureDay().Add(11 * time.Hour)

	deps.repo.EXPECT().
		FindByIdempotencyKey(gomock.Any(), gomock.Any()).
		Return(model.Appointment{}, false, nil).
		Times(2)
	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).
		Times(2)
	deps.audit.EXPECT().
		Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		AnyTimes()

	gomock.InOrder(
		deps.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil),
		deps.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
			Return(failure.Conflict("the requested time slot is no longer available")),
	)

	first, err := svc.Create(context.Background(), bookingRequest(start, "key-a"))
	require.NoError(t, err)
	assert.Equal(t, constant.StatusPending, first.Status)

	_, err = svc.Create(context.Background(), bookingRequest(start, "key-b"))
	require.Error(t, err)
	assert.True(t, failure.IsKind(err, failure.KindConflict))
}

func TestBookingService_Create_ValidationFailure(t *testing.T) {
	svc, deps := newBookingService(t)
	expectDirectory(deps)

	deps.repo.EXPECT().
		FindByIdempotencyKey(gomock.Any(), gomock.Any()).
		Return(model.Appointment{}, false, nil)
	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	// In the past; no store writes may happen.
	_, err := svc.Create(context.Background(), bookingRequest(timezone.Now().Add(-time.Hour), "key-1"))

	require.Error(t, err)
	assert.True(t, failure.IsKind(err, failure.KindValidationFailed))
}

func TestBookingService_Cancel(t *testing.T) {
	appointmentAt := func(start time.Time, status, payment string) model.Appointment {
		return model.Appointment{
			ID:            "appt-1",
			StaffID:       testStaffID,
			StartTime:     start,
			EndTime:       start.Add(45 * time.Minute),
			Status:        status,
			PaymentStatus: payment,
			PriceCents:    4500,
		}
	}

	adminCtx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")
	adminCtx = context.WithValue(adminCtx, constant.ContextKeyUserRole, constant.RoleAdmin)

	t.Run("inside notice window returns policy violation", func(t *testing.T) {
		svc, deps := newBookingService(t)

		deps.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(appointmentAt(timezone.Now().Add(2*time.Hour), constant.StatusConfirmed, constant.PaymentStatusUnpaid), nil)

		_, err := svc.Cancel(context.Background(), dto.CancelRequest{Reason: "sick"}, "appt-1")

		require.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindPolicyViolation))
	})

	t.Run("admin override inside notice window succeeds", func(t *testing.T) {
		svc, deps := newBookingService(t)

		deps.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(appointmentAt(timezone.Now().Add(2*time.Hour), constant.StatusConfirmed, constant.PaymentStatusPaid), nil)
		deps.repo.EXPECT().
			UpdateStatus(gomock.Any(), "appt-1", constant.StatusConfirmed, constant.StatusCancelled, "emergency", "admin-1").
			Return(nil)
		deps.audit.EXPECT().
			Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

		res, err := svc.Cancel(adminCtx, dto.CancelRequest{Reason: "emergency", Override: true}, "appt-1")

		require.NoError(t, err)
		assert.True(t, res.Success)
		// Late cancellation forfeits the refund even when overridden.
		assert.Nil(t, res.RefundAmountCent)
	})

	t.Run("with sufficient notice refunds a paid appointment", func(t *testing.T) {
		svc, deps := newBookingService(t)

		deps.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(appointmentAt(timezone.Now().Add(72*time.Hour), constant.StatusConfirmed, constant.PaymentStatusPaid), nil)
		deps.repo.EXPECT().
			UpdateStatus(gomock.Any(), "appt-1", constant.StatusConfirmed, constant.StatusCancelled, "", gomock.Any()).
			Return(nil)
		deps.audit.EXPECT().
			Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

		res, err := svc.Cancel(context.Background(), dto.CancelRequest{}, "appt-1")

		require.NoError(t, err)
		assert.True(t, res.Success)
		require.NotNil(t, res.RefundAmountCent)
		assert.Equal(t, 4500, *res.RefundAmountCent)
	})

	t.Run("cancelling an already cancelled appointment is a no-op success", func(t *testing.T) {
		svc, deps := newBookingService(t)

		deps.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(appointmentAt(timezone.Now().Add(2*time.Hour), constant.StatusCancelled, constant.PaymentStatusUnpaid), nil)

		res, err := svc.Cancel(context.Background(), dto.CancelRequest{}, "appt-1")

		require.NoError(t, err)
		assert.True(t, res.Success)
	})

	t.Run("concurrent transition loses the compare-and-set", func(t *testing.T) {
		svc, deps := newBookingService(t)

		// Status flipped to in_progress between the read and the write; the
		// guarded update matches no row and reports a conflict instead of
		// silently cancelling.
		deps.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(appointmentAt(timezone.Now().Add(72*time.Hour), constant.StatusConfirmed, constant.PaymentStatusUnpaid), nil)
		deps.repo.EXPECT().
			UpdateStatus(gomock.Any(), "appt-1", constant.StatusConfirmed, constant.StatusCancelled, gomock.Any(), gomock.Any()).
			Return(failure.Conflict("the appointment was updated concurrently"))

		_, err := svc.Cancel(context.Background(), dto.CancelRequest{}, "appt-1")

		require.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindConflict))
	})

	t.Run("completed appointment cannot be cancelled", func(t *testing.T) {
		svc, deps := newBookingService(t)

		deps.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(appointmentAt(timezone.Now().Add(-time.Hour), constant.StatusCompleted, constant.PaymentStatusPaid), nil)

		_, err := svc.Cancel(context.Background(), dto.CancelRequest{}, "appt-1")

		require.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindPolicyViolation))
	})
}

func TestBookingService_Reschedule_ConflictLeavesAppointmentUntouched(t *testing.T) {
	svc, deps := newBookingService(t)
	expectDirectory(deps)

	day := futureDay()
	current := model.Appointment{
		ID:         "appt-1",
		CustomerID: testCustomerID,
		StaffID:    testStaffID,
		ServiceID:  testServiceID,
		StartTime:  day.Add(9 * time.Hour),
		EndTime:    day.Add(9*time.Hour + 45*time.Minute),
		Status:     constant.StatusConfirmed,
	}
	blocker := model.Appointment{
		ID:        "appt-2",
		StaffID:   testStaffID,
		StartTime: day.Add(14 * time.Hour),
		EndTime:   day.Add(14*time.Hour + 45*time.Minute),
		Status:    constant.StatusConfirmed,
	}

	deps.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(current, nil)

	// The new slot collides with appt-2; the day scan afterwards finds the
	// first slot clear of it.
	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, start, end time.Time, buffer time.Duration, excludeID string) ([]model.Appointment, error) {
			if start.Add(-buffer).Before(blocker.EndTime) && blocker.StartTime.Before(end.Add(buffer)) {
				return []model.Appointment{blocker}, nil
			}

			return nil, nil
		}).
		AnyTimes()

	_, err := svc.Reschedule(context.Background(), dto.RescheduleRequest{NewStart: blocker.StartTime}, "appt-1")

	require.Error(t, err)
	assert.True(t, failure.IsKind(err, failure.KindValidationFailed))

	var fail *failure.Failure
	require.ErrorAs(t, err, &fail)

	result, ok := fail.Details.(dto.ValidationResult)
	require.True(t, ok)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
	require.NotNil(t, result.NextAvailable)
	assert.Equal(t, testStaffID, result.NextAvailable.StaffID)
}

func TestBookingService_Reschedule_Success(t *testing.T) {
	svc, deps := newBookingService(t)
	expectDirectory(deps)

	day := futureDay()
	current := model.Appointment{
		ID:         "appt-1",
		CustomerID: testCustomerID,
		StaffID:    testStaffID,
		ServiceID:  testServiceID,
		StartTime:  day.Add(9 * time.Hour),
		EndTime:    day.Add(9*time.Hour + 45*time.Minute),
		Status:     constant.StatusConfirmed,
	}
	newStart := day.Add(15 * time.Hour)

	deps.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(current, nil)
	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), "appt-1").
		Return(nil, nil)
	deps.repo.EXPECT().
		UpdateInterval(gomock.Any(), "appt-1", newStart, newStart.Add(45*time.Minute), gomock.Any()).
		Return(nil)
	deps.audit.EXPECT().
		Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

	res, err := svc.Reschedule(context.Background(), dto.RescheduleRequest{NewStart: newStart}, "appt-1")

	require.NoError(t, err)
	assert.Equal(t, "appt-1", res.ID)
	assert.Equal(t, newStart, res.Start)
}

func TestBookingService_Reschedule_InsideNoticeWindow(t *testing.T) {
	svc, deps := newBookingService(t)

	current := model.Appointment{
		ID:        "appt-1",
		StaffID:   testStaffID,
		StartTime: timezone.Now().Add(time.Hour),
		Status:    constant.StatusConfirmed,
	}

	deps.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(current, nil)

	_, err := svc.Reschedule(context.Background(), dto.RescheduleRequest{NewStart: timezone.Now().Add(48 * time.Hour)}, "appt-1")

	require.Error(t, err)
	assert.True(t, failure.IsKind(err, failure.KindPolicyViolation))
}

func TestBookingService_SetStatus(t *testing.T) {
	t.Run("legal transition", func(t *testing.T) {
		svc, deps := newBookingService(t)

		deps.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Appointment{ID: "appt-1", Status: constant.StatusConfirmed}, nil)
		deps.repo.EXPECT().
			UpdateStatus(gomock.Any(), "appt-1", constant.StatusConfirmed, constant.StatusInProgress, gomock.Any(), gomock.Any()).
			Return(nil)
		deps.audit.EXPECT().
			Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

		err := svc.SetStatus(context.Background(), dto.UpdateStatusRequest{Status: constant.StatusInProgress}, "appt-1")

		require.NoError(t, err)
	})

	t.Run("transition race surfaces as conflict", func(t *testing.T) {
		svc, deps := newBookingService(t)

		deps.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Appointment{ID: "appt-1", Status: constant.StatusConfirmed}, nil)
		deps.repo.EXPECT().
			UpdateStatus(gomock.Any(), "appt-1", constant.StatusConfirmed, constant.StatusInProgress, gomock.Any(), gomock.Any()).
			Return(failure.Conflict("the appointment was updated concurrently"))

		err := svc.SetStatus(context.Background(), dto.UpdateStatusRequest{Status: constant.StatusInProgress}, "appt-1")

		require.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindConflict))
	})

	t.Run("illegal transition", func(t *testing.T) {
		svc, deps := newBookingService(t)

		deps.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Appointment{ID: "appt-1", Status: constant.StatusCompleted}, nil)

		err := svc.SetStatus(context.Background(), dto.UpdateStatusRequest{Status: constant.StatusCancelled}, "appt-1")

		require.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindPolicyViolation))
	})

	t.Run("unknown status", func(t *testing.T) {
		svc, _ := newBookingService(t)

		err := svc.SetStatus(context.Background(), dto.UpdateStatusRequest{Status: "vanished"}, "appt-1")

		require.Error(t, err)
	})
}

func TestBookingService_Get(t *testing.T) {
	t.Run("store failure propagates", func(t *testing.T) {
		svc, deps := newBookingService(t)

		deps.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Appointment{}, errors.New("connection reset"))

		_, err := svc.Get(context.Background(), "appt-1")

		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to get appointment")
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		svc, deps := newBookingService(t)

		deps.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Appointment{}, nil)

		_, err := svc.Get(context.Background(), "appt-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}
