package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"shear/internal/domains/booking/model"
	"shear/internal/domains/booking/model/dto"
	"shear/internal/domains/booking/service"
	staffModel "shear/internal/domains/staff/model"
	"shear/shared/constant"
	"shear/shared/failure"
	"shear/shared/timezone"
)

func slotAt(t *testing.T, slots []dto.AvailabilitySlot, start time.Time) dto.AvailabilitySlot {
	t.Helper()

	for _, slot := range slots {
		if slot.Start.Equal(start) {
			return slot
		}
	}

	t.Fatalf("no slot starting at %s", start)

	return dto.AvailabilitySlot{}
}

func TestBookingService_Availability_SlotGrid(t *testing.T) {
	svc, deps := newBookingService(t)
	expectDirectory(deps)

	day := futureDay()
	dateStr, _ := timezone.WallClock(day)

	// 10:00-10:45 already booked.
	existing := model.Appointment{
		ID:        "appt-1",
		StaffID:   testStaffID,
		StartTime: timezone.InstantAt(day, 600),
		EndTime:   timezone.InstantAt(day, 645),
		Status:    constant.StatusConfirmed,
	}

	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), constant.Empty).
		Return([]model.Appointment{existing}, nil)

	res, err := svc.Availability(context.Background(), dto.AvailabilityQuery{
		ServiceID: testServiceID,
		StaffID:   testStaffID,
		Date:      dateStr,
	})

	require.NoError(t, err)

	// 09:00 through 17:15 inclusive, every 15 minutes, for a 45-minute
	// service inside a 09:00-18:00 window.
	assert.Len(t, res.Slots, 34)
	assert.Nil(t, res.NextAvailable)

	tt := []struct {
		minute    int
		available bool
		reason    string
	}{
		{540, true, constant.Empty},          // 09:00 ends right before the buffer zone
		{555, false, service.ReasonBuffer},   // 09:15 ends at 10:00, inside the 10-minute buffer
		{585, false, service.ReasonConflict}, // 09:30 runs into the booking itself
		{600, false, service.ReasonConflict},
		{645, false, service.ReasonBuffer}, // 10:45 starts inside the buffer
		{660, true, constant.Empty},        // 11:00 clear again
		{1035, true, constant.Empty},       // 17:15 is the last slot that still fits
	}

	for _, tc := range tt {
		slot := slotAt(t, res.Slots, timezone.InstantAt(day, tc.minute))
		assert.Equal(t, tc.available, slot.Available, "minute %d", tc.minute)
		assert.Equal(t, tc.reason, slot.Reason, "minute %d", tc.minute)
		assert.Equal(t, slot.Start.Add(45*time.Minute), slot.End)
	}
}

func TestBookingService_Availability_AnyStaffInterleavesByStart(t *testing.T) {
	svc, deps := newBookingService(t)

	const (
		aliceID = "11111111-1111-4111-8111-111111111111"
		bobID   = "22222222-2222-4222-8222-222222222222"
	)

	day := futureDay()
	dateStr, _ := timezone.WallClock(day)

	alice := staffModel.Staff{ID: aliceID, Name: "Alice", Active: true}
	bob := staffModel.Staff{ID: bobID, Name: "Bob", Active: true}
	retired := staffModel.Staff{ID: "33333333-3333-4333-8333-333333333333", Name: "Carol", Active: false}

	morning := func(staffID string) staffModel.Schedule {
		return staffModel.Schedule{StaffID: staffID, StartMinutes: 540, EndMinutes: 720}
	}

	deps.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testService(), nil)
	deps.catalog.EXPECT().GetQualifiedStaffIDs(gomock.Any(), testServiceID).
		Return([]string{aliceID, bobID, retired.ID}, nil)
	deps.staff.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).
		Return([]staffModel.Staff{alice, bob, retired}, nil)
	deps.staff.EXPECT().GetScheduleForWeekday(gomock.Any(), aliceID, gomock.Any()).
		Return(morning(aliceID), true, nil)
	deps.staff.EXPECT().GetScheduleForWeekday(gomock.Any(), bobID, gomock.Any()).
		Return(morning(bobID), true, nil)
	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), constant.Empty).
		Return(nil, nil).
		Times(2)

	res, err := svc.Availability(context.Background(), dto.AvailabilityQuery{
		ServiceID: testServiceID,
		StaffID:   dto.StaffAny,
		Date:      dateStr,
	})

	require.NoError(t, err)

	// 09:00-12:00 fits ten 45-minute starts per staff member; the inactive
	// one contributes nothing.
	require.Len(t, res.Slots, 20)

	assert.Equal(t, "Alice", res.Slots[0].StaffName)
	assert.Equal(t, "Bob", res.Slots[1].StaffName)
	assert.True(t, res.Slots[0].Start.Equal(res.Slots[1].Start))
	assert.Equal(t, "Alice", res.Slots[2].StaffName)
	assert.True(t, res.Slots[1].Start.Before(res.Slots[2].Start))
}

func TestBookingService_Availability_FullyBookedSuggestsNextDay(t *testing.T) {
	svc, deps := newBookingService(t)
	expectDirectory(deps)

	day := futureDay()
	dateStr, _ := timezone.WallClock(day)

	// Blocks the entire first day; the scan lands on the next morning.
	blocker := model.Appointment{
		ID:        "appt-1",
		StaffID:   testStaffID,
		StartTime: timezone.InstantAt(day, 0),
		EndTime:   timezone.InstantAt(day, 24*60),
		Status:    constant.StatusConfirmed,
	}

	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), constant.Empty).
		DoAndReturn(func(_ context.Context, _ string, start, end time.Time, buffer time.Duration, _ string) ([]model.Appointment, error) {
			if start.Add(-buffer).Before(blocker.EndTime) && blocker.StartTime.Before(end.Add(buffer)) {
				return []model.Appointment{blocker}, nil
			}

			return nil, nil
		}).
		AnyTimes()

	res, err := svc.Availability(context.Background(), dto.AvailabilityQuery{
		ServiceID: testServiceID,
		StaffID:   testStaffID,
		Date:      dateStr,
	})

	require.NoError(t, err)
	assert.False(t, hasAvailableSlot(res.Slots))
	require.NotNil(t, res.NextAvailable)

	nextDate, _ := timezone.WallClock(day.AddDate(0, 0, 1))
	assert.Equal(t, nextDate, res.NextAvailable.Date)
	assert.Equal(t, "09:00", res.NextAvailable.Time)
	assert.Equal(t, testStaffID, res.NextAvailable.StaffID)
}

// A slot the grid reports as available must validate, and a slot it reports
// as taken must not, as long as nothing changed in between.
func TestBookingService_Availability_AgreesWithValidate(t *testing.T) {
	svc, deps := newBookingService(t)
	expectDirectory(deps)

	day := futureDay()
	dateStr, _ := timezone.WallClock(day)

	existing := model.Appointment{
		ID:        "appt-1",
		StaffID:   testStaffID,
		StartTime: timezone.InstantAt(day, 600),
		EndTime:   timezone.InstantAt(day, 645),
		Status:    constant.StatusConfirmed,
	}

	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, start, end time.Time, buffer time.Duration, _ string) ([]model.Appointment, error) {
			if start.Add(-buffer).Before(existing.EndTime) && existing.StartTime.Add(-buffer).Before(end.Add(buffer)) {
				return []model.Appointment{existing}, nil
			}

			return nil, nil
		}).
		AnyTimes()

	availability, err := svc.Availability(context.Background(), dto.AvailabilityQuery{
		ServiceID: testServiceID,
		StaffID:   testStaffID,
		Date:      dateStr,
	})
	require.NoError(t, err)

	open := slotAt(t, availability.Slots, timezone.InstantAt(day, 660))
	require.True(t, open.Available)

	taken := slotAt(t, availability.Slots, timezone.InstantAt(day, 615))
	require.False(t, taken.Available)

	result, err := svc.Validate(context.Background(), bookingRequest(open.Start, constant.Empty))
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = svc.Validate(context.Background(), bookingRequest(taken.Start, constant.Empty))
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

// Slots past the advance-booking horizon are never offered: the grid marks
// them unavailable and the validator rejects the same instants.
func TestBookingService_Availability_BeyondAdvanceHorizon(t *testing.T) {
	svc, deps := newBookingService(t)
	expectDirectory(deps)

	day := timezone.InstantAt(timezone.Now().AddDate(0, 0, 90), 0)
	dateStr, _ := timezone.WallClock(day)

	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	availability, err := svc.Availability(context.Background(), dto.AvailabilityQuery{
		ServiceID: testServiceID,
		StaffID:   testStaffID,
		Date:      dateStr,
	})
	require.NoError(t, err)
	require.NotEmpty(t, availability.Slots)

	for _, slot := range availability.Slots {
		assert.False(t, slot.Available)
		assert.Equal(t, service.ReasonTooFar, slot.Reason)
	}

	// The forward scan starts at the requested date, so it cannot reach back
	// inside the horizon either.
	assert.Nil(t, availability.NextAvailable)

	result, err := svc.Validate(context.Background(), bookingRequest(availability.Slots[0].Start, constant.Empty))
	require.NoError(t, err)
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors, "bookings can be made at most 60 days in advance")
}

func TestBookingService_Availability_Rejections(t *testing.T) {
	day := futureDay()
	dateStr, _ := timezone.WallClock(day)

	t.Run("malformed date", func(t *testing.T) {
		svc, _ := newBookingService(t)

		_, err := svc.Availability(context.Background(), dto.AvailabilityQuery{
			ServiceID: testServiceID,
			StaffID:   testStaffID,
			Date:      "tomorrow",
		})

		require.Error(t, err)
	})

	t.Run("inactive service", func(t *testing.T) {
		svc, deps := newBookingService(t)

		inactive := testService()
		inactive.Active = false

		deps.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(inactive, nil)

		_, err := svc.Availability(context.Background(), dto.AvailabilityQuery{
			ServiceID: testServiceID,
			StaffID:   testStaffID,
			Date:      dateStr,
		})

		require.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindValidationFailed))
	})

	t.Run("unqualified staff", func(t *testing.T) {
		svc, deps := newBookingService(t)

		deps.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testService(), nil)
		deps.catalog.EXPECT().IsStaffQualified(gomock.Any(), testServiceID, testStaffID).Return(false, nil)

		_, err := svc.Availability(context.Background(), dto.AvailabilityQuery{
			ServiceID: testServiceID,
			StaffID:   testStaffID,
			Date:      dateStr,
		})

		require.Error(t, err)
		assert.True(t, failure.IsKind(err, failure.KindValidationFailed))
	})
}

func hasAvailableSlot(slots []dto.AvailabilitySlot) bool {
	for _, slot := range slots {
		if slot.Available {
			return true
		}
	}

	return false
}
