package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"shear/internal/domains/booking/model"
	staffModel "shear/internal/domains/staff/model"
	"shear/shared/constant"
	"shear/shared/timezone"
)

func TestBookingService_Validate_ReportsEveryViolation(t *testing.T) {
	svc, deps := newBookingService(t)

	inactive := testStaff()
	inactive.Active = false

	deps.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testService(), nil)
	deps.customer.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	deps.staff.EXPECT().Get(gomock.Any(), gomock.Any()).Return(inactive, nil)
	deps.catalog.EXPECT().IsStaffQualified(gomock.Any(), testServiceID, testStaffID).Return(false, nil)
	deps.staff.EXPECT().GetScheduleForWeekday(gomock.Any(), testStaffID, gomock.Any()).
		Return(staffModel.Schedule{}, false, nil).
		AnyTimes()
	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Appointment{{ID: "appt-1"}}, nil)

	result, err := svc.Validate(context.Background(), bookingRequest(timezone.Now().Add(-time.Hour), constant.Empty))

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors, "start time must be in the future")
	assert.Contains(t, result.Errors, "staff member is not active")
	assert.Contains(t, result.Errors, "staff member is not qualified for this service")
	assert.Contains(t, result.Errors, "outside the staff member's working hours")
	assert.Contains(t, result.Errors, "conflicts with an existing appointment, including the required buffer")
}

func TestBookingService_Validate_AdvanceBounds(t *testing.T) {
	tt := []struct {
		name    string
		start   time.Time
		wantErr string
	}{
		{
			name:    "under the minimum notice",
			start:   timezone.Now().Add(30 * time.Minute),
			wantErr: "bookings require at least 2 hours notice",
		},
		{
			name:    "past the booking horizon",
			start:   timezone.Now().AddDate(0, 0, 90),
			wantErr: "bookings can be made at most 60 days in advance",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			svc, deps := newBookingService(t)
			expectDirectory(deps)

			deps.repo.EXPECT().
				FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, nil)

			result, err := svc.Validate(context.Background(), bookingRequest(tc.start, constant.Empty))

			require.NoError(t, err)
			assert.False(t, result.Valid)
			assert.Contains(t, result.Errors, tc.wantErr)
		})
	}
}

func TestBookingService_Validate_ServiceOverridesAdvanceMinimum(t *testing.T) {
	svc, deps := newBookingService(t)

	minHours := 24
	consult := testService()
	consult.RequiresConsultation = true
	consult.MinAdvanceHours = &minHours

	deps.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(consult, nil)
	deps.customer.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	deps.staff.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testStaff(), nil)
	deps.catalog.EXPECT().IsStaffQualified(gomock.Any(), testServiceID, testStaffID).Return(true, nil)
	deps.staff.EXPECT().GetScheduleForWeekday(gomock.Any(), testStaffID, gomock.Any()).
		Return(testSchedule(), true, nil)
	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	// Three hours ahead clears the default minimum but not this service's.
	result, err := svc.Validate(context.Background(), bookingRequest(timezone.Now().Add(3*time.Hour), constant.Empty))

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "bookings require at least 24 hours notice")
}

func TestBookingService_Validate_OutsideWorkingHours(t *testing.T) {
	svc, deps := newBookingService(t)
	expectDirectory(deps)

	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), testStaffID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).
		Times(2)

	// 08:00 starts before the window opens.
	result, err := svc.Validate(context.Background(), bookingRequest(timezone.InstantAt(futureDay(), 480), constant.Empty))

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "outside the staff member's working hours")

	// 17:30 starts inside it but the service would run past closing.
	result, err = svc.Validate(context.Background(), bookingRequest(timezone.InstantAt(futureDay(), 1050), constant.Empty))

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "outside the staff member's working hours")
}

func TestBookingService_Validate_ConflictSuggestsNextSlot(t *testing.T) {
	svc, deps := newBookingService(t)
	expectDirectory(deps)

	day := futureDay()
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

	result, err := svc.Validate(context.Background(), bookingRequest(existing.StartTime, constant.Empty))

	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotNil(t, result.NextAvailable)
	assert.Equal(t, testStaffID, result.NextAvailable.StaffID)
	assert.Equal(t, "09:00", result.NextAvailable.Time)
}

func TestBookingService_Validate_AnyStaffPicksFirstFree(t *testing.T) {
	svc, deps := newBookingService(t)

	const (
		aliceID = "11111111-1111-4111-8111-111111111111"
		bobID   = "22222222-2222-4222-8222-222222222222"
	)

	day := futureDay()
	start := timezone.InstantAt(day, 660)

	alice := staffModel.Staff{ID: aliceID, Name: "Alice", Active: true}
	bob := staffModel.Staff{ID: bobID, Name: "Bob", Active: true}

	schedule := func(staffID string) staffModel.Schedule {
		return staffModel.Schedule{StaffID: staffID, StartMinutes: 540, EndMinutes: 1080}
	}

	deps.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testService(), nil)
	deps.customer.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	deps.catalog.EXPECT().GetQualifiedStaffIDs(gomock.Any(), testServiceID).
		Return([]string{aliceID, bobID}, nil)
	deps.staff.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).
		Return([]staffModel.Staff{alice, bob}, nil)
	deps.catalog.EXPECT().IsStaffQualified(gomock.Any(), testServiceID, gomock.Any()).Return(true, nil).Times(2)
	deps.staff.EXPECT().GetScheduleForWeekday(gomock.Any(), aliceID, gomock.Any()).
		Return(schedule(aliceID), true, nil)
	deps.staff.EXPECT().GetScheduleForWeekday(gomock.Any(), bobID, gomock.Any()).
		Return(schedule(bobID), true, nil)

	// Alice is booked at the requested time, Bob is free.
	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), aliceID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Appointment{{ID: "appt-1", StaffID: aliceID}}, nil)
	deps.repo.EXPECT().
		FindOverlapping(gomock.Any(), bobID, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	req := bookingRequest(start, constant.Empty)
	req.StaffID = "any"

	result, err := svc.Validate(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, bobID, result.StaffID)
}

func TestBookingService_Validate_AnyStaffNobodyQualified(t *testing.T) {
	svc, deps := newBookingService(t)

	deps.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testService(), nil)
	deps.customer.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	deps.catalog.EXPECT().GetQualifiedStaffIDs(gomock.Any(), testServiceID).Return(nil, nil)
	deps.staff.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).Return(nil, nil)

	req := bookingRequest(futureDay().Add(11*time.Hour), constant.Empty)
	req.StaffID = "any"

	result, err := svc.Validate(context.Background(), req)

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"no staff members are qualified for this service"}, result.Errors)
}

func TestBookingService_Validate_UnknownCustomer(t *testing.T) {
	svc, deps := newBookingService(t)

	deps.catalog.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testService(), nil)
	deps.customer.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

	_, err := svc.Validate(context.Background(), bookingRequest(futureDay().Add(11*time.Hour), constant.Empty))

	require.Error(t, err)
}
