package service

import (
	"context"
	"fmt"
	"time"

	"shear/internal/domains/booking/model/dto"
	catalogModel "shear/internal/domains/catalog/model"
	customerModel "shear/internal/domains/customer/model"
	staffModel "shear/internal/domains/staff/model"
	"shear/shared"
	"shear/shared/constant"
	"shear/shared/failure"
	"shear/shared/timezone"
)

// Validate checks a booking request against every business rule and reports
// all violations at once. Read-only; the authoritative re-check happens again
// inside Create, immediately before the insert.
func (s *serviceImpl) Validate(ctx context.Context, req dto.BookingRequest) (res dto.ValidationResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Validate")
	defer scope.End()
	defer scope.TraceIfError(err)

	res, _, err = s.validateRequest(ctx, req, constant.Empty)

	return res, err
}

// validateRequest resolves the service and staff and runs every check.
// excludeID drops one appointment from the overlap check, which is how a
// reschedule avoids colliding with itself.
func (s *serviceImpl) validateRequest(ctx context.Context, req dto.BookingRequest, excludeID string) (res dto.ValidationResult, svc catalogModel.Service, err error) {
	svc, err = s.getService(ctx, req.ServiceID)
	if err != nil {
		return res, svc, err
	}

	if req.CustomerID != constant.Empty {
		exist, cerr := s.customerRepo.Exist(ctx, shared.FilterByID(req.CustomerID, customerModel.FieldID, customerModel.TableName))
		if cerr != nil {
			return res, svc, failure.Unavailable("directory is unavailable") // nolint:wrapcheck
		}

		if !exist {
			return res, svc, failure.NotFound("customer not found") // nolint:wrapcheck
		}
	}

	now := timezone.Now()

	if req.AnyStaff() {
		return s.validateAnyStaff(ctx, req, svc, excludeID, now)
	}

	staff, err := s.staffRepo.Get(ctx, shared.FilterByID(req.StaffID, staffModel.FieldID, staffModel.TableName))
	if err != nil {
		return res, svc, failure.Unavailable("directory is unavailable") // nolint:wrapcheck
	}

	if staff.ID == constant.Empty {
		return res, svc, failure.NotFound("staff not found") // nolint:wrapcheck
	}

	errs, conflict, err := s.checkForStaff(ctx, svc, staff, req.Start, excludeID, now)
	if err != nil {
		return res, svc, err
	}

	res = dto.ValidationResult{
		Valid:   len(errs) == 0,
		StaffID: staff.ID,
		Errors:  errs,
	}

	if conflict {
		res.NextAvailable, err = s.findNextAvailable(ctx, svc, []staffModel.Staff{staff}, req.Start, now)
		if err != nil {
			return res, svc, err
		}
	}

	return res, svc, nil
}

// validateAnyStaff assigns the first qualified staff member for whom the
// requested slot passes every check. When nobody fits, the result carries a
// single aggregate error plus the next slot anyone can take.
func (s *serviceImpl) validateAnyStaff(ctx context.Context, req dto.BookingRequest, svc catalogModel.Service, excludeID string, now time.Time) (res dto.ValidationResult, _ catalogModel.Service, err error) {
	candidates, err := s.resolveCandidates(ctx, svc, dto.StaffAny)
	if err != nil {
		return res, svc, err
	}

	if len(candidates) == 0 {
		res.Errors = []string{"no staff members are qualified for this service"}

		return res, svc, nil
	}

	for _, staff := range candidates {
		errs, _, cerr := s.checkForStaff(ctx, svc, staff, req.Start, excludeID, now)
		if cerr != nil {
			return res, svc, cerr
		}

		if len(errs) == 0 {
			res.Valid = true
			res.StaffID = staff.ID

			return res, svc, nil
		}
	}

	res.Errors = []string{"no qualified staff member is available at the requested time"}

	res.NextAvailable, err = s.findNextAvailable(ctx, svc, candidates, req.Start, now)
	if err != nil {
		return res, svc, err
	}

	return res, svc, nil
}

// checkForStaff evaluates every rule without short-circuiting, so the caller
// sees the full list of violations in one pass.
func (s *serviceImpl) checkForStaff(ctx context.Context, svc catalogModel.Service, staff staffModel.Staff, start time.Time, excludeID string, now time.Time) (errs []string, conflict bool, err error) {
	minAdvanceHours, maxAdvanceDays := svc.AdvanceBounds(s.cfg.Booking.MinAdvanceHours, s.cfg.Booking.MaxAdvanceDays)
	duration := time.Duration(svc.DurationMinutes) * time.Minute
	end := start.Add(duration)

	if !start.After(now) {
		errs = append(errs, "start time must be in the future")
	} else if start.Before(now.Add(time.Duration(minAdvanceHours) * time.Hour)) {
		errs = append(errs, fmt.Sprintf("bookings require at least %d hours notice", minAdvanceHours))
	}

	if start.After(now.AddDate(0, 0, maxAdvanceDays)) {
		errs = append(errs, fmt.Sprintf("bookings can be made at most %d days in advance", maxAdvanceDays))
	}

	if !staff.Active {
		errs = append(errs, "staff member is not active")
	}

	qualified, err := s.catalogRepo.IsStaffQualified(ctx, svc.ID, staff.ID)
	if err != nil {
		return nil, false, failure.Unavailable("directory is unavailable") // nolint:wrapcheck
	}

	if !qualified {
		errs = append(errs, "staff member is not qualified for this service")
	}

	schedule, found, err := s.staffRepo.GetScheduleForWeekday(ctx, staff.ID, int(timezone.WeekdayOf(start)))
	if err != nil {
		return nil, false, failure.Unavailable("directory is unavailable") // nolint:wrapcheck
	}

	startMinute := timezone.MinuteOfDay(start)
	if !found || !schedule.Contains(startMinute, startMinute+svc.DurationMinutes) {
		errs = append(errs, "outside the staff member's working hours")
	}

	buffer := time.Duration(s.cfg.Booking.BufferMinutes) * time.Minute

	overlapping, err := s.repo.FindOverlapping(ctx, staff.ID, start, end, buffer, excludeID)
	if err != nil {
		return nil, false, failure.Unavailable("appointment store is unavailable") // nolint:wrapcheck
	}

	if len(overlapping) > 0 {
		conflict = true

		errs = append(errs, "conflicts with an existing appointment, including the required buffer")
	}

	return errs, conflict, nil
}
