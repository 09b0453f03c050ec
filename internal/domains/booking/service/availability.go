package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"shear/internal/domains/booking/model"
	"shear/internal/domains/booking/model/dto"
	catalogModel "shear/internal/domains/catalog/model"
	staffModel "shear/internal/domains/staff/model"
	"shear/shared"
	"shear/shared/constant"
	"shear/shared/failure"
	"shear/shared/timezone"
)

// Reasons attached to unavailable slots. The wording is user-facing; the
// availability endpoint returns it verbatim.
const (
	ReasonConflict = "conflicts with an existing appointment"
	ReasonBuffer   = "too close to an existing appointment"
	ReasonTooSoon  = "inside the minimum advance-booking window"
	ReasonTooFar   = "beyond the maximum advance-booking window"
)

// Availability computes the slot grid for a (service, staff-or-any, date)
// query. Every candidate slot is returned, available or not, so the UI can
// grey out taken times instead of hiding them. Appointment state is read
// fresh from the store on every call; it is never cached.
func (s *serviceImpl) Availability(ctx context.Context, req dto.AvailabilityQuery) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Availability")
	defer scope.End()
	defer scope.TraceIfError(err)

	date, err := timezone.Parse(constant.DateOnlyFormat, req.Date)
	if err != nil {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date %q", req.Date)) // nolint:wrapcheck
	}

	svc, err := s.getService(ctx, req.ServiceID)
	if err != nil {
		return res, err
	}

	candidates, err := s.resolveCandidates(ctx, svc, req.StaffID)
	if err != nil {
		return res, err
	}

	now := timezone.Now()

	res.Slots, err = s.slotsForDay(ctx, svc, candidates, date, now)
	if err != nil {
		return res, err
	}

	if !hasAvailable(res.Slots) {
		res.NextAvailable, err = s.findNextAvailable(ctx, svc, candidates, date, now)
		if err != nil {
			log.Error().Err(err).Msg("failed to find next available slot")

			err = nil
		}
	}

	return res, nil
}

// resolveCandidates returns the staff the query runs against: the single
// requested staff member when named, otherwise every active staff member
// qualified for the service, sorted by name.
func (s *serviceImpl) resolveCandidates(ctx context.Context, svc catalogModel.Service, staffID string) ([]staffModel.Staff, error) {
	if staffID != constant.Empty && staffID != dto.StaffAny {
		qualified, err := s.catalogRepo.IsStaffQualified(ctx, svc.ID, staffID)
		if err != nil {
			return nil, failure.Unavailable("directory is unavailable") // nolint:wrapcheck
		}

		if !qualified {
			return nil, failure.ValidationFailed("staff member is not qualified for this service", nil) // nolint:wrapcheck
		}

		staff, err := s.staffRepo.Get(ctx, shared.FilterByID(staffID, staffModel.FieldID, staffModel.TableName))
		if err != nil {
			return nil, failure.Unavailable("directory is unavailable") // nolint:wrapcheck
		}

		if staff.ID == constant.Empty {
			return nil, failure.NotFound("staff not found") // nolint:wrapcheck
		}

		return []staffModel.Staff{staff}, nil
	}

	ids, err := s.catalogRepo.GetQualifiedStaffIDs(ctx, svc.ID)
	if err != nil {
		return nil, failure.Unavailable("directory is unavailable") // nolint:wrapcheck
	}

	all, err := s.staffRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, failure.Unavailable("directory is unavailable") // nolint:wrapcheck
	}

	active := make([]staffModel.Staff, 0, len(all))
	for _, staff := range all {
		if staff.Active {
			active = append(active, staff)
		}
	}

	return active, nil
}

// slotsForDay builds the full slot grid for one calendar day. Slots from
// multiple staff are interleaved by start time with staff name, then id, as
// tie-breakers, so the earliest overall options come first.
func (s *serviceImpl) slotsForDay(ctx context.Context, svc catalogModel.Service, candidates []staffModel.Staff, date, now time.Time) ([]dto.AvailabilitySlot, error) {
	buffer := time.Duration(s.cfg.Booking.BufferMinutes) * time.Minute
	minAdvanceHours, maxAdvanceDays := svc.AdvanceBounds(s.cfg.Booking.MinAdvanceHours, s.cfg.Booking.MaxAdvanceDays)
	weekday := int(timezone.WeekdayOf(date))

	slots := []dto.AvailabilitySlot{}

	for _, staff := range candidates {
		schedule, found, err := s.staffRepo.GetScheduleForWeekday(ctx, staff.ID, weekday)
		if err != nil {
			return nil, failure.Unavailable("directory is unavailable") // nolint:wrapcheck
		}

		if !found || schedule.Closed {
			continue
		}

		starts := GenerateSlots(schedule.StartMinutes, schedule.EndMinutes, svc.DurationMinutes, s.cfg.Booking.SlotStepMinutes)
		if len(starts) == 0 {
			continue
		}

		dayStart := timezone.InstantAt(date, schedule.StartMinutes)
		dayEnd := timezone.InstantAt(date, schedule.EndMinutes)

		existing, err := s.repo.FindOverlapping(ctx, staff.ID, dayStart, dayEnd, buffer, constant.Empty)
		if err != nil {
			return nil, failure.Unavailable("appointment store is unavailable") // nolint:wrapcheck
		}

		for _, startMinute := range starts {
			start := timezone.InstantAt(date, startMinute)
			end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)
			available, reason := classifySlot(start, end, existing, buffer, now, minAdvanceHours, maxAdvanceDays)

			slots = append(slots, dto.AvailabilitySlot{
				StaffID:   staff.ID,
				StaffName: staff.Name,
				Start:     start,
				End:       end,
				Available: available,
				Reason:    reason,
			})
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}

		if slots[i].StaffName != slots[j].StaffName {
			return slots[i].StaffName < slots[j].StaffName
		}

		return slots[i].StaffID < slots[j].StaffID
	})

	return slots, nil
}

// classifySlot decides availability for one candidate. A direct overlap wins
// over a buffer-only overlap so the reason names the real obstacle. The
// advance-window checks mirror checkForStaff exactly: a slot marked available
// here must pass validation for a request at the same instant.
func classifySlot(start, end time.Time, existing []model.Appointment, buffer time.Duration, now time.Time, minAdvanceHours, maxAdvanceDays int) (bool, string) {
	for _, appointment := range existing {
		if start.Before(appointment.EndTime) && appointment.StartTime.Before(end) {
			return false, ReasonConflict
		}
	}

	for _, appointment := range existing {
		if start.Before(appointment.EndTime.Add(buffer)) && appointment.StartTime.Add(-buffer).Before(end) {
			return false, ReasonBuffer
		}
	}

	if !start.After(now) || start.Before(now.Add(time.Duration(minAdvanceHours)*time.Hour)) {
		return false, ReasonTooSoon
	}

	if start.After(now.AddDate(0, 0, maxAdvanceDays)) {
		return false, ReasonTooFar
	}

	return true, constant.Empty
}

// findNextAvailable scans forward day by day, bounded by configuration, and
// returns the first available slot. Used to suggest an alternative when the
// requested day is fully booked or a requested slot fails on conflict.
func (s *serviceImpl) findNextAvailable(ctx context.Context, svc catalogModel.Service, candidates []staffModel.Staff, fromDate, now time.Time) (*dto.NextAvailable, error) {
	for day := 0; day <= s.cfg.Booking.NextAvailableMaxDays; day++ {
		date := fromDate.AddDate(0, 0, day)

		slots, err := s.slotsForDay(ctx, svc, candidates, date, now)
		if err != nil {
			return nil, err
		}

		for _, slot := range slots {
			if slot.Available {
				slotDate, slotTime := timezone.WallClock(slot.Start)

				return &dto.NextAvailable{
					Date:    slotDate,
					Time:    slotTime,
					StaffID: slot.StaffID,
				}, nil
			}
		}
	}

	return nil, nil
}

func (s *serviceImpl) getService(ctx context.Context, id string) (catalogModel.Service, error) {
	svc, err := s.catalogRepo.Get(ctx, shared.FilterByID(id, catalogModel.FieldID, catalogModel.TableName))
	if err != nil {
		return svc, failure.Unavailable("directory is unavailable") // nolint:wrapcheck
	}

	if svc.ID == constant.Empty {
		return svc, failure.NotFound("service not found") // nolint:wrapcheck
	}

	if !svc.Active {
		return svc, failure.ValidationFailed("service is not bookable", nil) // nolint:wrapcheck
	}

	return svc, nil
}

func hasAvailable(slots []dto.AvailabilitySlot) bool {
	for _, slot := range slots {
		if slot.Available {
			return true
		}
	}

	return false
}
