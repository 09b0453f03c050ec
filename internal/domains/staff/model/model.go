package model

import (
	"shear/shared/model"
)

const (
	TableName  = "staff"
	EntityName = "staff"

	FieldID     = "id"
	FieldName   = "name"
	FieldEmail  = "email"
	FieldActive = "active"

	ScheduleTableName  = "staff_schedules"
	ScheduleEntityName = "staff_schedule"

	ScheduleFieldID      = "id"
	ScheduleFieldStaffID = "staff_id"
	ScheduleFieldWeekday = "weekday"
)

type Staff struct {
	ID     string  `db:"id"`
	Name   string  `db:"name"`
	Email  *string `db:"email"`
	Phone  *string `db:"phone"`
	Active bool    `db:"active"`
	model.Metadata
}

// Schedule is one weekday's working window for a staff member, expressed as
// minutes from local midnight. A row with Closed set means the staff member
// does not work that weekday regardless of the window values.
type Schedule struct {
	ID           string `db:"id"`
	StaffID      string `db:"staff_id"`
	Weekday      int    `db:"weekday"`
	StartMinutes int    `db:"start_minutes"`
	EndMinutes   int    `db:"end_minutes"`
	Closed       bool   `db:"closed"`
	model.Metadata
}

// Contains reports whether the half-open interval [startMinutes, endMinutes)
// fits inside this schedule's working window.
func (s *Schedule) Contains(startMinutes, endMinutes int) bool {
	if s.Closed {
		return false
	}

	return startMinutes >= s.StartMinutes && endMinutes <= s.EndMinutes
}
