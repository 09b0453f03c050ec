package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shear/internal/domains/booking/model"
	"shear/shared/constant"
)

func TestCanTransition(t *testing.T) {
	tt := []struct {
		from string
		to   string
		want bool
	}{
		{constant.StatusPending, constant.StatusConfirmed, true},
		{constant.StatusPending, constant.StatusCancelled, true},
		{constant.StatusPending, constant.StatusCompleted, false},
		{constant.StatusConfirmed, constant.StatusInProgress, true},
		{constant.StatusConfirmed, constant.StatusNoShow, true},
		{constant.StatusInProgress, constant.StatusCompleted, true},
		{constant.StatusInProgress, constant.StatusNoShow, false},
		{constant.StatusCompleted, constant.StatusCancelled, false},
		{constant.StatusCancelled, constant.StatusConfirmed, false},
		{constant.StatusNoShow, constant.StatusPending, false},
	}

	for _, tc := range tt {
		assert.Equal(t, tc.want, model.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestAppointmentIsActive(t *testing.T) {
	active := []string{constant.StatusPending, constant.StatusConfirmed, constant.StatusInProgress, constant.StatusCompleted}
	for _, status := range active {
		appointment := model.Appointment{Status: status}
		assert.True(t, appointment.IsActive(), status)
	}

	for _, status := range []string{constant.StatusCancelled, constant.StatusNoShow} {
		appointment := model.Appointment{Status: status}
		assert.False(t, appointment.IsActive(), status)
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, model.ValidStatus(constant.StatusConfirmed))
	assert.False(t, model.ValidStatus("archived"))
}
