package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shear/internal/domains/booking/service"
)

func TestGenerateSlots(t *testing.T) {
	tt := []struct {
		name     string
		winStart int
		winEnd   int
		duration int
		step     int
		want     []int
	}{
		{
			name:     "hour window with half hour service",
			winStart: 540,
			winEnd:   600,
			duration: 30,
			step:     15,
			want:     []int{540, 555, 570},
		},
		{
			name:     "service exactly fills the window",
			winStart: 540,
			winEnd:   585,
			duration: 45,
			step:     15,
			want:     []int{540},
		},
		{
			name:     "service longer than the window",
			winStart: 540,
			winEnd:   570,
			duration: 45,
			step:     15,
			want:     nil,
		},
		{
			name:     "empty window",
			winStart: 540,
			winEnd:   540,
			duration: 30,
			step:     15,
			want:     nil,
		},
		{
			name:     "zero step",
			winStart: 540,
			winEnd:   600,
			duration: 30,
			step:     0,
			want:     nil,
		},
		{
			name:     "zero duration",
			winStart: 540,
			winEnd:   600,
			duration: 0,
			step:     15,
			want:     nil,
		},
		{
			name:     "step larger than window",
			winStart: 540,
			winEnd:   600,
			duration: 30,
			step:     90,
			want:     []int{540},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := service.GenerateSlots(tc.winStart, tc.winEnd, tc.duration, tc.step)

			assert.Equal(t, tc.want, got)
		})
	}
}

// Every generated slot must fit entirely inside the window.
func TestGenerateSlots_AllFitWithinWindow(t *testing.T) {
	for duration := 15; duration <= 120; duration += 15 {
		for step := 5; step <= 60; step += 5 {
			for _, start := range service.GenerateSlots(540, 1080, duration, step) {
				assert.GreaterOrEqual(t, start, 540)
				assert.LessOrEqual(t, start+duration, 1080)
			}
		}
	}
}
