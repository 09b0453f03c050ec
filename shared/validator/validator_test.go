package validator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"shear/shared/validator"
)

type bookingPayload struct {
	ServiceID string `json:"service_id" validate:"required"`
	Date      string `json:"date"       validate:"required,dateonly"`
	Clock     string `json:"time"       validate:"required,clock"`
}

func TestValidateBookingPayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "valid payload",
			body: `{"service_id":"svc-1","date":"2025-06-15","time":"09:30"}`,
		},
		{
			name:    "missing service",
			body:    `{"date":"2025-06-15","time":"09:30"}`,
			wantErr: "ServiceID is required",
		},
		{
			name:    "bad clock",
			body:    `{"service_id":"svc-1","date":"2025-06-15","time":"9am"}`,
			wantErr: "Clock must be a time like 09:30",
		},
		{
			name:    "bad date",
			body:    `{"service_id":"svc-1","date":"15/06/2025","time":"09:30"}`,
			wantErr: "Date must be a date like 2025-06-15",
		},
		{
			name:    "not json",
			body:    `service_id=svc-1`,
			wantErr: "failed to decode request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bookingPayload{}
			err := validator.Validate(strings.NewReader(tt.body), &payload)

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
