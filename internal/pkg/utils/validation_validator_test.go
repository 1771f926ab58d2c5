package utils

import (
	"hospital-service/internal/pkg/exceptions"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomValidators(t *testing.T) {
	type sample struct {
		Slot    string `json:"slot" validate:"omitempty,time_slot"`
		Method  string `json:"method" validate:"omitempty,payment_method"`
		Report  string `json:"report" validate:"omitempty,report_type"`
		Domain  string `json:"domain" validate:"omitempty,metrics_domain"`
		Role    string `json:"role" validate:"omitempty,user_role"`
		Date    string `json:"date" validate:"omitempty,date_value"`
		Subject string `json:"subject" validate:"omitempty,object_id"`
	}

	valid := []sample{
		{Slot: "9:00 AM"},
		{Slot: "12:30 PM"},
		{Method: "wallet"},
		{Report: "doctor_performance"},
		{Domain: "geographic"},
		{Role: "Admin"},
		{Date: "2024-06-01"},
		{Date: "2024-06-01T10:00:00Z"},
		{Subject: "65f1c0a1b2c3d4e5f6a7b8c9"},
	}
	for _, input := range valid {
		assert.NoError(t, ValidateStruct(input), "%+v", input)
	}

	invalid := []struct {
		input   sample
		message string
	}{
		{input: sample{Slot: "13:00 PM"}, message: "slot must be a time slot such as 9:00 AM"},
		{input: sample{Slot: "9:00am"}, message: "slot must be a time slot such as 9:00 AM"},
		{input: sample{Method: "cash"}, message: "method must be one of [card bank wallet]"},
		{input: sample{Report: "weekly"}, message: "report must be a supported report type"},
		{input: sample{Domain: "billing"}, message: "domain must be one of [patient appointment doctor financial medical geographic]"},
		{input: sample{Role: "Nurse"}, message: "role must be one of [Patient Doctor Admin]"},
		{input: sample{Date: "01/06/2024"}, message: "date must be a date in YYYY-MM-DD or RFC3339 format"},
		{input: sample{Subject: "42"}, message: "subject must be a valid identifier"},
	}
	for _, tt := range invalid {
		err := ValidateStruct(tt.input)
		if assert.Error(t, err) {
			assert.Equal(t, tt.message, exceptions.FormatFirstValidationError(err))
		}
	}
}

func TestPasswordValidator(t *testing.T) {
	type signup struct {
		Password string `json:"password" validate:"password"`
	}

	assert.NoError(t, ValidateStruct(signup{Password: "Secret#123"}))
	assert.Error(t, ValidateStruct(signup{Password: "secret#123"}))
	assert.Error(t, ValidateStruct(signup{Password: "Secret123"}))
	assert.Error(t, ValidateStruct(signup{Password: "S#1"}))
}
