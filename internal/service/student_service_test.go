package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() Registration {
	return Registration{
		TgUserID: 1001,
		Name:     "Ananya Nair",
		RollNo:   "b21me1042",
		RoomNo:   "A-214",
		Phone:    "+919876543210",
	}
}

func TestValidateRegistrationNormalizes(t *testing.T) {
	reg := validRegistration()
	reg.Name = "  Ananya Nair  "
	reg.RollNo = " b21me1042 "

	require.NoError(t, ValidateRegistration(&reg))
	assert.Equal(t, "Ananya Nair", reg.Name)
	assert.Equal(t, "B21ME1042", reg.RollNo)
}

func TestValidateRegistrationRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Registration)
	}{
		{"short name", func(r *Registration) { r.Name = "A" }},
		{"long name", func(r *Registration) { r.Name = strings.Repeat("x", NameMaxLength+1) }},
		{"roll with spaces", func(r *Registration) { r.RollNo = "B21 ME 1042" }},
		{"empty roll", func(r *Registration) { r.RollNo = "" }},
		{"empty room", func(r *Registration) { r.RoomNo = "" }},
		{"long room", func(r *Registration) { r.RoomNo = strings.Repeat("9", RoomMaxLength+1) }},
		{"short phone", func(r *Registration) { r.Phone = "12345" }},
		{"phone with letters", func(r *Registration) { r.Phone = "98765abcde" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := validRegistration()
			tt.mutate(&reg)
			assert.ErrorIs(t, ValidateRegistration(&reg), ErrValidation)
		})
	}
}

func TestValidateRegistrationAcceptsBarePhone(t *testing.T) {
	reg := validRegistration()
	reg.Phone = "9876543210"
	assert.NoError(t, ValidateRegistration(&reg))
}
