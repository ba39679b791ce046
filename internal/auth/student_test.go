// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNxchange/back-pappi-calculator-auth/internal/auth"
)

func validInput() auth.RegistrationInput {
	return auth.RegistrationInput{
		GivenNames:         "Ana",
		FamilyNames:        "Lopez",
		InstitutionalEmail: "ana@uni.edu",
		NationalID:         "12345678",
		Password:           "Secret123",
	}
}

func TestRegistrationInput_Validate(t *testing.T) {
	t.Run("valid input passes", func(t *testing.T) {
		assert.NoError(t, validInput().Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*auth.RegistrationInput)
		field   string
		message string
	}{
		{
			name:    "given names too short",
			mutate:  func(in *auth.RegistrationInput) { in.GivenNames = "A" },
			field:   "given_names",
			message: "at least 2 characters",
		},
		{
			name:    "given names too long",
			mutate:  func(in *auth.RegistrationInput) { in.GivenNames = strings.Repeat("a", 101) },
			field:   "given_names",
			message: "at most 100 characters",
		},
		{
			name:    "family names empty",
			mutate:  func(in *auth.RegistrationInput) { in.FamilyNames = "" },
			field:   "family_names",
			message: "at least 2 characters",
		},
		{
			name:    "email missing at sign",
			mutate:  func(in *auth.RegistrationInput) { in.InstitutionalEmail = "ana.uni.edu" },
			field:   "institutional_email",
			message: "valid email address",
		},
		{
			name:    "email empty",
			mutate:  func(in *auth.RegistrationInput) { in.InstitutionalEmail = "" },
			field:   "institutional_email",
			message: "cannot be empty",
		},
		{
			name:    "national id with letters",
			mutate:  func(in *auth.RegistrationInput) { in.NationalID = "1234567a" },
			field:   "national_id",
			message: "only digits",
		},
		{
			name:    "national id too short",
			mutate:  func(in *auth.RegistrationInput) { in.NationalID = "1234567" },
			field:   "national_id",
			message: "exactly 8 digits",
		},
		{
			name:    "national id too long",
			mutate:  func(in *auth.RegistrationInput) { in.NationalID = "123456789" },
			field:   "national_id",
			message: "exactly 8 digits",
		},
		{
			name:    "given names one accented character",
			mutate:  func(in *auth.RegistrationInput) { in.GivenNames = "Á" },
			field:   "given_names",
			message: "at least 2 characters",
		},
		{
			name:    "password seven characters with multibyte runes",
			mutate:  func(in *auth.RegistrationInput) { in.Password = "Aa1ññññ" },
			field:   "password",
			message: "at least 8 characters",
		},
		{
			name:    "password too short",
			mutate:  func(in *auth.RegistrationInput) { in.Password = "Ab1" },
			field:   "password",
			message: "at least 8 characters",
		},
		{
			name:    "password without uppercase",
			mutate:  func(in *auth.RegistrationInput) { in.Password = "secret12" },
			field:   "password",
			message: "uppercase letter",
		},
		{
			name:    "password without lowercase",
			mutate:  func(in *auth.RegistrationInput) { in.Password = "SECRET12" },
			field:   "password",
			message: "lowercase letter",
		},
		{
			name:    "password without digit",
			mutate:  func(in *auth.RegistrationInput) { in.Password = "SecretPass" },
			field:   "password",
			message: "one digit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			err := input.Validate()
			require.Error(t, err)

			var verrs auth.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
			assert.Contains(t, verrs[0].Message, tt.message)
		})
	}

	t.Run("length bounds count characters not bytes", func(t *testing.T) {
		input := validInput()
		input.GivenNames = strings.Repeat("é", 100)
		input.Password = "Aa1" + strings.Repeat("ñ", 97)

		assert.NoError(t, input.Validate())
	})

	t.Run("digit check wins over length for national id", func(t *testing.T) {
		input := validInput()
		input.NationalID = "12x"

		var verrs auth.ValidationErrors
		require.ErrorAs(t, input.Validate(), &verrs)
		require.Len(t, verrs, 1)
		assert.Contains(t, verrs[0].Message, "only digits")
	})

	t.Run("every bad field is reported", func(t *testing.T) {
		input := auth.RegistrationInput{}

		var verrs auth.ValidationErrors
		require.ErrorAs(t, input.Validate(), &verrs)
		assert.Len(t, verrs, 5)

		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fe.Field
		}
		assert.Equal(t, []string{"given_names", "family_names", "institutional_email", "national_id", "password"}, fields)
	})
}

func TestNewStudent(t *testing.T) {
	input := validInput()
	student := auth.NewStudent(input, "hashed")

	assert.False(t, student.ID.Time() == 0, "id should be assigned")
	assert.Equal(t, input.GivenNames, student.GivenNames)
	assert.Equal(t, input.FamilyNames, student.FamilyNames)
	assert.Equal(t, input.InstitutionalEmail, student.InstitutionalEmail)
	assert.Equal(t, input.NationalID, student.NationalID)
	assert.Equal(t, "hashed", student.PasswordHash)
	assert.False(t, student.CreatedAt.IsZero())
	assert.Nil(t, student.UpdatedAt)

	other := auth.NewStudent(input, "hashed")
	assert.NotEqual(t, student.ID, other.ID, "ids should be unique")
}
