// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
)

// Field length constraints on registration input.
const (
	MinNameLength     = 2
	MaxNameLength     = 100
	NationalIDLength  = 8
	MinPasswordLength = 8
	MaxPasswordLength = 100
)

// Student represents a registered student account.
type Student struct {
	ID                 ulid.ULID
	GivenNames         string
	FamilyNames        string
	InstitutionalEmail string
	NationalID         string
	PasswordHash       string
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// NewStudent creates a Student from validated registration input and a
// password hash, assigning the identifier and creation timestamp.
func NewStudent(input RegistrationInput, passwordHash string) *Student {
	return &Student{
		ID:                 ulid.Make(),
		GivenNames:         input.GivenNames,
		FamilyNames:        input.FamilyNames,
		InstitutionalEmail: input.InstitutionalEmail,
		NationalID:         input.NationalID,
		PasswordHash:       passwordHash,
		CreatedAt:          time.Now().UTC(),
	}
}

// RegistrationInput carries raw registration data before validation.
type RegistrationInput struct {
	GivenNames         string
	FamilyNames        string
	InstitutionalEmail string
	NationalID         string
	Password           string
}

// FieldError describes a validation failure scoped to a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects one FieldError per offending field. For a given
// field the first failing rule wins; rules for later fields are still
// evaluated so every bad field is reported at once.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validate applies the registration rules. It is deterministic, has no side
// effects, and runs before any storage access.
//
// Policy (strict variant):
//   - given_names, family_names: length in [2,100]
//   - institutional_email: syntactically valid email address
//   - national_id: decimal digits only, exactly 8 of them
//   - password: length in [8,100] with at least one uppercase letter, one
//     lowercase letter and one digit
func (in RegistrationInput) Validate() error {
	var errs ValidationErrors

	if msg := validateName(in.GivenNames); msg != "" {
		errs = append(errs, FieldError{Field: "given_names", Message: msg})
	}
	if msg := validateName(in.FamilyNames); msg != "" {
		errs = append(errs, FieldError{Field: "family_names", Message: msg})
	}
	if msg := validateEmail(in.InstitutionalEmail); msg != "" {
		errs = append(errs, FieldError{Field: "institutional_email", Message: msg})
	}
	if msg := validateNationalID(in.NationalID); msg != "" {
		errs = append(errs, FieldError{Field: "national_id", Message: msg})
	}
	if msg := validatePassword(in.Password); msg != "" {
		errs = append(errs, FieldError{Field: "password", Message: msg})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateName(name string) string {
	// Bounds are in characters, not bytes, so accented names count correctly.
	n := utf8.RuneCountInString(name)
	if n < MinNameLength {
		return fmt.Sprintf("must be at least %d characters", MinNameLength)
	}
	if n > MaxNameLength {
		return fmt.Sprintf("must be at most %d characters", MaxNameLength)
	}
	return ""
}

func validateEmail(email string) string {
	if email == "" {
		return "cannot be empty"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "must be a valid email address"
	}
	return ""
}

func validateNationalID(dni string) string {
	if dni == "" {
		return "cannot be empty"
	}
	for _, r := range dni {
		if r < '0' || r > '9' {
			return "must contain only digits"
		}
	}
	if len(dni) != NationalIDLength {
		return fmt.Sprintf("must be exactly %d digits", NationalIDLength)
	}
	return ""
}

func validatePassword(password string) string {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return fmt.Sprintf("must be at least %d characters", MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return fmt.Sprintf("must be at most %d characters", MaxPasswordLength)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return "must contain at least one uppercase letter"
	}
	if !hasLower {
		return "must contain at least one lowercase letter"
	}
	if !hasDigit {
		return "must contain at least one digit"
	}
	return ""
}

// StudentRepository manages student persistence. Uniqueness of the
// institutional email and the national ID is enforced atomically by the
// storage layer; lookups performed before Create are an optimization for
// better error messages, never a substitute.
type StudentRepository interface {
	// Create stores a new student. Returns ErrDuplicateEmail or
	// ErrDuplicateNationalID when a unique constraint is violated, or
	// ErrConflict when the violated key cannot be determined.
	Create(ctx context.Context, student *Student) error

	// GetByEmail retrieves a student by institutional email (exact match).
	// Returns ErrNotFound if no student has the given email.
	GetByEmail(ctx context.Context, email string) (*Student, error)

	// GetByNationalID retrieves a student by national ID.
	// Returns ErrNotFound if no student has the given national ID.
	GetByNationalID(ctx context.Context, nationalID string) (*Student, error)
}
