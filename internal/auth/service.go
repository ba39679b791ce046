// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// dummyPasswordHash is verified when a login targets an unknown email, so
// that response time does not reveal whether the account exists. It is not
// a real credential and will never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing uniformity, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service composes the repository, hasher and token issuer into the
// register and login use cases. It performs no retries: every failure is
// surfaced to the caller.
type Service struct {
	students StudentRepository
	hasher   PasswordHasher
	tokens   *TokenIssuer
	logger   *slog.Logger
}

// NewService creates a new Service. The logger may be nil, in which case
// the process default is used.
func NewService(students StudentRepository, hasher PasswordHasher, tokens *TokenIssuer, logger *slog.Logger) (*Service, error) {
	if students == nil {
		return nil, oops.Code("AUTH_BAD_DEPENDENCY").Errorf("student repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_BAD_DEPENDENCY").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_BAD_DEPENDENCY").Errorf("token issuer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		students: students,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}, nil
}

// Register creates a new student account. Checks run in a fixed order:
// input validation, email uniqueness, national ID uniqueness, then the
// insert itself. When both keys are taken the email duplicate is the one
// reported. The uniqueness pre-checks are advisory; a concurrent insert
// losing the race is caught by the database constraint and mapped to the
// same duplicate errors.
func (s *Service) Register(ctx context.Context, input RegistrationInput) (*Student, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.students.GetByEmail(ctx, input.InstitutionalEmail); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check email uniqueness").
			Wrap(err)
	}

	if _, err := s.students.GetByNationalID(ctx, input.NationalID); err == nil {
		return nil, ErrDuplicateNationalID
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check national ID uniqueness").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	student := NewStudent(input, hash)
	if err := s.students.Create(ctx, student); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrDuplicateNationalID), errors.Is(err, ErrConflict):
			// Lost the race against a concurrent registration.
			s.logger.Warn("registration lost uniqueness race",
				"email", input.InstitutionalEmail,
				"error", err)
			return nil, err
		default:
			return nil, oops.Code("AUTH_REGISTER_FAILED").
				With("operation", "insert student").
				Wrap(err)
		}
	}

	s.logger.Info("student registered",
		"student_id", student.ID.String(),
		"email", student.InstitutionalEmail)

	return student, nil
}

// Login verifies credentials and issues a bearer token whose subject is the
// student's institutional email. Unknown email and wrong password return
// the identical ErrInvalidCredentials; a dummy hash is verified in the
// unknown-email case to keep response timing uniform.
func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	targetHash := dummyPasswordHash
	var student *Student

	found, err := s.students.GetByEmail(ctx, email)
	switch {
	case err == nil:
		student = found
		targetHash = found.PasswordHash
	case errors.Is(err, ErrNotFound):
		// Fall through with the dummy hash.
	default:
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get student by email").
			Wrap(err)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if student == nil {
			return nil, ErrInvalidCredentials
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if student == nil || !valid {
		return nil, ErrInvalidCredentials
	}

	access, err := s.tokens.Issue(student.InstitutionalEmail)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	s.logger.Info("student logged in", "email", student.InstitutionalEmail)

	return &Token{AccessToken: access, TokenType: TokenTypeBearer}, nil
}
