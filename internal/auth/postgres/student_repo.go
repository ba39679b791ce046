// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

// Package postgres implements auth repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/UNxchange/back-pappi-calculator-auth/internal/auth"
)

// Unique constraint names from the students migration. Used to tell which
// key a failed insert collided on.
const (
	emailConstraint      = "students_institutional_email_key"
	nationalIDConstraint = "students_national_id_key"
)

// pool is the subset of pgxpool.Pool the repository uses. pgxmock
// implements it, which keeps the unit tests database-free.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StudentRepository implements auth.StudentRepository using PostgreSQL.
type StudentRepository struct {
	pool pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// Create stores a new student. Uniqueness of institutional_email and
// national_id is enforced by database constraints; a violation is mapped to
// the matching duplicate error so a register racing another register still
// reports which key conflicted.
func (r *StudentRepository) Create(ctx context.Context, student *auth.Student) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO students (
			id, given_names, family_names, institutional_email,
			national_id, password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		student.ID.String(),
		student.GivenNames,
		student.FamilyNames,
		student.InstitutionalEmail,
		student.NationalID,
		student.PasswordHash,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case emailConstraint:
				return auth.ErrDuplicateEmail
			case nationalIDConstraint:
				return auth.ErrDuplicateNationalID
			default:
				return auth.ErrConflict
			}
		}
		return oops.Code("STORAGE_UNAVAILABLE").
			With("operation", "insert student").
			With("email", student.InstitutionalEmail).
			Wrap(err)
	}
	return nil
}

// GetByEmail retrieves a student by institutional email (exact match).
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*auth.Student, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, given_names, family_names, institutional_email,
		       national_id, password_hash, created_at, updated_at
		FROM students
		WHERE institutional_email = $1
	`, email)

	student, err := scanStudent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("STORAGE_UNAVAILABLE").
			With("operation", "get student by email").
			With("email", email).
			Wrap(err)
	}
	return student, nil
}

// GetByNationalID retrieves a student by national ID.
func (r *StudentRepository) GetByNationalID(ctx context.Context, nationalID string) (*auth.Student, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, given_names, family_names, institutional_email,
		       national_id, password_hash, created_at, updated_at
		FROM students
		WHERE national_id = $1
	`, nationalID)

	student, err := scanStudent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("STORAGE_UNAVAILABLE").
			With("operation", "get student by national id").
			With("national_id", nationalID).
			Wrap(err)
	}
	return student, nil
}

// scanStudent scans a single row into a Student. Callers are responsible
// for handling pgx.ErrNoRows.
func scanStudent(row pgx.Row) (*auth.Student, error) {
	var (
		idStr     string
		student   auth.Student
		updatedAt *time.Time
	)

	err := row.Scan(
		&idStr,
		&student.GivenNames,
		&student.FamilyNames,
		&student.InstitutionalEmail,
		&student.NationalID,
		&student.PasswordHash,
		&student.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("STUDENT_SCAN_FAILED").
			With("operation", "scan student").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("STUDENT_INVALID_ID").
			With("id", idStr).
			Wrap(err)
	}

	student.ID = id
	student.UpdatedAt = updatedAt
	return &student, nil
}

// Compile-time interface check.
var _ auth.StudentRepository = (*StudentRepository)(nil)
