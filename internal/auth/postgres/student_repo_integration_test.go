// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

//go:build integration

package postgres_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/UNxchange/back-pappi-calculator-auth/internal/auth"
	"github.com/UNxchange/back-pappi-calculator-auth/internal/auth/postgres"
	"github.com/UNxchange/back-pappi-calculator-auth/internal/store"
)

// setupPostgresContainer starts a PostgreSQL container, applies the schema
// and returns a connected repository.
func setupPostgresContainer() (*postgres.StudentRepository, func(), error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("auth_test"),
		tcpostgres.WithUsername("auth"),
		tcpostgres.WithPassword("auth"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	if err := migrator.Close(); err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return postgres.NewStudentRepository(pool), cleanup, nil
}

func newStudent(email, nationalID string) *auth.Student {
	return &auth.Student{
		ID:                 ulid.Make(),
		GivenNames:         "Ana",
		FamilyNames:        "Lopez",
		InstitutionalEmail: email,
		NationalID:         nationalID,
		PasswordHash:       "$argon2id$v=19$m=65536,t=1,p=4$salt$digest",
		CreatedAt:          time.Now().UTC(),
	}
}

var _ = Describe("StudentRepository", func() {
	var repo *postgres.StudentRepository
	var cleanup func()

	BeforeEach(func() {
		var err error
		repo, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("Create", func() {
		It("stores a student that can be read back by email", func() {
			ctx := context.Background()
			student := newStudent("ana@uni.edu", "12345678")

			Expect(repo.Create(ctx, student)).To(Succeed())

			got, err := repo.GetByEmail(ctx, "ana@uni.edu")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(student.ID))
			Expect(got.GivenNames).To(Equal("Ana"))
			Expect(got.NationalID).To(Equal("12345678"))
			Expect(got.CreatedAt).To(BeTemporally("~", student.CreatedAt, time.Second))
			Expect(got.UpdatedAt).To(BeNil())
		})

		It("maps an email collision to ErrDuplicateEmail", func() {
			ctx := context.Background()
			Expect(repo.Create(ctx, newStudent("ana@uni.edu", "12345678"))).To(Succeed())

			err := repo.Create(ctx, newStudent("ana@uni.edu", "87654321"))
			Expect(err).To(MatchError(auth.ErrDuplicateEmail))
		})

		It("maps a national ID collision to ErrDuplicateNationalID", func() {
			ctx := context.Background()
			Expect(repo.Create(ctx, newStudent("ana@uni.edu", "12345678"))).To(Succeed())

			err := repo.Create(ctx, newStudent("otra@uni.edu", "12345678"))
			Expect(err).To(MatchError(auth.ErrDuplicateNationalID))
		})
	})

	Describe("GetByEmail", func() {
		It("matches exactly, without case folding", func() {
			ctx := context.Background()
			Expect(repo.Create(ctx, newStudent("ana@uni.edu", "12345678"))).To(Succeed())

			_, err := repo.GetByEmail(ctx, "ANA@uni.edu")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})

		It("returns ErrNotFound for unknown email", func() {
			_, err := repo.GetByEmail(context.Background(), "nadie@uni.edu")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("GetByNationalID", func() {
		It("finds a stored student", func() {
			ctx := context.Background()
			student := newStudent("ana@uni.edu", "12345678")
			Expect(repo.Create(ctx, student)).To(Succeed())

			got, err := repo.GetByNationalID(ctx, "12345678")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(student.ID))
		})

		It("returns ErrNotFound for unknown national ID", func() {
			_, err := repo.GetByNationalID(context.Background(), "00000000")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})
})
