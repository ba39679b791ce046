// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

// Package auth implements the credential and token lifecycle for the
// PAPPI Calculator student authentication service.
//
// # Domain Types
//
// Student is the registered account entity. New accounts should be created
// through NewStudent, which assigns the identifier and creation timestamp;
// direct struct initialization bypasses that and may create invalid state.
// RegistrationInput carries raw registration data and knows how to validate
// itself before anything touches storage.
//
// # Services
//
// Service composes the StudentRepository, PasswordHasher and TokenIssuer
// into the two use cases this system exposes: Register and Login. It is
// created with NewService, which validates its dependencies.
package auth
