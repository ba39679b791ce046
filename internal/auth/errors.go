// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested student does not exist.
// Absence is not a fault; callers decide what it means.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when the institutional email is already
// registered.
var ErrDuplicateEmail = errors.New("institutional email already registered")

// ErrDuplicateNationalID is returned when the national ID (DNI) is already
// registered.
var ErrDuplicateNationalID = errors.New("national ID already registered")

// ErrConflict is returned when an insert lost a uniqueness race and the
// violated key could not be determined.
var ErrConflict = errors.New("account conflicts with an existing registration")

// ErrInvalidCredentials is returned for both unknown email and wrong
// password. The single value is deliberate: callers must not be able to
// tell which factor failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrTokenInvalid is returned for any token that fails verification:
// bad signature, tampering, malformed input, wrong algorithm, or expiry.
var ErrTokenInvalid = errors.New("token is invalid or expired")
