// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/UNxchange/back-pappi-calculator-auth/internal/auth"
	"github.com/UNxchange/back-pappi-calculator-auth/pkg/errutil"
)

// registerRequest is the registration payload.
type registerRequest struct {
	GivenNames         string `json:"given_names"`
	FamilyNames        string `json:"family_names"`
	InstitutionalEmail string `json:"institutional_email"`
	NationalID         string `json:"national_id"`
	Password           string `json:"password"`
}

// studentResponse is the account summary returned after registration.
// The password hash is never part of it.
type studentResponse struct {
	ID                 string     `json:"id"`
	GivenNames         string     `json:"given_names"`
	FamilyNames        string     `json:"family_names"`
	InstitutionalEmail string     `json:"institutional_email"`
	NationalID         string     `json:"national_id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// loginRequest is the login payload.
type loginRequest struct {
	InstitutionalEmail string `json:"institutional_email"`
	Password           string `json:"password"`
}

// tokenResponse is the successful login payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleRegister handles POST /register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "request body must be valid JSON")
		return
	}

	student, err := s.svc.Register(r.Context(), auth.RegistrationInput{
		GivenNames:         req.GivenNames,
		FamilyNames:        req.FamilyNames,
		InstitutionalEmail: req.InstitutionalEmail,
		NationalID:         req.NationalID,
		Password:           req.Password,
	})
	if err != nil {
		s.handleRegisterError(w, err)
		return
	}

	s.recordRegistration("created")
	writeJSON(w, http.StatusCreated, studentResponse{
		ID:                 student.ID.String(),
		GivenNames:         student.GivenNames,
		FamilyNames:        student.FamilyNames,
		InstitutionalEmail: student.InstitutionalEmail,
		NationalID:         student.NationalID,
		CreatedAt:          student.CreatedAt,
		UpdatedAt:          student.UpdatedAt,
	})
}

func (s *Server) handleRegisterError(w http.ResponseWriter, err error) {
	var verrs auth.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		s.recordRegistration("validation_failed")
		fields := make([]fieldError, len(verrs))
		for i, fe := range verrs {
			fields[i] = fieldError{Field: fe.Field, Message: fe.Message}
		}
		writeValidationFailed(w, fields)

	case errors.Is(err, auth.ErrDuplicateEmail):
		s.recordRegistration("duplicate")
		writeError(w, http.StatusConflict, "duplicate_email", "institutional email already registered")

	case errors.Is(err, auth.ErrDuplicateNationalID):
		s.recordRegistration("duplicate")
		writeError(w, http.StatusConflict, "duplicate_national_id", "national ID already registered")

	case errors.Is(err, auth.ErrConflict):
		s.recordRegistration("duplicate")
		writeError(w, http.StatusConflict, "conflict", "account conflicts with an existing registration")

	default:
		s.recordRegistration("error")
		errutil.LogError(s.logger, "registration failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "an internal error occurred")
	}
}

// handleLogin handles POST /login. Bad credentials always produce the same
// 401 body, whichever factor was wrong.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "request body must be valid JSON")
		return
	}

	token, err := s.svc.Login(r.Context(), req.InstitutionalEmail, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.recordLogin("invalid_credentials")
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
			return
		}
		s.recordLogin("error")
		errutil.LogError(s.logger, "login failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "an internal error occurred")
		return
	}

	s.recordLogin("success")
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "auth",
	})
}

// handleRoot handles GET / with a descriptor of the available operations.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": s.appName,
		"version": s.version,
		"endpoints": map[string]string{
			"register": "/register",
			"login":    "/login",
			"health":   "/health",
		},
	})
}

func (s *Server) recordRegistration(result string) {
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues(result).Inc()
	}
}

func (s *Server) recordLogin(result string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(result).Inc()
	}
}
