// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorResponse is the JSON shape of every error the API returns.
type errorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Fields  []fieldError `json:"fields,omitempty"`
}

// fieldError scopes a validation failure to a single request field.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func writeValidationFailed(w http.ResponseWriter, fields []fieldError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:   "validation_failed",
		Message: "registration input is invalid",
		Fields:  fields,
	})
}
