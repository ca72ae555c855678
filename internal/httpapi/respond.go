// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/samber/oops"

	"github.com/chatloop/chatloop/internal/auth"
	"github.com/chatloop/chatloop/pkg/errutil"
)

// errorResponse is the error body shape for every failure status.
type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errutil.LogError(h.logger, "failed to write response", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps a service error to a response status and a safe
// message. Business-rule violations carry their own messages; anything
// unrecognized is logged for the operator and surfaced only as a
// generic internal error.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		switch oopsErr.Code() {
		case auth.CodeInvalidInput:
			h.writeJSONError(w, http.StatusBadRequest, oopsErr.Error())
			return
		case auth.CodeUsernameTaken:
			h.writeJSONError(w, http.StatusConflict, "username already taken")
			return
		case auth.CodeInvalidCredentials:
			h.writeJSONError(w, http.StatusUnauthorized, "invalid username or password")
			return
		case auth.CodeUserNotFound:
			h.writeJSONError(w, http.StatusNotFound, "user not found")
			return
		case auth.CodeInvalidToken:
			h.writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
	}

	errutil.LogError(h.logger, "request failed", err)
	h.writeJSONError(w, http.StatusInternalServerError, "internal server error")
}
